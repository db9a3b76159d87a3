// ccpdemo - drives a CCP device model against an in-memory address space
// for manual smoke testing, in the style of the teacher's cmd/ie32to64.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hnj2/pspemu/ccp"
)

func main() {
	engine := flag.String("engine", "passthru", "engine to exercise: passthru, sha256")
	size := flag.Int("size", 64, "payload size in bytes")
	verbose := flag.Bool("v", false, "trace every dispatched request")
	flag.Parse()

	if err := run(*engine, *size, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "ccpdemo:", err)
		os.Exit(1)
	}
}

func run(engine string, size int, verbose bool) error {
	mem := newFlatMemory(1 << 16)
	dev := ccp.NewDevice()
	dev.AddrSpace = mem
	if verbose {
		dev.Trace = ccp.TextTraceSink{W: os.Stdout}
	}

	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := mem.WriteLocal(0, payload); err != nil {
		return err
	}

	switch engine {
	case "passthru":
		req := ccp.Descriptor{
			Engine: ccp.EnginePassthru,
			CbSrc:  uint32(size),
			Src:    ccp.MemRef{Kind: ccp.MemLocal, Addr: 0},
			Dst:    ccp.MemRef{Kind: ccp.MemLocal, Addr: 0x1000},
		}
		if err := dev.Dispatch(req); err != nil {
			return err
		}
		out := make([]byte, size)
		mem.ReadLocal(0x1000, out)
		fmt.Printf("passthru copied %d bytes, first byte %#x\n", size, out[0])

	case "sha256":
		req := ccp.Descriptor{
			Engine:   ccp.EngineSHA,
			Function: ccp.SHAType256,
			Init:     true,
			EOM:      true,
			CbSrc:    uint32(size),
			Src:      ccp.MemRef{Kind: ccp.MemLocal, Addr: 0},
			Dst:      ccp.MemRef{Kind: ccp.MemLSB, LSBCtxID: 0},
		}
		if err := dev.Dispatch(req); err != nil {
			return err
		}
		slot, err := dev.LSB.Slot(0)
		if err != nil {
			return err
		}
		fmt.Printf("sha256 digest (reversed): %x\n", slot)

	default:
		return fmt.Errorf("unknown engine %q", engine)
	}
	return nil
}

// flatMemory is a minimal ccp.AddressSpace backed by a single byte slice.
type flatMemory struct {
	buf []byte
}

func newFlatMemory(size int) *flatMemory {
	return &flatMemory{buf: make([]byte, size)}
}

func (m *flatMemory) ReadLocal(addr uint32, dst []byte) error {
	if int(addr)+len(dst) > len(m.buf) {
		return fmt.Errorf("read out of range at %#x len %d", addr, len(dst))
	}
	copy(dst, m.buf[addr:])
	return nil
}

func (m *flatMemory) WriteLocal(addr uint32, src []byte) error {
	if int(addr)+len(src) > len(m.buf) {
		return fmt.Errorf("write out of range at %#x len %d", addr, len(src))
	}
	copy(m.buf[addr:], src)
	return nil
}
