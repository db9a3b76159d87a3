package ccp

import (
	"bytes"
	"errors"
	"testing"
)

func TestPassthruNoop(t *testing.T) {
	d := NewDevice()
	mem := newMemSpace(4096)
	d.AddrSpace = mem
	payload := bytes.Repeat([]byte{0x5a}, 100)
	mem.WriteLocal(0, payload)

	req := Descriptor{
		Engine: EnginePassthru,
		CbSrc:  uint32(len(payload)),
		Src:    MemRef{Kind: MemLocal, Addr: 0},
		Dst:    MemRef{Kind: MemLocal, Addr: 1000},
	}
	if err := d.Dispatch(req); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	got := make([]byte, len(payload))
	mem.ReadLocal(1000, got)
	if !bytes.Equal(got, payload) {
		t.Fatalf("passthru noop mismatch")
	}
}

func TestPassthru256BitByteswap(t *testing.T) {
	d := NewDevice()
	mem := newMemSpace(4096)
	d.AddrSpace = mem
	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = byte(i)
	}
	mem.WriteLocal(0, payload)

	req := Descriptor{
		Engine:   EnginePassthru,
		Function: PassthruByteSwap256Bit << passthruByteSwapShift,
		CbSrc:    32,
		Src:      MemRef{Kind: MemLocal, Addr: 0},
		Dst:      MemRef{Kind: MemLocal, Addr: 1000},
	}
	if err := d.Dispatch(req); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	got := make([]byte, 32)
	mem.ReadLocal(1000, got)
	want := reverseBytes(payload)
	if !bytes.Equal(got, want) {
		t.Fatalf("256-bit byteswap mismatch: got %v want %v", got, want)
	}
}

func TestPassthruRejectsBitwiseCombine(t *testing.T) {
	d := NewDevice()
	d.AddrSpace = newMemSpace(64)
	req := Descriptor{
		Engine:   EnginePassthru,
		Function: PassthruBitwiseAnd << passthruBitwiseShift,
		CbSrc:    16,
		Src:      MemRef{Kind: MemLocal, Addr: 0},
		Dst:      MemRef{Kind: MemLocal, Addr: 32},
	}
	if err := d.Dispatch(req); !errors.Is(err, ErrUnsupportedFunction) {
		t.Fatalf("Dispatch: got %v, want ErrUnsupportedFunction", err)
	}
}
