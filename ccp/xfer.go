// xfer.go - the cross-address-space transfer engine (spec §4.1)
package ccp

import "fmt"

// xferSide is one endpoint of a transfer: a cursor into either the LSB flat
// address space or local processor memory, advancing (or not, if Fixed) as
// bytes move.
type xferSide struct {
	ref    MemRef
	cursor uint64
}

// xferUnbounded marks a transfer-context write budget as effectively
// infinite: the zlib engine doesn't know its total decompressed output size
// up front, so it sets total_write_bytes to this value at Init (spec §4.9).
const xferUnbounded = ^uint32(0)

// xferCtx tracks both endpoints of one descriptor's data movement plus the
// per-device accounting the original keeps in CCPXFERCTX: cbWrittenLast is
// reset to zero at the start of every Init and accumulated only by
// successful LOCAL writes (spec §4.1, §4.9 - the zlib engine depends on
// this to report how much decompressed output it actually produced).
type xferCtx struct {
	src  xferSide
	dst  xferSide
	dev  *Device

	writeReversed bool   // spec §4.1: SHA digest output and 256-bit byteswap
	cbWriteLeft   uint32 // remaining write budget (spec §4.1: "clamp to the remaining budget")
}

// XferCtxInit prepares a transfer context from a descriptor's src/dst
// fields. totalWriteBytes is the write-side budget (spec §4.1's
// total_write_bytes): every Write call clamps to whatever of it remains,
// and in write-reversed mode the destination cursor is pre-advanced by
// exactly this amount, once, rather than per call. writeReversed selects
// the write-reversed mode itself: each Write then stores byte-by-byte
// walking the cursor backward instead of forward.
func (d *Device) XferCtxInit(src, dst MemRef, totalWriteBytes uint32, writeReversed bool) *xferCtx {
	d.cbWrittenLast = 0
	x := &xferCtx{
		src:           xferSide{ref: src, cursor: src.Addr},
		dst:           xferSide{ref: dst, cursor: dst.Addr},
		dev:           d,
		writeReversed: writeReversed,
		cbWriteLeft:   totalWriteBytes,
	}
	if writeReversed && !dst.Fixed {
		x.dst.cursor += uint64(totalWriteBytes)
	}
	return x
}

// Read moves up to len(p) bytes from the source side into p, advancing the
// source cursor unless the source ref is Fixed. It returns the number of
// bytes actually read; a short read is only an error if actual is nil.
func (x *xferCtx) Read(p []byte, actual *int) (int, error) {
	n, err := x.dev.xferRead(&x.src, p)
	if actual != nil {
		*actual = n
	}
	if err != nil {
		return n, err
	}
	if actual == nil && n != len(p) {
		return n, fmt.Errorf("%w: short read (%d of %d)", ErrHostIO, n, len(p))
	}
	return n, nil
}

// Write moves up to len(p) bytes from p to the destination side, clamped to
// whatever remains of the budget total_write_bytes set up at Init (spec
// §4.1). In write-reversed mode the cursor was already pre-advanced to the
// end of the whole window at Init, so each Write just keeps walking it
// backward (spec §4.1).
func (x *xferCtx) Write(p []byte, actual *int) (int, error) {
	want := uint32(len(p))
	n32 := want
	if n32 > x.cbWriteLeft {
		n32 = x.cbWriteLeft
	}
	p = p[:n32]

	var n int
	var err error
	if x.writeReversed {
		n, err = x.dev.xferWriteReversed(&x.dst, p)
	} else {
		n, err = x.dev.xferWrite(&x.dst, p)
	}
	x.cbWriteLeft -= uint32(n)
	if actual != nil {
		*actual = n
	}
	if err != nil {
		return n, err
	}
	if actual == nil && uint32(n) != want {
		return n, fmt.Errorf("%w: short write (%d of %d)", ErrHostIO, n, want)
	}
	return n, nil
}

func (d *Device) xferRead(s *xferSide, p []byte) (int, error) {
	switch s.ref.Kind {
	case MemSystem:
		return 0, ErrSystemMem
	case MemLSB:
		if err := d.LSB.ReadAt(uint32(s.cursor), p); err != nil {
			return 0, err
		}
	case MemLocal:
		if d.AddrSpace == nil {
			return 0, fmt.Errorf("%w: no address space configured", ErrHostIO)
		}
		if err := d.AddrSpace.ReadLocal(uint32(s.cursor), p); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrHostIO, err)
		}
	default:
		return 0, fmt.Errorf("%w: mem kind %d", ErrMalformedDescriptor, s.ref.Kind)
	}
	if !s.ref.Fixed {
		s.cursor += uint64(len(p))
	}
	return len(p), nil
}

func (d *Device) xferWrite(s *xferSide, p []byte) (int, error) {
	switch s.ref.Kind {
	case MemSystem:
		return 0, ErrSystemMem
	case MemLSB:
		if err := d.LSB.WriteAt(uint32(s.cursor), p); err != nil {
			return 0, err
		}
	case MemLocal:
		if d.AddrSpace == nil {
			return 0, fmt.Errorf("%w: no address space configured", ErrHostIO)
		}
		if err := d.AddrSpace.WriteLocal(uint32(s.cursor), p); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrHostIO, err)
		}
		d.cbWrittenLast += uint32(len(p))
	default:
		return 0, fmt.Errorf("%w: mem kind %d", ErrMalformedDescriptor, s.ref.Kind)
	}
	if !s.ref.Fixed {
		s.cursor += uint64(len(p))
	}
	return len(p), nil
}

// xferWriteReversed implements the write-reversed mode: the cursor was
// already advanced to the end of the whole window once, at XferCtxInit
// time, using total_write_bytes; each call here just keeps walking it
// backward one byte at a time so the overall window ends up byte-reversed
// relative to the bytes written across every call (spec §4.1 - used for SHA
// digest output and the 256-bit byteswap passthru function).
func (d *Device) xferWriteReversed(s *xferSide, p []byte) (int, error) {
	if s.ref.Fixed {
		for i := 0; i < len(p); i++ {
			if _, err := d.xferWriteOne(s, p[i]); err != nil {
				return i, err
			}
		}
		return len(p), nil
	}
	for i := 0; i < len(p); i++ {
		s.cursor--
		if _, err := d.xferWriteOne(s, p[i]); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

func (d *Device) xferWriteOne(s *xferSide, b byte) (int, error) {
	switch s.ref.Kind {
	case MemSystem:
		return 0, ErrSystemMem
	case MemLSB:
		if err := d.LSB.WriteAt(uint32(s.cursor), []byte{b}); err != nil {
			return 0, err
		}
	case MemLocal:
		if d.AddrSpace == nil {
			return 0, fmt.Errorf("%w: no address space configured", ErrHostIO)
		}
		if err := d.AddrSpace.WriteLocal(uint32(s.cursor), []byte{b}); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrHostIO, err)
		}
		d.cbWrittenLast++
	default:
		return 0, fmt.Errorf("%w: mem kind %d", ErrMalformedDescriptor, s.ref.Kind)
	}
	return 1, nil
}
