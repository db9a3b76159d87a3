// lsb.go - the 128-slot local storage buffer (spec §3, §4.1)
package ccp

import "fmt"

// LSB is the 4096-byte local storage buffer, addressable either as 128
// fixed 32-byte slots (by context id) or as a flat byte range (used by the
// transfer engine when a descriptor gives a raw LSB byte offset).
type LSB struct {
	mem [LSBTotalSize]byte
}

// Reset zeroes the buffer, matching pspDevCcpReset's treatment of LSB
// contents as undefined-on-reset state this model pins to zero.
func (l *LSB) Reset() {
	for i := range l.mem {
		l.mem[i] = 0
	}
}

// Slot returns the 32-byte window for the given context id (0..127).
func (l *LSB) Slot(ctxID uint8) ([]byte, error) {
	off := int(ctxID) * LSBSlotSize
	if off+LSBSlotSize > LSBTotalSize {
		return nil, fmt.Errorf("%w: lsb ctx id %d", ErrLSBBounds, ctxID)
	}
	return l.mem[off : off+LSBSlotSize], nil
}

// ReadAt copies n bytes starting at the flat byte offset off into dst.
func (l *LSB) ReadAt(off uint32, dst []byte) error {
	if err := l.checkRange(off, len(dst)); err != nil {
		return err
	}
	copy(dst, l.mem[off:])
	return nil
}

// WriteAt copies src into the flat byte offset off.
func (l *LSB) WriteAt(off uint32, src []byte) error {
	if err := l.checkRange(off, len(src)); err != nil {
		return err
	}
	copy(l.mem[off:], src)
	return nil
}

func (l *LSB) checkRange(off uint32, n int) error {
	if n == 0 {
		return nil
	}
	end := uint64(off) + uint64(n)
	if end > LSBTotalSize {
		return fmt.Errorf("%w: offset %#x length %d", ErrLSBBounds, off, n)
	}
	return nil
}
