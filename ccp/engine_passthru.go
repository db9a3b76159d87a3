// engine_passthru.go - PASSTHRU engine (spec §4.4)
package ccp

import "fmt"

// processPassthru accepts only a plain copy (bitwise=NOOP, byteswap in
// {NOOP, 256BIT}, reflect=0). Bitwise combine ops and 32-bit byteswap are
// valid function-field values in the original but this model does not
// implement them (spec §4.4 non-goals); any other combination is an error.
func processPassthru(d *Device, req Descriptor) error {
	bitwise := (req.Function >> passthruBitwiseShift) & passthruBitwiseMask
	byteswap := (req.Function >> passthruByteSwapShift) & passthruByteSwapMask
	reflect := (req.Function >> passthruReflectShift) & passthruReflectMask

	if bitwise != PassthruBitwiseNoop || reflect != 0 {
		return fmt.Errorf("%w: passthru bitwise=%d reflect=%d", ErrUnsupportedFunction, bitwise, reflect)
	}

	switch byteswap {
	case PassthruByteSwapNoop:
		return passthruCopy(d, req, false)
	case PassthruByteSwap256Bit:
		if req.CbSrc != 32 {
			return fmt.Errorf("%w: 256-bit byteswap requires cbSrc=32, got %d", ErrUnsupportedFunction, req.CbSrc)
		}
		return passthruCopy(d, req, true)
	default:
		return fmt.Errorf("%w: passthru byteswap=%d", ErrUnsupportedFunction, byteswap)
	}
}

func passthruCopy(d *Device, req Descriptor, reversed bool) error {
	x := d.XferCtxInit(req.Src, req.Dst, req.CbSrc, reversed)
	remaining := req.CbSrc
	buf := make([]byte, chunkPassthru)
	for remaining > 0 {
		n := uint32(len(buf))
		if n > remaining {
			n = remaining
		}
		if _, err := x.Read(buf[:n], nil); err != nil {
			return err
		}
		if _, err := x.Write(buf[:n], nil); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
