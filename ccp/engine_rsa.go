// engine_rsa.go - RSA engine (spec §4.6)
//
// Raw modular exponentiation, no padding. The exponent is read using only
// sz/2 bytes out of the key area even though the key region spans the full
// sz bytes - this is a documented quirk of the original device model, kept
// as-is per the open-question decision in SPEC_FULL.md rather than "fixed".
package ccp

import (
	"fmt"
	"math/big"
)

func processRSA(d *Device, req Descriptor) error {
	mode := (req.Function >> rsaModeShift) & rsaModeMask
	sz := (req.Function >> rsaSizeShift) & rsaSizeMask

	if mode != 0 {
		return fmt.Errorf("%w: rsa mode %d", ErrUnsupportedFunction, mode)
	}
	if sz != 256 && sz != 512 {
		return fmt.Errorf("%w: rsa size %d", ErrUnsupportedFunction, sz)
	}
	if req.CbSrc != 2*sz {
		return fmt.Errorf("%w: rsa cbSrc %d expected %d", ErrUnsupportedFunction, req.CbSrc, 2*sz)
	}

	expBuf, err := readKeyMaterial(d, req.Key, int(sz/2))
	if err != nil {
		return err
	}
	exponent := new(big.Int).SetBytes(reverseLE(expBuf))

	src := make([]byte, req.CbSrc)
	x := d.XferCtxInit(req.Src, req.Dst, sz, false)
	if _, err := x.Read(src, nil); err != nil {
		return err
	}

	modulusBuf := src[:sz]
	messageBuf := src[sz:]

	modulus := new(big.Int).SetBytes(reverseLE(modulusBuf))
	message := new(big.Int).SetBytes(reverseLE(messageBuf))

	if modulus.Sign() == 0 {
		return fmt.Errorf("%w: rsa modulus is zero", ErrCryptoFailure)
	}

	result := new(big.Int).Exp(message, exponent, modulus)

	out := make([]byte, sz)
	resultBE := result.Bytes()
	if len(resultBE) > int(sz) {
		return fmt.Errorf("%w: rsa result overflows %d-byte output", ErrCryptoFailure, sz)
	}
	// resultBE is big-endian and right-aligned; reverse into out so out
	// ends up little-endian with the result in its low-order bytes.
	for i, b := range resultBE {
		out[len(resultBE)-1-i] = b
	}

	if _, err := x.Write(out, nil); err != nil {
		return err
	}
	return nil
}

// reverseLE reverses a little-endian byte buffer into big-endian order for
// consumption by math/big, which expects big-endian input.
func reverseLE(b []byte) []byte {
	return reverseBytes(b)
}
