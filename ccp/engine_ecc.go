// engine_ecc.go - ECC engine (spec §4.7)
//
// All field/curve operands are fixed-width 576-bit (72-byte) little-endian
// integers; curve points are a 144-byte (X, Y) pair. The source buffer
// layout (prime, then coefficient, then the operands the selected op
// needs) is this module's own consistent choice - the original header
// describing the exact field offsets was not retrieved. Curve operations
// are hardcoded to NIST P-384 once the descriptor's prime is checked
// against the known P-384 prime; curve point-addition is a valid opcode
// slot the original leaves unimplemented, so it stays an explicit error
// here too. The "coefficient" operand is read (so malformed requests still
// fail on bounds the same way) but never used in any computation, matching
// the original.
package ccp

import (
	"crypto/elliptic"
	"fmt"
	"math/big"
)

func processECC(d *Device, req Descriptor) error {
	op := (req.Function >> eccOpShift) & eccOpMask
	bitCount := (req.Function >> eccBitCountShift) & eccBitCountMask
	if bitCount > 576 {
		return fmt.Errorf("%w: ecc bit count %d exceeds 576", ErrUnsupportedFunction, bitCount)
	}

	outSize := uint32(ECCNumSize)
	if op == ECCOpMulCurve || op == ECCOpMulAddCurve {
		outSize = ECCPointSize
	}
	x := d.XferCtxInit(req.Src, req.Dst, outSize, false)
	buf := make([]byte, req.CbSrc)
	if _, err := x.Read(buf, nil); err != nil {
		return err
	}
	if len(buf) < 2*ECCNumSize {
		return fmt.Errorf("%w: ecc request too short for prime+coefficient", ErrMalformedDescriptor)
	}

	prime := beFromLE(buf[0:ECCNumSize])
	_ = beFromLE(buf[ECCNumSize : 2*ECCNumSize]) // coefficient, read but unused
	rest := buf[2*ECCNumSize:]

	d.trace(SeverityDebug, "ecc op=%d bitCount=%d", op, bitCount)

	switch op {
	case ECCOpMulField, ECCOpAddField:
		return eccFieldBinary(x, prime, rest, op)
	case ECCOpInvField:
		return eccFieldInverse(x, prime, rest)
	case ECCOpAddCurve:
		return fmt.Errorf("%w: ecc curve point-addition not implemented", ErrUnsupportedFunction)
	case ECCOpMulCurve:
		return eccCurveMul(x, prime, rest)
	case ECCOpMulAddCurve:
		return eccCurveMulAdd(x, prime, rest)
	default:
		return fmt.Errorf("%w: ecc op %d", ErrUnsupportedFunction, op)
	}
}

func eccFieldBinary(x *xferCtx, prime *big.Int, rest []byte, op uint32) error {
	if len(rest) < 2*ECCNumSize {
		return fmt.Errorf("%w: ecc field op needs two operands", ErrMalformedDescriptor)
	}
	a := beFromLE(rest[0:ECCNumSize])
	b := beFromLE(rest[ECCNumSize : 2*ECCNumSize])

	result := new(big.Int)
	if op == ECCOpMulField {
		result.Mul(a, b)
	} else {
		result.Add(a, b)
	}
	result.Mod(result, prime)

	return writeECCNum(x, result)
}

func eccFieldInverse(x *xferCtx, prime *big.Int, rest []byte) error {
	if len(rest) < ECCNumSize {
		return fmt.Errorf("%w: ecc inverse needs one operand", ErrMalformedDescriptor)
	}
	a := beFromLE(rest[0:ECCNumSize])
	inv := new(big.Int).ModInverse(a, prime)
	if inv == nil {
		return fmt.Errorf("%w: no modular inverse", ErrCryptoFailure)
	}
	return writeECCNum(x, inv)
}

func eccCurveMul(x *xferCtx, prime *big.Int, rest []byte) error {
	curve, err := p384IfMatches(prime)
	if err != nil {
		return err
	}
	if len(rest) < ECCPointSize+ECCNumSize {
		return fmt.Errorf("%w: ecc curve-mul needs point+scalar", ErrMalformedDescriptor)
	}
	px, py := beFromLE(rest[0:ECCNumSize]), beFromLE(rest[ECCNumSize:ECCPointSize])
	scalar := beFromLE(rest[ECCPointSize : ECCPointSize+ECCNumSize])

	rx, ry := curve.ScalarMult(px, py, scalar.Bytes())
	return writeECCPoint(x, rx, ry)
}

func eccCurveMulAdd(x *xferCtx, prime *big.Int, rest []byte) error {
	curve, err := p384IfMatches(prime)
	if err != nil {
		return err
	}
	need := 2 * (ECCPointSize + ECCNumSize)
	if len(rest) < need {
		return fmt.Errorf("%w: ecc curve-muladd needs two point+scalar pairs", ErrMalformedDescriptor)
	}
	p1x, p1y := beFromLE(rest[0:ECCNumSize]), beFromLE(rest[ECCNumSize:ECCPointSize])
	s1 := beFromLE(rest[ECCPointSize : ECCPointSize+ECCNumSize])

	off := ECCPointSize + ECCNumSize
	p2x, p2y := beFromLE(rest[off:off+ECCNumSize]), beFromLE(rest[off+ECCNumSize:off+ECCPointSize])
	s2 := beFromLE(rest[off+ECCPointSize : off+ECCPointSize+ECCNumSize])

	r1x, r1y := curve.ScalarMult(p1x, p1y, s1.Bytes())
	r2x, r2y := curve.ScalarMult(p2x, p2y, s2.Bytes())
	rx, ry := curve.Add(r1x, r1y, r2x, r2y)
	return writeECCPoint(x, rx, ry)
}

// p384IfMatches returns the P-384 curve if prime equals its field prime,
// else ErrCryptoFailure (spec §4.7: curve ops verify the descriptor's
// prime before proceeding rather than trusting the caller).
func p384IfMatches(prime *big.Int) (elliptic.Curve, error) {
	curve := elliptic.P384()
	if prime.Cmp(curve.Params().P) != 0 {
		return nil, fmt.Errorf("%w: ecc prime does not match p-384", ErrCryptoFailure)
	}
	return curve, nil
}

func writeECCNum(x *xferCtx, v *big.Int) error {
	out := leFixed(v, ECCNumSize)
	_, err := x.Write(out, nil)
	return err
}

func writeECCPoint(x *xferCtx, px, py *big.Int) error {
	out := make([]byte, ECCPointSize)
	copy(out[0:ECCNumSize], leFixed(px, ECCNumSize))
	copy(out[ECCNumSize:ECCPointSize], leFixed(py, ECCNumSize))
	_, err := x.Write(out, nil)
	return err
}

func beFromLE(le []byte) *big.Int {
	return new(big.Int).SetBytes(reverseBytes(le))
}

// leFixed renders v as a little-endian buffer of exactly n bytes,
// zero-padded at the high end.
func leFixed(v *big.Int, n int) []byte {
	be := v.Bytes()
	if len(be) > n {
		be = be[len(be)-n:]
	}
	out := make([]byte, n)
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}
