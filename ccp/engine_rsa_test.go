package ccp

import (
	"math/big"
	"testing"
)

func TestRSAModExp(t *testing.T) {
	d := NewDevice()
	mem := newMemSpace(8192)
	d.AddrSpace = mem

	sz := uint32(256)
	modulus := big.NewInt(0).SetUint64(0xfffffffffffffffb) // a prime, fits easily in 256 bytes
	exponent := big.NewInt(65537)
	message := big.NewInt(12345)
	want := new(big.Int).Exp(message, exponent, modulus)

	modBuf := leFixed(modulus, int(sz))
	msgBuf := leFixed(message, int(sz))
	expBuf := leFixed(exponent, int(sz/2))

	mem.WriteLocal(0x500, expBuf)
	mem.WriteLocal(0, append(append([]byte{}, modBuf...), msgBuf...))

	req := Descriptor{
		Engine:   EngineRSA,
		Function: sz << rsaSizeShift,
		CbSrc:    2 * sz,
		Src:      MemRef{Kind: MemLocal, Addr: 0},
		Dst:      MemRef{Kind: MemLocal, Addr: 2000},
		Key:      MemRef{Kind: MemLocal, Addr: 0x500},
	}
	if err := d.Dispatch(req); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	resultBuf := make([]byte, sz)
	mem.ReadLocal(2000, resultBuf)
	got := new(big.Int).SetBytes(reverseBytes(resultBuf))
	if got.Cmp(want) != 0 {
		t.Fatalf("rsa result = %v, want %v", got, want)
	}
}

func TestRSARejectsUnsupportedSize(t *testing.T) {
	d := NewDevice()
	d.AddrSpace = newMemSpace(64)
	req := Descriptor{
		Engine:   EngineRSA,
		Function: 128 << rsaSizeShift,
		CbSrc:    256,
		Src:      MemRef{Kind: MemLocal},
		Dst:      MemRef{Kind: MemLocal},
		Key:      MemRef{Kind: MemLocal},
	}
	if err := d.Dispatch(req); err == nil {
		t.Fatalf("expected error for unsupported rsa size")
	}
}
