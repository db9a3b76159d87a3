package ccp

import "fmt"

// memSpace is a flat byte-slice AddressSpace used across tests, standing in
// for the real PSP local memory manager.
type memSpace struct {
	mem []byte
}

func newMemSpace(size int) *memSpace {
	return &memSpace{mem: make([]byte, size)}
}

func (m *memSpace) ReadLocal(addr uint32, dst []byte) error {
	if int(addr)+len(dst) > len(m.mem) {
		return fmt.Errorf("memSpace: read out of range at %#x len %d", addr, len(dst))
	}
	copy(dst, m.mem[addr:])
	return nil
}

func (m *memSpace) WriteLocal(addr uint32, src []byte) error {
	if int(addr)+len(src) > len(m.mem) {
		return fmt.Errorf("memSpace: write out of range at %#x len %d", addr, len(src))
	}
	copy(m.mem[addr:], src)
	return nil
}

// putDescriptor encodes and writes one descriptor at addr.
func putDescriptor(m *memSpace, addr uint32, dw0 uint32, cbSrc uint32, src, dst, key rawMemType) {
	raw := make([]byte, DescriptorSize)
	lePut32(raw[0:4], dw0)
	lePut32(raw[4:8], cbSrc)
	lePut32(raw[8:12], src.lo)
	lePut16(raw[12:14], src.hi)
	lePut16(raw[14:16], src.memType)
	lePut32(raw[16:20], dst.lo)
	lePut16(raw[20:22], dst.hi)
	lePut16(raw[22:24], dst.memType)
	lePut32(raw[24:28], key.lo)
	lePut16(raw[28:30], key.hi)
	lePut16(raw[30:32], key.memType)
	m.WriteLocal(addr, raw)
}

type rawMemType struct {
	lo      uint32
	hi      uint16
	memType uint16
}

func memRefLocal(addr uint32) rawMemType {
	return rawMemType{lo: addr, memType: uint16(MemLocal)}
}

func memRefLSB(ctxID uint8) rawMemType {
	return rawMemType{memType: uint16(MemLSB) | uint16(ctxID)<<memLSBCtxShift}
}

func lePut32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func lePut16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func dw0(engine Engine, function uint32, init, eom bool) uint32 {
	v := uint32(engine) & dw0EngineMask
	v |= (function & dw0FunctionMask) << dw0FunctionShift
	if init {
		v |= 1 << dw0InitShift
	}
	if eom {
		v |= 1 << dw0EomShift
	}
	return v
}
