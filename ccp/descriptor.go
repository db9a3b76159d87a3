// descriptor.go - request descriptor decode (spec §3, §4.2)
package ccp

import (
	"encoding/binary"
	"fmt"
)

// MemRef identifies one operand's memory location: a kind (SYSTEM, LOCAL,
// LSB), a 48-bit address split into low/high dwords, and the LSB context id
// carried alongside it for engines that need a slot rather than a flat
// offset (SHA destination, AES IV/key lookup).
type MemRef struct {
	Kind     MemKind
	Addr     uint64 // 48-bit CCP address, low32|high16
	LSBCtxID uint8
	Fixed    bool // address does not advance as the transfer progresses
}

// Descriptor is the decoded form of one 32-byte request. Fields not used by
// the selected engine are simply ignored by that engine's processor, the
// same way the original reads the whole struct unconditionally and each
// switch arm only looks at what it needs.
type Descriptor struct {
	Engine   Engine
	Function uint32
	Init     bool
	EOM      bool
	Flags    uint32

	CbSrc uint32

	Src MemRef
	Dst MemRef
	Key MemRef

	// ShaBitLen holds the reinterpreted dst-as-message-bit-length value,
	// decoded only for SHA descriptors: the entire 8-byte dst union
	// (what would otherwise be dst address low/high) is reinterpreted as
	// two uint32 words - ShaBitsLow then ShaBitsHigh - giving the total
	// message length in bits. The SHA engine does not read it; the
	// streaming hash tracks the message length itself.
	ShaBitLen uint64
}

// DecodeDescriptor parses a fixed 32-byte request descriptor. Its only check
// is the 32-byte length; unknown engine ids are rejected by Dispatch and bad
// mem-type kinds by the transfer engine or the engine that uses them.
func DecodeDescriptor(raw []byte) (Descriptor, error) {
	if len(raw) != DescriptorSize {
		return Descriptor{}, fmt.Errorf("%w: descriptor length %d", ErrMalformedDescriptor, len(raw))
	}

	dw0 := binary.LittleEndian.Uint32(raw[0:4])
	cbSrc := binary.LittleEndian.Uint32(raw[4:8])

	srcAddrLo := binary.LittleEndian.Uint32(raw[8:12])
	srcAddrHi := binary.LittleEndian.Uint16(raw[12:14])
	srcMemType := binary.LittleEndian.Uint16(raw[14:16])

	dstAddrLo := binary.LittleEndian.Uint32(raw[16:20])
	dstAddrHi := binary.LittleEndian.Uint16(raw[20:22])
	dstMemType := binary.LittleEndian.Uint16(raw[22:24])

	keyAddrLo := binary.LittleEndian.Uint32(raw[24:28])
	keyAddrHi := binary.LittleEndian.Uint16(raw[28:30])
	keyMemType := binary.LittleEndian.Uint16(raw[30:32])

	eng := Engine((dw0 >> dw0EngineShift) & dw0EngineMask)

	d := Descriptor{
		Engine:   eng,
		Function: (dw0 >> dw0FunctionShift) & dw0FunctionMask,
		Init:     (dw0>>dw0InitShift)&1 != 0,
		EOM:      (dw0>>dw0EomShift)&1 != 0,
		Flags:    (dw0 >> dw0FlagsShift) & dw0FlagsMask,
		CbSrc:    cbSrc,
		Src:      decodeMemRef(srcAddrLo, srcAddrHi, srcMemType),
		Key:      decodeMemRef(keyAddrLo, keyAddrHi, keyMemType),
	}

	if eng == EngineSHA {
		// spec §4.3/§4.9 (wire format): for SHA the entire 8-byte dst
		// union - what would otherwise be dst address low/high and dst
		// mem-type - is reinterpreted as two uint32 words giving the
		// total message bit length. There is no dst mem-type field left
		// to read; the SHA output LSB slot comes from the low bits of
		// the source mem-type field instead (spec §4.3).
		d.ShaBitLen = uint64(binary.LittleEndian.Uint32(raw[16:20])) | uint64(binary.LittleEndian.Uint32(raw[20:24]))<<32
		d.Dst = MemRef{Kind: MemLSB, LSBCtxID: d.Src.LSBCtxID}
	} else {
		d.Dst = decodeMemRef(dstAddrLo, dstAddrHi, dstMemType)
	}

	return d, nil
}

func decodeMemRef(lo uint32, hi uint16, memType uint16) MemRef {
	kind := MemKind((memType >> memKindShift) & memKindMask)
	ctxID := uint8((memType >> memLSBCtxShift) & memLSBCtxMask)
	fixed := (memType>>memFixedShift)&memFixedBit != 0
	return MemRef{
		Kind:     kind,
		Addr:     uint64(lo) | uint64(hi)<<32,
		LSBCtxID: ctxID,
		Fixed:    fixed,
	}
}
