// engine_sha.go - SHA engine (spec §4.3)
package ccp

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

// shaState is the device's persistent streaming SHA context. A request
// descriptor with no open context starts one automatically the first time
// it is used, regardless of whether Init was actually set on that
// descriptor (spec §4.3 deviates here from a strict init-gate, matching the
// original's tolerance of firmware that forgets to set it on the first
// chunk of a message).
type shaState struct {
	h    hash.Hash
	kind uint32
}

func processSHA(d *Device, req Descriptor) error {
	kind := (req.Function >> shaTypeShift) & shaTypeMask
	if kind != SHAType256 && kind != SHAType384 {
		return fmt.Errorf("%w: sha type %d", ErrUnsupportedFunction, kind)
	}

	if d.sha == nil || req.Init {
		d.sha = &shaState{h: newSHA(kind), kind: kind}
	}
	if d.sha.kind != kind {
		return fmt.Errorf("%w: sha type changed mid-stream", ErrMalformedDescriptor)
	}

	x := d.XferCtxInit(req.Src, req.Dst, 0, false) // read-only side; this context never writes
	remaining := req.CbSrc
	buf := make([]byte, chunkSHA)
	for remaining > 0 {
		n := uint32(len(buf))
		if n > remaining {
			n = remaining
		}
		if _, err := x.Read(buf[:n], nil); err != nil {
			return err
		}
		d.sha.h.Write(buf[:n])
		remaining -= n
	}

	if req.EOM {
		digest := d.sha.h.Sum(nil)
		if _, err := d.LSB.Slot(req.Dst.LSBCtxID); err != nil {
			return err
		}
		digestDst := MemRef{Kind: MemLSB, Addr: uint64(req.Dst.LSBCtxID) * LSBSlotSize}
		wx := d.XferCtxInit(digestDst, digestDst, uint32(len(digest)), true)
		if _, err := wx.Write(digest, nil); err != nil {
			return err
		}
		d.sha = nil
	}
	return nil
}

func newSHA(kind uint32) hash.Hash {
	if kind == SHAType384 {
		return sha512.New384()
	}
	return sha256.New()
}
