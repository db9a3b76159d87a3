// engine_zlib.go - ZLIB_DECOMPRESS engine (spec §4.9)
//
// The original's inflate() is push-based and incremental: each chunk of
// compressed input is fed in and whatever decompressed bytes become
// available are flushed immediately. Go's compress/flate.Reader is
// pull-based and offers no "feed more input, resume" API, and the
// concurrency model here rules out a goroutine-backed pipe (spec §5). This
// engine instead keeps the full compressed input seen so far and, on every
// chunk, re-runs flate.NewReader from the beginning over that accumulated
// buffer, discarding the output bytes already flushed in earlier chunks and
// flushing only the newly available suffix. It is more CPU work than a true
// incremental decompressor but deterministic, synchronous, and produces the
// exact same output stream.
package ccp

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
)

type zlibState struct {
	compressed []byte
	flushed    int
}

func processZlibDecompress(d *Device, req Descriptor) error {
	if req.Init || d.zlib == nil {
		d.zlib = &zlibState{}
	}

	// total output size isn't known in advance; the write-side budget is
	// set to effective-infinity (spec §4.9).
	x := d.XferCtxInit(req.Src, req.Dst, xferUnbounded, false)
	chunk := make([]byte, req.CbSrc)
	if req.CbSrc > 0 {
		if _, err := x.Read(chunk, nil); err != nil {
			return err
		}
	}
	d.zlib.compressed = append(d.zlib.compressed, chunk...)

	out, err := inflateAll(d.zlib.compressed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	if len(out) < d.zlib.flushed {
		return fmt.Errorf("%w: inflate output shrank across chunks", ErrCryptoFailure)
	}

	fresh := out[d.zlib.flushed:]
	for len(fresh) > 0 {
		n := len(fresh)
		if n > chunkZlib {
			n = chunkZlib
		}
		if _, err := x.Write(fresh[:n], nil); err != nil {
			return err
		}
		fresh = fresh[n:]
		d.zlib.flushed += n
	}

	if req.EOM {
		d.zlib = nil
	}
	return nil
}

func inflateAll(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && err != io.ErrUnexpectedEOF {
		return out, err
	}
	return out, nil
}
