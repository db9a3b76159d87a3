// engine_aes.go - AES engine (spec §4.5)
//
// Two deliberate deviations from the original C device model, both recorded
// in DESIGN.md: a key mem-type that is neither LOCAL nor LSB is treated as
// ErrMalformedDescriptor here (the original silently leaves the output key
// buffer untouched and proceeds - a latent bug, not a semantic this device
// model replicates); and a protected-LSB key with no configured AESProxy is
// a hard ErrUnsupportedFunction here (the original logs FATAL_ERROR but
// falls through into the keyed path anyway, producing undefined output).
package ccp

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

func processAES(d *Device, req Descriptor) error {
	size := (req.Function >> aesSizeShift) & aesSizeMask
	encrypt := (req.Function>>aesEncryptShift)&1 != 0
	mode := (req.Function >> aesModeShift) & aesModeMask
	keyType := (req.Function >> aesTypeShift) & aesTypeMask

	keyAddr := uint32(req.Key.Addr)
	if req.Key.Kind == MemLSB && keyAddr < ProtectedLSBEnd {
		return processAESProxy(d, req, encrypt, mode)
	}

	if size != 0 {
		return fmt.Errorf("%w: aes size field %d must be 0", ErrUnsupportedFunction, size)
	}
	if mode != AESModeECB && mode != AESModeCBC {
		return fmt.Errorf("%w: aes mode %d", ErrUnsupportedFunction, mode)
	}
	if keyType != AESType128 && keyType != AESType256 {
		return fmt.Errorf("%w: aes key type %d", ErrUnsupportedFunction, keyType)
	}

	keyLen := 16
	if keyType == AESType256 {
		keyLen = 32
	}

	key, err := readKeyMaterial(d, req.Key, keyLen)
	if err != nil {
		return err
	}
	key = reverseBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	var stream cipher.BlockMode
	if mode == AESModeCBC {
		slot, err := d.LSB.Slot(req.Src.LSBCtxID)
		if err != nil {
			return err
		}
		iv := reverseBytes(slot[:16])
		if encrypt {
			stream = cipher.NewCBCEncrypter(block, iv)
		} else {
			stream = cipher.NewCBCDecrypter(block, iv)
		}
	}

	x := d.XferCtxInit(req.Src, req.Dst, req.CbSrc, false)
	remaining := req.CbSrc
	if remaining%16 != 0 {
		return fmt.Errorf("%w: aes cbSrc %d not block-aligned", ErrUnsupportedFunction, remaining)
	}
	buf := make([]byte, chunkAES)
	out := make([]byte, chunkAES)
	for remaining > 0 {
		n := uint32(len(buf))
		if n > remaining {
			n = remaining
		}
		if _, err := x.Read(buf[:n], nil); err != nil {
			return err
		}
		switch mode {
		case AESModeECB:
			for off := uint32(0); off < n; off += 16 {
				if encrypt {
					block.Encrypt(out[off:off+16], buf[off:off+16])
				} else {
					block.Decrypt(out[off:off+16], buf[off:off+16])
				}
			}
		case AESModeCBC:
			stream.CryptBlocks(out[:n], buf[:n])
		}
		if _, err := x.Write(out[:n], nil); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

func readKeyMaterial(d *Device, ref MemRef, n int) ([]byte, error) {
	buf := make([]byte, n)
	switch ref.Kind {
	case MemLSB:
		slot, err := d.LSB.Slot(ref.LSBCtxID)
		if err != nil {
			return nil, err
		}
		if n > len(slot) {
			return nil, fmt.Errorf("%w: key length %d exceeds lsb slot", ErrLSBBounds, n)
		}
		copy(buf, slot[:n])
	case MemLocal:
		if d.AddrSpace == nil {
			return nil, fmt.Errorf("%w: no address space configured", ErrHostIO)
		}
		if err := d.AddrSpace.ReadLocal(uint32(ref.Addr), buf); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHostIO, err)
		}
	default:
		return nil, fmt.Errorf("%w: key mem kind %d", ErrMalformedDescriptor, ref.Kind)
	}
	return buf, nil
}

func processAESProxy(d *Device, req Descriptor, encrypt bool, mode uint32) error {
	if d.AESProxy == nil {
		return fmt.Errorf("%w: protected lsb key with no aes proxy configured", ErrUnsupportedFunction)
	}
	if req.CbSrc > 4096 {
		return fmt.Errorf("%w: aes proxy request exceeds 4 KiB", ErrUnsupportedFunction)
	}

	in := make([]byte, req.CbSrc)
	x := d.XferCtxInit(req.Src, req.Dst, req.CbSrc, false)
	if _, err := x.Read(in, nil); err != nil {
		return err
	}

	var iv []byte
	if mode == AESModeCBC {
		slot, err := d.LSB.Slot(req.Src.LSBCtxID)
		if err != nil {
			return err
		}
		iv = reverseBytes(slot[:16])
	}

	out := make([]byte, len(in))
	dw0 := uint32(req.Engine)<<dw0EngineShift | req.Function<<dw0FunctionShift | req.Flags<<dw0FlagsShift
	if req.Init {
		dw0 |= 1 << dw0InitShift
	}
	if req.EOM {
		dw0 |= 1 << dw0EomShift
	}
	status, err := d.AESProxy.DoAES(dw0, req.CbSrc, in, out, uint32(req.Key.Addr), iv)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	if status != StatusSuccess {
		return fmt.Errorf("%w: aes proxy status %d", ErrCryptoFailure, status)
	}

	if _, err := x.Write(out, nil); err != nil {
		return err
	}
	return nil
}
