// errors.go - sentinel errors for the CCP device model
package ccp

import "errors"

// Sentinel errors wrapped with context at the point of failure. The queue
// executor never branches on these beyond success/failure (spec §4.11); they
// exist so tests and trace messages can describe *why* a request failed.
var (
	// ErrLSBBounds is returned for any LSB access that would cross the
	// per-access length or the 4096-byte bank boundary.
	ErrLSBBounds = errors.New("ccp: local storage buffer access out of bounds")

	// ErrUnsupportedFunction is returned for any engine/function/size
	// combination the device does not implement.
	ErrUnsupportedFunction = errors.New("ccp: unsupported engine/function combination")

	// ErrMalformedDescriptor is returned when a descriptor field is
	// structurally invalid (wrong descriptor length, unknown mem-type
	// kind, SHA type changed mid-stream). An out-of-range LSB context id
	// is reported by LSB.Slot as ErrLSBBounds instead.
	ErrMalformedDescriptor = errors.New("ccp: malformed request descriptor")

	// ErrHostIO is returned when the external AddressSpace reports a
	// failure reading or writing local processor memory.
	ErrHostIO = errors.New("ccp: host I/O failure")

	// ErrCryptoFailure is returned for primitive-level failures: no
	// modular inverse, curve prime mismatch, inflate error, wrong result
	// length, and the like.
	ErrCryptoFailure = errors.New("ccp: crypto primitive failure")

	// ErrSystemMem is returned whenever a transfer targets the SYSTEM
	// memory type, which this model does not implement (spec §4.1 — the
	// original device returns -1 here too).
	ErrSystemMem = errors.New("ccp: system memory space not implemented")
)
