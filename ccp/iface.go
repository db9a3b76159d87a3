// iface.go - external collaborator interfaces (spec §6)
//
// The CCP device model does not own any of these: the surrounding emulator
// shell, the I/O manager, the interrupt controller and the optional
// real-hardware proxy are all out of scope (spec §1) and are consumed only
// through the interfaces below, the same way CoprocessorManager in the
// teacher consumes a *MachineBus rather than owning memory itself.
package ccp

// AddressSpace is the host I/O manager interface consumed for LOCAL
// memory-type transfers (psp_addr_read/psp_addr_write). Addresses are
// 32-bit PSP-local addresses.
type AddressSpace interface {
	ReadLocal(addr uint32, dst []byte) error
	WriteLocal(addr uint32, src []byte) error
}

// IRQLine is the interrupt interface consumed to raise the shared CCP
// interrupt (irq_set). prio and dev mirror the original's idPrio/idDev
// parameters; the CCP always uses prio 0 and the fixed device id 0x15.
type IRQLine interface {
	SetIRQ(prio uint8, dev uint8, assert bool)
}

// AESProxy is the optional real-hardware proxy interface (aes_do) used to
// execute AES operations against protected-LSB keys the emulator cannot
// see. dw0 is the descriptor's raw first dword, cbSrc the byte count, in
// the source buffer, out the destination buffer (same length as in),
// keyAddr the LSB key address, iv the IV when the mode needs one (nil
// otherwise).
// It returns the CCP status register value the operation would have
// produced.
type AESProxy interface {
	DoAES(dw0 uint32, cbSrc uint32, in []byte, out []byte, keyAddr uint32, iv []byte) (status uint32, err error)
}
