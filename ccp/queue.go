// queue.go - per-queue register state and the descriptor drain loop (spec §4.10, §4.11)
package ccp

// Queue holds the shadow MMIO register state for one of the device's two
// hardware queues plus the RUN-derived enabled flag. Registers are plain
// struct fields with switch-dispatched read/write, the same shape as the
// teacher's CoprocessorManager register bank.
type Queue struct {
	ctrl   uint32
	head   uint32
	tail   uint32
	status uint32
	ien    uint32
	ists   uint32

	enabled bool
}

func (q *Queue) reset() {
	q.ctrl = CtrlHalt
	q.head = 0
	q.tail = 0
	q.status = StatusSuccess
	q.ien = 0
	q.ists = 0
	q.enabled = false
}

// ReadReg reads one of this queue's registers. Per the MMIO deferral policy
// (spec §4.10), any register read on an enabled queue triggers a drain
// attempt after the value is latched - this mirrors real firmware that
// kicks RUN and then polls a register (often STATUS or CTRL) waiting for
// HALT, rather than relying on an edge-triggered side effect of the RUN
// write itself. Driving the drain from the RUN write directly reproduced a
// stack-overwrite bug in the original hardware/firmware interaction when
// the kick happened to run on the caller's stack at an inconvenient depth;
// the original works around it by only ever draining in response to a
// subsequent poll, and this model preserves that.
func (d *Device) ReadReg(qi int, offset uint32) uint32 {
	q := &d.Queues[qi]
	var v uint32
	switch offset {
	case RegCtrl:
		v = q.ctrl
	case RegHead:
		v = q.head
	case RegTail:
		v = q.tail
	case RegStatus:
		v = q.status
	case RegIen:
		v = q.ien
	case RegIsts:
		v = q.ists
	}
	d.drain(qi)
	return v
}

// WriteReg writes one of this queue's registers. A write only triggers a
// drain attempt if the queue currently has any interrupt enabled (spec
// §4.10) - critically, not unconditionally, and not as a direct
// consequence of the RUN bit itself flipping on.
func (d *Device) WriteReg(qi int, offset uint32, val uint32) {
	q := &d.Queues[qi]
	switch offset {
	case RegCtrl:
		// The RUN bit write is deliberately exempt from the general
		// write-triggers-drain rule below: coupling it directly to a
		// drain attempt reproduced the original stack-overwrite bug
		// (see ReadReg). Firmware kicks RUN and then polls a register,
		// which is what actually starts the drain.
		q.enabled = val&CtrlRun != 0
		q.ctrl = val &^ CtrlRun
		return
	case RegHead:
		q.head = val
	case RegTail:
		q.tail = val
	case RegStatus:
		q.status = val
	case RegIen:
		q.ien = val
		if q.ien&q.ists == 0 {
			d.setIRQ(false)
		}
	case RegIsts:
		q.ists &^= val
		if q.ien&q.ists == 0 {
			d.setIRQ(false)
		}
	}
	if q.ien != 0 {
		d.drain(qi)
	}
}

// drain runs descriptors out of the queue until it empties or one fails.
// On success head advances past the descriptor that was just processed; on
// failure it does not - head is left pointing at the failing descriptor so
// a shell restarting the queue (or inspecting it) sees exactly what it
// choked on (spec §4.11).
func (d *Device) drain(qi int) {
	q := &d.Queues[qi]
	if !q.enabled {
		return
	}

	for q.tail != q.head {
		raw := make([]byte, DescriptorSize)
		if d.AddrSpace == nil || d.AddrSpace.ReadLocal(q.head, raw) != nil {
			q.status = StatusError
			q.ists |= IstsError
			break
		}

		req, err := DecodeDescriptor(raw)
		if err == nil {
			err = d.Dispatch(req)
		}

		if err != nil {
			d.trace(SeverityError, "queue %d: descriptor at %#x failed: %v", qi, q.head, err)
			q.status = StatusError
			q.ists |= IstsError
			break
		}

		q.status = StatusSuccess
		q.ists |= IstsCompletion
		q.head += DescriptorSize
	}

	q.enabled = false
	q.ctrl |= CtrlHalt
	q.ists |= IstsQStop
	if q.tail == q.head {
		q.ists |= IstsQEmpty
	}

	if q.ien&q.ists != 0 {
		d.setIRQ(true)
	}
}

func (d *Device) setIRQ(assert bool) {
	if d.IRQ != nil {
		d.IRQ.SetIRQ(IRQPrio, IRQDevice, assert)
	}
}
