package ioop

import (
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// Direction of the data phase of an op.
type Direction uint8

const (
	DirNone Direction = iota
	DirIn             // data read from the chip
	DirOut            // data written to the chip
)

// Phase is one of the four fields of a SPI-mem op record: opcode, address,
// dummy cycles, or data. Width and DTR describe how this phase is clocked;
// Len is the byte length of the phase (for Data, this is the transfer size).
type Phase struct {
	Width BusWidth
	DTR   bool
	Len   uint32
	Val   uint64 // opcode byte (phase=cmd) or address value (phase=addr)
}

// Op is the generic SPI-mem op record: spec.md section 3 "IoOp (SPI-mem
// op)". It is the sole boundary between flash logic and a Bridge.
type Op struct {
	Cmd   Phase
	Addr  Phase // Addr.Len is the address byte count (0, 1, 2, 3, 4)
	Dummy Phase // Dummy.Len is the dummy byte count
	Data  Phase
	Dir   Direction
	Buf   []byte // data buffer; length Data.Len, direction per Dir
}

// NDummyCycles returns the dummy phase length in clock cycles rather than
// bytes, honouring invariant 17 ("dummy-cycle count is always byte-aligned").
func (op *Op) NDummyCycles() uint32 {
	if op.Dummy.Width == 0 {
		return op.Dummy.Len * 8
	}
	return op.Dummy.Len * 8 / uint32(op.Dummy.Width)
}

// SimpleOp builds a single-opcode-byte op of the given IO type and
// direction, as used by the opcode-selection probe (spec.md section 4.4).
func SimpleOp(opcode byte, ioType IOType, dir Direction, naddr, ndummy uint8, dataLen uint32) Op {
	info := ioType.Info()
	op := Op{
		Cmd:  Phase{Width: info.CmdWidth(), DTR: info.DTR(), Len: 1, Val: uint64(opcode)},
		Dir:  dir,
		Data: Phase{Width: info.DataWidth(), DTR: info.DTR(), Len: dataLen},
	}
	if naddr > 0 {
		op.Addr = Phase{Width: info.AddrWidth(), DTR: info.DTR(), Len: uint32(naddr)}
	}
	if ndummy > 0 {
		op.Dummy = Phase{Width: info.AddrWidth(), DTR: info.DTR(), Len: uint32(ndummy)}
	}
	return op
}

// Executor is the boundary named in spec.md section 4.1: flash logic speaks
// only to this interface, never to a concrete bridge.
type Executor interface {
	// Exec performs the op synchronously, returning any device-level error.
	Exec(op *Op) error
	// Supports reports whether the controller can perform this exact op
	// (bus widths, DTR, opcode framing).
	Supports(op *Op) bool
	// AdjustOpSize shrinks op.Data.Len to what the controller can carry in
	// a single transaction; callers must loop, advancing address and
	// buffer offset by the returned length.
	AdjustOpSize(op *Op) uint32
}

// ExecSplit drives repeated Exec calls for an op whose data length may
// exceed the controller's single-transaction capacity, advancing the
// address field and buffer slice between iterations (spec.md section 4.1:
// "adjust_op_size MUST be called in a loop around exec ... the caller
// advances addr and buf by the actual transferred length").
func ExecSplit(ex Executor, op Op, addr uint64, buf []byte) error {
	remaining := buf
	for len(remaining) > 0 {
		cur := op
		cur.Addr.Val = addr
		cur.Data.Len = uint32(len(remaining))
		cur.Buf = remaining

		n := ex.AdjustOpSize(&cur)
		if n == 0 {
			return ufpstatus.New(ufpstatus.DeviceIoError, "ioop.ExecSplit: adjust_op_size returned 0")
		}
		if n > uint32(len(remaining)) {
			n = uint32(len(remaining))
		}
		cur.Data.Len = n
		cur.Buf = remaining[:n]

		if !ex.Supports(&cur) {
			return ufpstatus.New(ufpstatus.Unsupported, "ioop.ExecSplit")
		}
		if err := ex.Exec(&cur); err != nil {
			return err
		}

		addr += uint64(n)
		remaining = remaining[n:]
	}
	return nil
}
