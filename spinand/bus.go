package spinand

import (
	"github.com/hackpascal/ufprog-core-go/bridge"
	"github.com/hackpascal/ufprog-core-go/internal/clock"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// bus wraps a bridge.Bridge with the small set of 1-1-1 register
// transactions every SPI-NAND part shares regardless of its selected fast
// read/program-load IO type.
type bus struct {
	br bridge.Bridge
}

func (b *bus) reset() error {
	op := ioop.SimpleOp(OpReset, ioop.IO_1_1_1, ioop.DirNone, 0, 0, 0)
	return b.br.Exec(&op)
}

func (b *bus) getFeature(addr byte) (byte, error) {
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpGetFeature},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 1, Val: uint64(addr)},
		Data: ioop.Phase{Width: ioop.Width1, Len: 1},
		Dir:  ioop.DirIn,
		Buf:  make([]byte, 1),
	}
	if err := b.br.Exec(&op); err != nil {
		return 0, err
	}
	return op.Buf[0], nil
}

func (b *bus) setFeature(addr, val byte) error {
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpSetFeature},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 1, Val: uint64(addr)},
		Data: ioop.Phase{Width: ioop.Width1, Len: 1},
		Dir:  ioop.DirOut,
		Buf:  []byte{val},
	}
	return b.br.Exec(&op)
}

func (b *bus) writeEnable() error {
	op := ioop.SimpleOp(OpWriteEnable, ioop.IO_1_1_1, ioop.DirNone, 0, 0, 0)
	return b.br.Exec(&op)
}

func (b *bus) writeDisable() error {
	op := ioop.SimpleOp(OpWriteDisable, ioop.IO_1_1_1, ioop.DirNone, 0, 0, 0)
	return b.br.Exec(&op)
}

func (b *bus) selectDie(die uint32) error {
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpSelectDie},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 1, Val: uint64(die)},
		Dir:  ioop.DirNone,
	}
	return b.br.Exec(&op)
}

func (b *bus) readToCache(page uint32) error {
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpReadToCache},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 3, Val: uint64(page)},
		Dir:  ioop.DirNone,
	}
	return b.br.Exec(&op)
}

func (b *bus) readFromCacheSeq(addr uint32) error {
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpReadFromCacheSeq},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 2, Val: uint64(addr)},
		Dummy: ioop.Phase{Len: 1},
		Dir:  ioop.DirNone,
	}
	return b.br.Exec(&op)
}

func (b *bus) readFromCacheEnd() error {
	op := ioop.Op{Cmd: ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpReadFromCacheEnd}, Dir: ioop.DirNone}
	return b.br.Exec(&op)
}

func (b *bus) programExecute(page uint32) error {
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpProgramExecute},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 3, Val: uint64(page)},
		Dir:  ioop.DirNone,
	}
	return b.br.Exec(&op)
}

func (b *bus) blockErase(page uint32) error {
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpBlockErase},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 3, Val: uint64(page)},
		Dir:  ioop.DirNone,
	}
	return b.br.Exec(&op)
}

// readID performs one of the three JEDEC ID read framings (spec.md
// section 3 "FlashId" / section 4.3 vendor resolution).
func (b *bus) readID(t IDType, n int) ([]byte, error) {
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: OpReadID},
		Data: ioop.Phase{Width: ioop.Width1, Len: uint32(n)},
		Dir:  ioop.DirIn,
		Buf:  make([]byte, n),
	}
	switch t {
	case IDDummyFraming:
		op.Dummy = ioop.Phase{Width: ioop.Width1, Len: 1}
	case IDAddr0Framing:
		op.Addr = ioop.Phase{Width: ioop.Width1, Len: 1}
	case IDDirectFraming:
		// no addr/dummy phase
	}
	if err := b.br.Exec(&op); err != nil {
		return nil, err
	}
	return op.Buf, nil
}

// pollOIP spins on GET_FEATURE(STATUS) until OIP clears or the timeout
// elapses (spec.md section 5 "Suspension points": no sleep between polls).
func (b *bus) pollOIP(tok *clock.Token, timeout int64) error {
	return clock.Poll(tok, durationFromUS(timeout), "spinand.pollOIP", func() (bool, error) {
		sr, err := b.getFeature(FeatureStatus)
		if err != nil {
			return false, err
		}
		return sr&StatusOIP == 0, nil
	})
}

func (b *bus) lastStatus() (byte, error) {
	return b.getFeature(FeatureStatus)
}

// IDType names the three read-id framings as used internally by bus
// (mirrors catalog.IDType but kept local to avoid an import cycle with the
// catalog package's own FlashId framing tag).
type IDType uint8

const (
	IDDummyFraming IDType = iota
	IDAddr0Framing
	IDDirectFraming
)

var errUnsupportedFraming = ufpstatus.New(ufpstatus.InvalidParameter, "spinand: unsupported id framing")
