// Package nand implements the generic NAND layer of spec.md section 4.5
// (component E): page/block arithmetic, bad-block-marker check/write,
// torture test, and page-layout conversion, sitting above a per-protocol
// Chip (SPI-NAND core) and below the Basic FTL.
package nand

import (
	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/ecc"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// Chip is the protocol-specific driver this layer sits on top of,
// implemented by the SPI-NAND core (component D). Page numbers are flat
// (die-relative addressing happens inside the chip implementation).
type Chip interface {
	ReadPage(page uint32, column uint32, buf []byte, enableECC bool) error
	WritePage(page uint32, column uint32, buf []byte) error
	EraseBlock(block uint32) error
	SelectDie(die uint32) error
	ReadUID() ([]byte, error)

	OTPRead(index, column uint32, buf []byte) error
	OTPWrite(index, column uint32, buf []byte) error
	OTPLock() error
	OTPLocked() (bool, error)
}

// Nand binds a Chip to its catalog geometry and ECC driver, exposing the
// generic operations of spec.md section 4.5.
type Nand struct {
	Chip   Chip
	MemOrg catalog.MemoryOrg
	ECC    *ecc.Chip
	BBM    catalog.BbmConfig
}

func New(chip Chip, memOrg catalog.MemoryOrg, eccChip *ecc.Chip, bbm catalog.BbmConfig) *Nand {
	return &Nand{Chip: chip, MemOrg: memOrg, ECC: eccChip, BBM: bbm}
}

// ReadPage reads len(buf) bytes from page at column, with ECC applied per
// the bound ECC driver.
func (n *Nand) ReadPage(page, column uint32, buf []byte) error {
	if err := n.Chip.ReadPage(page, column, buf, n.ECC != nil); err != nil {
		return err
	}
	if n.ECC != nil && n.ECC.Ops.DecodePage != nil {
		st, err := n.ECC.Ops.DecodePage(buf, nil)
		if err != nil {
			return err
		}
		if st.Result == catalog.EccUncorrectable {
			return ufpstatus.New(ufpstatus.EccUncorrectable, "nand.ReadPage")
		}
	}
	return nil
}

// ReadPages reads count consecutive pages starting at page. With ignoreECC
// set, a page with an uncorrectable ECC error is counted as read and the
// walk goes on; otherwise that error ends the read.
func (n *Nand) ReadPages(page, count uint32, buf []byte, ignoreECC bool) (uint32, error) {
	pageSize := n.MemOrg.PageSize + n.MemOrg.OobSize
	var done uint32
	for i := uint32(0); i < count; i++ {
		off := i * pageSize
		err := n.ReadPage(page+i, 0, buf[off:off+pageSize])
		if err != nil {
			if k, ok := ufpstatus.KindOf(err); ok && k == ufpstatus.EccUncorrectable && ignoreECC {
				done++
				continue
			}
			return done, err
		}
		done++
	}
	return done, nil
}

// WritePage programs len(buf) bytes at column on page.
func (n *Nand) WritePage(page, column uint32, buf []byte) error {
	return n.Chip.WritePage(page, column, buf)
}

// EraseBlock erases one block.
func (n *Nand) EraseBlock(block uint32) error {
	return n.Chip.EraseBlock(block)
}

// SelectDie re-selects the active die.
func (n *Nand) SelectDie(die uint32) error {
	return n.Chip.SelectDie(die)
}

// ReadUID returns the chip's unique ID.
func (n *Nand) ReadUID() ([]byte, error) {
	return n.Chip.ReadUID()
}
