// Package ecc implements the ECC driver abstraction of spec.md section 4.7
// (component G): a small plugin-shaped interface producing per-step
// bitflip status, with on-die SPI-NAND ECC reflected through the same
// shape as an external driver would be.
package ecc

import "github.com/hackpascal/ufprog-core-go/catalog"

// Type names where ECC computation happens.
type Type uint8

const (
	TypeNone Type = iota
	TypeOnDie
	TypeExternal
)

// Ops is the per-chip ECC operation set (spec.md section 4.7
// "ops{encode_page, decode_page, get_status, set_enable, convert_page_layout}").
type Ops struct {
	// EncodePage computes parity for a canonical page and writes it into
	// raw. On-die ECC's EncodePage is a no-op: the chip computes parity
	// internally during PROGRAM_EXECUTE.
	EncodePage func(canonical []byte, raw []byte) error
	// DecodePage corrects raw in place (or into canonical) and returns
	// the resulting status.
	DecodePage func(raw []byte, canonical []byte) (catalog.EccStatus, error)
	// GetStatus returns the status of the most recent DecodePage/on-die
	// read without recomputing it. ECC status is only valid until the
	// next cache load (spec.md section 5 "Ordering guarantees").
	GetStatus func() (catalog.EccStatus, error)
	// SetEnable toggles ECC at the chip (on-die) or driver (external)
	// level.
	SetEnable func(enable bool) error
	// ConvertPageLayout transforms a page between the on-chip raw layout
	// and the canonical vendor-neutral layout.
	ConvertPageLayout func(page []byte, fromCanonical bool) error
}

// Chip is one bound ECC driver instance (spec.md section 4.7
// "ecc_chip = {type, name, config, bbm_config, page_layout, ops}").
type Chip struct {
	Type       Type
	Name       string
	Config     catalog.EccConfig
	BBM        catalog.BbmConfig
	PageLayout *catalog.PageLayout
	Ops        Ops
}

// NewOnDieChip builds the synthetic ECC chip the SPI-NAND core supplies
// for on-die ECC (spec.md section 4.7): DecodePage calls the chip's
// check_ecc() on every call (a fresh status read) and caches its result,
// GetStatus returns that cached result without a new read, and EncodePage
// is a no-op since the chip computes parity on PROGRAM_EXECUTE.
func NewOnDieChip(name string, cfg catalog.EccConfig, bbm catalog.BbmConfig, layout *catalog.PageLayout, checkEcc func() (catalog.EccStatus, error), setEnable func(bool) error) *Chip {
	var cached catalog.EccStatus
	return &Chip{
		Type: TypeOnDie, Name: name, Config: cfg, BBM: bbm, PageLayout: layout,
		Ops: Ops{
			EncodePage: func(canonical, raw []byte) error { return nil },
			DecodePage: func(raw, canonical []byte) (catalog.EccStatus, error) {
				st, err := checkEcc()
				if err != nil {
					return catalog.EccStatus{}, err
				}
				cached = st
				return st, nil
			},
			GetStatus: func() (catalog.EccStatus, error) { return cached, nil },
			SetEnable: setEnable,
			ConvertPageLayout: func(page []byte, fromCanonical bool) error { return nil },
		},
	}
}
