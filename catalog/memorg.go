package catalog

import (
	"github.com/hackpascal/ufprog-core-go/internal/numeric"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// MemoryOrg is the geometry of a NAND device (spec.md section 3
// "MemoryOrg"). Derived shift/mask/count fields are computed once by Bind.
type MemoryOrg struct {
	PageSize      uint32 // bytes
	OobSize       uint32 // bytes, NAND only
	PagesPerBlock uint32
	BlocksPerLun  uint32
	LunsPerCS     uint32
	NumChips      uint32
	PlanesPerLun  uint32

	// Derived, populated by Bind.
	PageShift  uint
	BlockShift uint
	LunShift   uint
	ChipShift  uint
	PageMask   uint32
	BlockMask  uint32
	LunMask    uint32
	PageCount  uint64
	BlockCount uint64
}

// Bind validates the power-of-two invariants (spec.md section 8 invariant 1)
// and populates every derived field.
func (m *MemoryOrg) Bind() error {
	for _, f := range []uint32{m.PageSize, m.PagesPerBlock, m.BlocksPerLun, m.LunsPerCS, m.PlanesPerLun} {
		if f == 0 || !numeric.IsPowerOfTwo(f) {
			return ufpstatus.New(ufpstatus.InvalidParameter, "memorg.Bind: non-power-of-two field")
		}
	}
	if m.OobSize == 0 {
		return ufpstatus.New(ufpstatus.InvalidParameter, "memorg.Bind: oob_size must be > 0 for NAND")
	}
	if m.NumChips == 0 {
		m.NumChips = 1
	}

	m.PageShift = uint(numeric.Log2(m.PageSize))
	m.BlockShift = m.PageShift + uint(numeric.Log2(m.PagesPerBlock))
	m.LunShift = m.BlockShift + uint(numeric.Log2(m.BlocksPerLun))
	m.ChipShift = m.LunShift + uint(numeric.Log2(m.LunsPerCS))

	m.PageMask = m.PagesPerBlock - 1
	m.BlockMask = m.BlocksPerLun - 1
	m.LunMask = m.LunsPerCS - 1

	m.PageCount = uint64(m.PagesPerBlock) * uint64(m.BlocksPerLun) * uint64(m.LunsPerCS) * uint64(m.NumChips)
	m.BlockCount = uint64(m.BlocksPerLun) * uint64(m.LunsPerCS) * uint64(m.NumChips)
	return nil
}

// SelectDiePage splits a flat page number into its die index and
// within-die page number (spec.md section 8 invariant 4):
// die = page >> (lun_shift - page_shift), page' = page & ((1<<(lun_shift-page_shift))-1).
func (m *MemoryOrg) SelectDiePage(page uint32) (die uint32, withinDie uint32) {
	shift := m.LunShift - m.PageShift
	die = page >> shift
	withinDie = page & ((1 << shift) - 1)
	return die, withinDie
}

// EccConfig describes step-granular ECC strength (spec.md section 3).
type EccConfig struct {
	StepSize         uint32 // bytes of user data per ECC step
	StrengthPerStep  uint32 // correctable bits
}

// Steps returns ecc_steps = page_size / step_size (spec.md invariant 3).
func (e EccConfig) Steps(pageSize uint32) (uint32, error) {
	if e.StepSize == 0 || pageSize%e.StepSize != 0 {
		return 0, ufpstatus.New(ufpstatus.InvalidParameter, "eccconfig.Steps: page_size not a multiple of step_size")
	}
	return pageSize / e.StepSize, nil
}
