package catalog

// MaxBbmPages is NAND_BBM_MAX_PAGES from spec.md section 3.
const MaxBbmPages = 4

// BbmFlags are the per-part bad-block-marker handling flags (spec.md
// section 3 "BbmConfig").
type BbmFlags uint32

const (
	// BbmRaw disables ECC when reading the marker.
	BbmRaw BbmFlags = 1 << iota
	// BbmCanonicalLayout routes the marker read/write through layout
	// conversion.
	BbmCanonicalLayout
	// BbmMarkWholePage zeroes the entire page to mark it bad (some
	// Toshiba parts).
	BbmMarkWholePage
	// BbmMergePage unions the default marker pages into the
	// ECC-driver-supplied list.
	BbmMergePage
)

// BbmCheck is a byte range within the marker page to inspect.
type BbmCheck struct {
	Offset uint32
	Width  uint32 // bit width of the marker field
}

// BbmMark is a byte range to write when marking a block bad.
type BbmMark struct {
	Offset uint32
	Width  uint32
}

// BbmConfig describes where and how bad-block markers live (spec.md
// section 3).
type BbmConfig struct {
	Pages []uint32 // which pages within a block to check/mark, len <= MaxBbmPages
	Check []BbmCheck
	Mark  []BbmMark
	Flags BbmFlags
}
