package catalog

import (
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// RegionType names a PageLayout entry's purpose (spec.md section 3
// "PageLayout").
type RegionType uint8

const (
	RegionUnused RegionType = iota
	RegionData
	RegionOobData
	RegionOobFree
	RegionEccParity
	RegionMarker
)

// LayoutEntry is one ordered (type, byte_count) pair in a PageLayout.
type LayoutEntry struct {
	Type  RegionType
	Count uint32
}

// PageLayout is an ordered sequence of regions covering exactly
// page_size+oob_size bytes (spec.md invariant 2). A part may carry two: an
// on-chip "raw" layout and a canonical vendor-neutral one.
type PageLayout struct {
	Entries []LayoutEntry
}

// Validate checks the byte-count sum invariant.
func (l PageLayout) Validate(pageSize, oobSize uint32) error {
	var sum uint32
	for _, e := range l.Entries {
		sum += e.Count
	}
	if sum != pageSize+oobSize {
		return ufpstatus.New(ufpstatus.InvalidParameter, "pagelayout.Validate: byte counts do not sum to page_size+oob_size")
	}
	return nil
}

// Offsets returns the byte offset of each entry, in encounter order.
func (l PageLayout) Offsets() []uint32 {
	offs := make([]uint32, len(l.Entries))
	var at uint32
	for i, e := range l.Entries {
		offs[i] = at
		at += e.Count
	}
	return offs
}

// FillFlags controls fill_page_by_layout behaviour (spec.md section 4.5).
type FillFlags uint32

const (
	FillOob FillFlags = 1 << iota
	FillUnprotectedOob
	FillUnused
	FillEccParity
	SrcSkipNonData
)

// FillPageByLayout walks layout and either copies from src (0xFF-padding
// beyond count), fills 0xFF per flags, or leaves dst untouched, matching
// spec.md section 4.5's fill_page_by_layout.
func FillPageByLayout(dst []byte, src []byte, layout PageLayout, flags FillFlags) {
	var at uint32
	srcAt := 0
	for _, e := range layout.Entries {
		region := dst[at : at+e.Count]
		isData := e.Type == RegionData

		switch {
		case isData:
			n := 0
			if srcAt < len(src) {
				n = copy(region, src[srcAt:])
			}
			for i := n; i < len(region); i++ {
				region[i] = 0xFF
			}
			srcAt += len(region)
		case e.Type == RegionOobFree && flags&FillUnprotectedOob != 0:
			fillFF(region)
		case e.Type == RegionUnused && flags&FillUnused != 0:
			fillFF(region)
		case e.Type == RegionEccParity && flags&FillEccParity != 0:
			fillFF(region)
		case (e.Type == RegionOobData || e.Type == RegionOobFree) && flags&FillOob != 0:
			fillFF(region)
		default:
			if flags&SrcSkipNonData == 0 {
				srcAt += len(region)
			}
		}
		at += e.Count
	}
}

func fillFF(b []byte) {
	for i := range b {
		b[i] = 0xFF
	}
}
