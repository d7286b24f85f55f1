package nand

import (
	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// countOnes reports how many bits are set in the marker field bytes,
// width bits wide starting at bit 0 of the first byte.
func countOnes(data []byte, width uint32) uint32 {
	var n uint32
	remaining := width
	for _, b := range data {
		w := remaining
		if w > 8 {
			w = 8
		}
		for i := uint32(0); i < w; i++ {
			if b&(1<<i) != 0 {
				n++
			}
		}
		remaining -= w
		if remaining == 0 {
			break
		}
	}
	return n
}

// checkBBMPage reads just the bytes a single BbmCheck entry needs (raw if
// BbmRaw is set) and reports whether the marker looks bad: fewer set bits
// than check.Width means bad (spec.md section 4.5 "checkbad").
func (n *Nand) checkBBMPage(page uint32, check catalog.BbmCheck) (bad bool, err error) {
	byteLen := (check.Width + 7) / 8
	buf := make([]byte, byteLen)

	if n.BBM.Flags&catalog.BbmRaw != 0 && n.ECC != nil && n.ECC.Ops.SetEnable != nil {
		if err := n.ECC.Ops.SetEnable(false); err != nil {
			return false, err
		}
		defer n.ECC.Ops.SetEnable(true)
	}

	if err := n.Chip.ReadPage(page, check.Offset, buf, false); err != nil {
		return false, err
	}

	ones := countOnes(buf, check.Width)
	return ones < check.Width, nil
}

// CheckBad implements spec.md section 4.5's checkbad(block): iterate
// bbm.pages[]; if every page check failed at the I/O level, report
// DeviceIoError; if at least one returned bad, the block is bad; if at
// least one returned good, the block is good.
func (n *Nand) CheckBad(block uint32) (bool, error) {
	if len(n.BBM.Pages) == 0 || len(n.BBM.Check) == 0 {
		return false, nil
	}
	pageBase := block << n.blockPageShift()

	var ioFailures, badCount, goodCount int
	for _, rel := range n.BBM.Pages {
		page := pageBase + rel
		anyGood, anyBad := false, false
		for _, chk := range n.BBM.Check {
			bad, err := n.checkBBMPage(page, chk)
			if err != nil {
				ioFailures++
				continue
			}
			if bad {
				anyBad = true
			} else {
				anyGood = true
			}
		}
		if anyBad {
			badCount++
		}
		if anyGood {
			goodCount++
		}
	}

	total := len(n.BBM.Pages) * maxInt(1, len(n.BBM.Check))
	if ioFailures >= total {
		return false, ufpstatus.New(ufpstatus.DeviceIoError, "nand.CheckBad")
	}
	if badCount > 0 {
		return true, nil
	}
	return goodCount == 0, nil
}

// MarkBad implements spec.md section 4.5's markbad(block): write each
// marker page as all-zeroes (MarkWholePage) or a 0xFF buffer with the
// marker bytes zeroed, then verify with CheckBad expecting bad. At least
// one successful marker+verify counts as success.
func (n *Nand) MarkBad(block uint32) error {
	pageBase := block << n.blockPageShift()
	pageSize := n.MemOrg.PageSize + n.MemOrg.OobSize

	var anySuccess bool
	for _, rel := range n.BBM.Pages {
		page := pageBase + rel
		buf := make([]byte, pageSize)

		if n.BBM.Flags&catalog.BbmMarkWholePage != 0 {
			// buf is already all zero.
		} else {
			for i := range buf {
				buf[i] = 0xFF
			}
			for _, m := range n.BBM.Mark {
				byteLen := (m.Width + 7) / 8
				for i := uint32(0); i < byteLen && m.Offset+i < pageSize; i++ {
					buf[m.Offset+i] = 0
				}
			}
		}

		if err := n.Chip.WritePage(page, 0, buf); err != nil {
			continue
		}
		anySuccess = true
	}

	if !anySuccess {
		return ufpstatus.New(ufpstatus.DeviceIoError, "nand.MarkBad: all marker writes failed")
	}

	bad, err := n.CheckBad(block)
	if err != nil {
		return err
	}
	if !bad {
		return ufpstatus.New(ufpstatus.FlashProgramFailed, "nand.MarkBad: verify still reports good")
	}
	return nil
}

func (n *Nand) blockPageShift() uint {
	return n.MemOrg.BlockShift - n.MemOrg.PageShift
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
