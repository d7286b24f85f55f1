// Package ftl implements the Basic FTL of spec.md section 4.8 (component
// H): a block-skipping linear address map with torture-then-mark-bad retry
// on write/erase failure.
package ftl

import (
	"github.com/hackpascal/ufprog-core-go/bbt"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/nand"
)

// Flags control read/write behaviour (spec.md section 4.8).
type Flags uint32

const (
	IgnoreEccError Flags = 1 << iota
	IgnoreIOError
	// DontCheckBad disables BBT consultation entirely and maps logical
	// <-> physical 1:1 (FTL_BASIC_F_DONT_CHECK_BAD).
	DontCheckBad
)

// Callbacks are the optional progress-reporting hooks invoked around each
// sub-batch (spec.md section 4.8: "cb has {pre(n), post(n), buffer?}").
type Callbacks struct {
	Pre    func(n uint32)
	Post   func(n uint32)
	Buffer []byte // optional per-page scratch, reused across calls
}

// Partition describes the logical window this FTL operates within
// (spec.md section 4.8: "partition.base_block").
type Partition struct {
	BaseBlock        uint32
	PagesPerBlockShift uint
	PageSize         uint32
}

// retryBudget is the FTL's skip-bad retry count per failed block
// (spec.md section 4.8).
const retryBudget = 3

// FTL binds a NAND layer and BBT driver to implement the block-skipping
// contracts.
type FTL struct {
	Nand *nand.Nand
	BBT  bbt.Driver
}

// isGoodBlock consults the BBT unless DontCheckBad is set.
func (f *FTL) isGoodBlock(block uint32, flags Flags) (bool, error) {
	if flags&DontCheckBad != 0 {
		return true, nil
	}
	s, err := f.BBT.GetState(block)
	if err != nil {
		return false, err
	}
	return s == bbt.Good || s == bbt.Erased, nil
}

// ReadPages implements spec.md section 4.8's read_pages: walks blocks
// starting at partition.base_block + (logical_page >> pages_per_block_shift),
// skipping bad/reserved blocks (each skipped block is recorded once in
// skipLogged; no log message is emitted), respecting
// IgnoreEccError/IgnoreIOError.
func (f *FTL) ReadPages(part Partition, logicalPage uint32, count uint32, buf []byte, flags Flags, cb *Callbacks) (uint32, error) {
	skipLogged := make(map[uint32]bool)
	pagesPerBlock := uint32(1) << part.PagesPerBlockShift
	var done uint32

	block := part.BaseBlock + (logicalPage >> part.PagesPerBlockShift)
	withinBlock := logicalPage & (pagesPerBlock - 1)

	for done < count {
		good, err := f.isGoodBlock(block, flags)
		if err != nil {
			return done, err
		}
		if !good {
			if !skipLogged[block] {
				skipLogged[block] = true
			}
			block++
			withinBlock = 0
			continue
		}

		if cb != nil && cb.Pre != nil {
			cb.Pre(1)
		}

		physPage := (block << part.PagesPerBlockShift) + withinBlock
		off := done * part.PageSize
		err = f.Nand.ReadPage(physPage, 0, buf[off:off+part.PageSize])
		if err != nil {
			if k, ok := ufpstatus.KindOf(err); ok {
				if k == ufpstatus.EccUncorrectable && flags&IgnoreEccError != 0 {
					// counted as done; caller already has the (corrupt) data.
				} else if k == ufpstatus.DeviceIoError && flags&IgnoreIOError != 0 {
					// skip this page's content but keep going.
				} else {
					return done, err
				}
			} else {
				return done, err
			}
		}

		if cb != nil && cb.Post != nil {
			cb.Post(1)
		}

		done++
		withinBlock++
		if withinBlock == pagesPerBlock {
			block++
			withinBlock = 0
		}
	}
	return done, nil
}

// WritePages implements spec.md section 4.8's write_pages: a 3-retry
// torture-then-mark-bad budget per failed block. On write failure, run
// torture_block; torture failure marks the block bad and moves to the
// next block; torture success sets BBT state ERASED and retries (only
// when the offset within the block is zero - partial-block retries
// abort).
func (f *FTL) WritePages(part Partition, logicalPage uint32, count uint32, buf []byte, ignoreError bool, flags Flags) (uint32, error) {
	pagesPerBlock := uint32(1) << part.PagesPerBlockShift
	var done uint32

	block := part.BaseBlock + (logicalPage >> part.PagesPerBlockShift)
	withinBlock := logicalPage & (pagesPerBlock - 1)

	for done < count {
		good, err := f.isGoodBlock(block, flags)
		if err != nil {
			return done, err
		}
		if !good {
			block++
			withinBlock = 0
			continue
		}

		physPage := (block << part.PagesPerBlockShift) + withinBlock
		off := done * part.PageSize

		err = f.Nand.WritePage(physPage, 0, buf[off:off+part.PageSize])
		if err == nil {
			done++
			withinBlock++
			if withinBlock == pagesPerBlock {
				block++
				withinBlock = 0
			}
			continue
		}

		retries := retryBudget
		recovered := false
		movedOn := false
		for retries > 0 && withinBlock == 0 {
			retries--
			if tErr := f.Nand.TortureBlock(block, false); tErr != nil {
				f.Nand.MarkBad(block)
				if flags&DontCheckBad == 0 {
					f.BBT.SetState(block, bbt.Bad)
				}
				block++
				movedOn = true
				break
			}
			if flags&DontCheckBad == 0 {
				f.BBT.SetState(block, bbt.Erased)
			}
			if werr := f.Nand.WritePage(physPage, 0, buf[off:off+part.PageSize]); werr == nil {
				recovered = true
				break
			}
		}

		if recovered {
			done++
			withinBlock++
			if withinBlock == pagesPerBlock {
				block++
				withinBlock = 0
			}
			continue
		}

		if ignoreError && movedOn {
			continue
		}
		return done, err
	}
	return done, nil
}

// EraseBlocks implements spec.md section 4.8's erase_blocks: torture-then-
// mark-bad like WritePages, honouring a spread flag - false aborts on
// torture failure, true marks the bad block and skips it.
func (f *FTL) EraseBlocks(part Partition, logicalBlock uint32, count uint32, spread bool, flags Flags) (uint32, error) {
	var done uint32
	block := part.BaseBlock + logicalBlock

	for done < count {
		good, err := f.isGoodBlock(block, flags)
		if err != nil {
			return done, err
		}
		if !good {
			block++
			continue
		}

		if err := f.Nand.EraseBlock(block); err == nil {
			done++
			block++
			continue
		}

		if tErr := f.Nand.TortureBlock(block, false); tErr != nil {
			f.Nand.MarkBad(block)
			if flags&DontCheckBad == 0 {
				f.BBT.SetState(block, bbt.Bad)
			}
			if !spread {
				return done, tErr
			}
			block++
			continue
		}

		if flags&DontCheckBad == 0 {
			f.BBT.SetState(block, bbt.Erased)
		}
		done++
		block++
	}
	return done, nil
}
