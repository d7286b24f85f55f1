package spinand

import (
	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/internal/clock"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// ReadPagesSequential implements spec.md section 4.4's "Sequential
// multi-page read": first page loads via READ_TO_CACHE, each subsequent
// page issues READ_FROM_CACHE_SEQ (or RANDOM, same framing with page+1
// addressing) and polls CRBSY of the vendor feature address while reading
// the current page. The final page uses READ_FROM_CACHE_END. Any failure
// resets and re-initialises the die to drop pipeline state.
func (c *Chip) ReadPagesSequential(startPage uint32, count uint32, pageSize uint32, buf []byte, random bool) error {
	if c.part.Flags&(catalog.FlagReadCacheSeq|catalog.FlagReadCacheRandom) == 0 {
		for i := uint32(0); i < count; i++ {
			off := i * pageSize
			if err := c.ReadPage(startPage+i, 0, buf[off:off+pageSize], c.eccEnabled); err != nil {
				return err
			}
		}
		return nil
	}

	die, firstWithinDie := c.part.MemOrg.SelectDiePage(startPage)
	if die != c.curDie {
		if err := c.bus.selectDie(die); err != nil {
			return err
		}
		c.curDie = die
	}

	fail := func(err error) error {
		c.ChipResetSetup(clock.Background())
		return err
	}

	if err := c.bus.readToCache(c.planeAddress(firstWithinDie)); err != nil {
		return fail(err)
	}
	if err := c.bus.pollOIP(clock.Background(), c.maxRTimeUS); err != nil {
		return fail(err)
	}

	for i := uint32(0); i < count; i++ {
		off := i * pageSize
		page := buf[off : off+pageSize]

		op := ioop.Op{
			Cmd:   ioop.Phase{Width: ioop.Width1, Len: 1, Val: uint64(c.rdOpcode)},
			Addr:  ioop.Phase{Width: c.rdIOType.Info().AddrWidth(), Len: uint32(c.rdNAddr)},
			Dummy: ioop.Phase{Width: c.rdIOType.Info().AddrWidth(), Len: uint32(c.rdNDummy)},
			Data:  ioop.Phase{Width: c.rdIOType.Info().DataWidth(), Len: uint32(len(page))},
			Dir:   ioop.DirIn,
		}
		if err := ioop.ExecSplit(c.bus.br, op, 0, page); err != nil {
			return fail(err)
		}

		if i+1 < count {
			nextWithinDie := firstWithinDie + i + 1
			if err := c.bus.readFromCacheSeq(c.planeAddress(nextWithinDie)); err != nil {
				return fail(err)
			}
			if err := c.pollCRBSY(); err != nil {
				return fail(err)
			}
		} else {
			if err := c.bus.readFromCacheEnd(); err != nil {
				return fail(err)
			}
		}
	}
	return nil
}

func (c *Chip) pollCRBSY() error {
	addr := c.seqRdFeatureAddr
	if addr == 0 {
		addr = FeatureStatus
	}
	mask := c.seqRdCrbsyMask
	if mask == 0 {
		mask = StatusOIP
	}
	return clock.Poll(clock.Background(), durationFromUS(c.maxRTimeUS), "spinand.pollCRBSY", func() (bool, error) {
		sr, err := c.bus.getFeature(addr)
		if err != nil {
			return false, err
		}
		return sr&mask == 0, nil
	})
}
