package ftl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpascal/ufprog-core-go/bbt"
	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/nand"
)

// fakeNandChip is an in-memory nand.Chip: one block is exactly one page
// (pageSize bytes), erase resets a block to all-0xFF, and writeFailBlock
// makes every non-marker (non-zero) write to that page fail, simulating a
// block that has gone bad.
type fakeNandChip struct {
	pageSize       uint32
	eraseFail      map[uint32]bool
	writeFailBlock uint32
	haveFailBlock  bool
	storage        map[uint32][]byte
}

func newFakeNandChip(pageSize uint32) *fakeNandChip {
	return &fakeNandChip{pageSize: pageSize, eraseFail: map[uint32]bool{}, storage: map[uint32][]byte{}}
}

func (c *fakeNandChip) blank() []byte {
	b := make([]byte, c.pageSize)
	for i := range b {
		b[i] = 0xFF
	}
	return b
}

func (c *fakeNandChip) ReadPage(page uint32, column uint32, buf []byte, enableECC bool) error {
	data, ok := c.storage[page]
	if !ok {
		data = c.blank()
	}
	copy(buf, data[column:])
	return nil
}

func allZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

func (c *fakeNandChip) WritePage(page uint32, column uint32, buf []byte) error {
	if c.haveFailBlock && page == c.writeFailBlock && !allZero(buf) {
		return ufpstatus.New(ufpstatus.FlashProgramFailed, "fakeNandChip: simulated bad block write")
	}
	data, ok := c.storage[page]
	if !ok {
		data = c.blank()
		c.storage[page] = data
	}
	copy(data[column:], buf)
	return nil
}

func (c *fakeNandChip) EraseBlock(block uint32) error {
	if c.eraseFail[block] {
		return ufpstatus.New(ufpstatus.FlashEraseFailed, "fakeNandChip: simulated erase failure")
	}
	c.storage[block] = c.blank()
	return nil
}

func (c *fakeNandChip) SelectDie(die uint32) error          { return nil }
func (c *fakeNandChip) ReadUID() ([]byte, error)            { return nil, nil }
func (c *fakeNandChip) OTPRead(i, col uint32, b []byte) error  { return nil }
func (c *fakeNandChip) OTPWrite(i, col uint32, b []byte) error { return nil }
func (c *fakeNandChip) OTPLock() error                         { return nil }
func (c *fakeNandChip) OTPLocked() (bool, error)               { return false, nil }

// newTestFTL builds a one-page-per-block FTL instance over blockCount
// blocks, with a whole-page bad-block marker (spec.md section 4.5's
// BbmMarkWholePage path).
func newTestFTL(t *testing.T, blockCount uint32) (*FTL, *fakeNandChip) {
	t.Helper()
	memOrg := catalog.MemoryOrg{
		PageSize: 16, OobSize: 1,
		PagesPerBlock: 1, BlocksPerLun: blockCount, LunsPerCS: 1, PlanesPerLun: 1, NumChips: 1,
	}
	require.NoError(t, memOrg.Bind())

	chip := newFakeNandChip(memOrg.PageSize)
	bbm := catalog.BbmConfig{
		Pages: []uint32{0},
		Check: []catalog.BbmCheck{{Offset: 0, Width: 8}},
		Flags: catalog.BbmMarkWholePage,
	}
	n := nand.New(chip, memOrg, nil, bbm)
	table := bbt.NewRAM(blockCount, n.CheckBad)

	return &FTL{Nand: n, BBT: table}, chip
}

// TestWritePagesSkipBadRetryThenMarkBad reproduces scenario S6: 2 logical
// pages over blocks N (good) and N+1 (bad). Block N+1's data write fails;
// torture (erase) also fails, so the block is marked bad and the retry
// counter's budget is abandoned for that block; the walk resumes at N+2.
func TestWritePagesSkipBadRetryThenMarkBad(t *testing.T) {
	const blockN, blockNPlus1, blockNPlus2 = 2, 3, 4

	t.Run("ignoreError=true recovers on the next good block", func(t *testing.T) {
		f, chip := newTestFTL(t, 8)
		chip.haveFailBlock = true
		chip.writeFailBlock = blockNPlus1
		chip.eraseFail[blockNPlus1] = true

		part := Partition{BaseBlock: blockN, PagesPerBlockShift: 0, PageSize: 16}
		buf := make([]byte, 16*2)
		for i := range buf {
			buf[i] = 0xAA
		}

		done, err := f.WritePages(part, 0, 2, buf, true, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, done)

		st, err := f.BBT.GetState(blockNPlus1)
		require.NoError(t, err)
		assert.Equal(t, bbt.Bad, st)

		// Second logical page landed on N+2, not N+1.
		assert.Equal(t, buf[16:32], chip.storage[blockNPlus2])
	})

	t.Run("ignoreError=false aborts after marking the block bad", func(t *testing.T) {
		f, chip := newTestFTL(t, 8)
		chip.haveFailBlock = true
		chip.writeFailBlock = blockNPlus1
		chip.eraseFail[blockNPlus1] = true

		part := Partition{BaseBlock: blockN, PagesPerBlockShift: 0, PageSize: 16}
		buf := make([]byte, 16*2)
		for i := range buf {
			buf[i] = 0xAA
		}

		done, err := f.WritePages(part, 0, 2, buf, false, 0)
		assert.Error(t, err)
		assert.EqualValues(t, 1, done)

		st, err := f.BBT.GetState(blockNPlus1)
		require.NoError(t, err)
		assert.Equal(t, bbt.Bad, st)
	})
}

func TestWritePagesAllGoodBlocks(t *testing.T) {
	f, chip := newTestFTL(t, 4)
	part := Partition{BaseBlock: 0, PagesPerBlockShift: 0, PageSize: 16}
	buf := make([]byte, 16*3)
	for i := range buf {
		buf[i] = 0x5A
	}

	done, err := f.WritePages(part, 0, 3, buf, false, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, done)
	assert.Equal(t, buf[0:16], chip.storage[0])
	assert.Equal(t, buf[16:32], chip.storage[1])
	assert.Equal(t, buf[32:48], chip.storage[2])
}

func TestReadPagesSkipsKnownBadBlock(t *testing.T) {
	f, _ := newTestFTL(t, 4)
	require.NoError(t, f.BBT.SetState(1, bbt.Bad))
	require.NoError(t, f.BBT.SetState(0, bbt.Good))
	require.NoError(t, f.BBT.SetState(2, bbt.Good))

	part := Partition{BaseBlock: 0, PagesPerBlockShift: 0, PageSize: 16}
	buf := make([]byte, 16*2)
	done, err := f.ReadPages(part, 0, 2, buf, 0, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, done)
}

func TestEraseBlocksSpreadSkipsBad(t *testing.T) {
	f, chip := newTestFTL(t, 4)
	chip.eraseFail[1] = true
	chip.haveFailBlock = false

	// 3 requested erases over 4 blocks with block 1 permanently bad: the
	// walk spreads onto block 3 to still deliver 3 good erases.
	done, err := f.EraseBlocks(Partition{BaseBlock: 0}, 0, 3, true, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, done)

	st, err := f.BBT.GetState(1)
	require.NoError(t, err)
	assert.Equal(t, bbt.Bad, st)
}

func TestEraseBlocksNoSpreadAborts(t *testing.T) {
	f, chip := newTestFTL(t, 4)
	chip.eraseFail[1] = true

	_, err := f.EraseBlocks(Partition{BaseBlock: 0}, 0, 3, false, 0)
	assert.Error(t, err)
}
