package spinand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpascal/ufprog-core-go/bridge"
	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// rankIndex returns t's position in RankedIOTypes (0 = highest bandwidth).
func rankIndex(t ioop.IOType) int {
	for i, r := range ioop.RankedIOTypes() {
		if r == t {
			return i
		}
	}
	return -1
}

// ioTypeOfOp recovers the IOType an ioop.SimpleOp-built op was constructed
// with, by matching its packed phase widths/DTR flag back against every
// known IOType's Info().
func ioTypeOfOp(op *ioop.Op) (ioop.IOType, bool) {
	for _, t := range ioop.RankedIOTypes() {
		info := t.Info()
		if info.CmdWidth() != op.Cmd.Width || info.DataWidth() != op.Data.Width {
			continue
		}
		if info.DTR() != op.Cmd.DTR {
			continue
		}
		if op.Addr.Len > 0 && info.AddrWidth() != op.Addr.Width {
			continue
		}
		return t, true
	}
	return 0, false
}

// fakeBridge implements bridge.Bridge, reporting support for every IO type
// ranked at or above maxSupported's bandwidth, so pickIOType's fall-through
// order can be exercised deterministically.
type fakeBridge struct {
	maxSupported ioop.IOType
	caps         bridge.Capability
}

func (b *fakeBridge) Exec(op *ioop.Op) error { return nil }

func (b *fakeBridge) Supports(op *ioop.Op) bool {
	t, ok := ioTypeOfOp(op)
	if !ok {
		return false
	}
	return rankIndex(t) >= rankIndex(b.maxSupported)
}

func (b *fakeBridge) AdjustOpSize(op *ioop.Op) uint32 { return op.Data.Len }

func (b *fakeBridge) Open() error  { return nil }
func (b *fakeBridge) Close() error { return nil }

func (b *fakeBridge) SetCSPolarity(activeHigh bool) error { return nil }
func (b *fakeBridge) SetMode(mode bridge.SPIMode) error   { return nil }
func (b *fakeBridge) SetSpeed(hz uint32) (uint32, error)  { return hz, nil }

func (b *fakeBridge) MaxReadGranularity() uint32 { return 1 << 16 }
func (b *fakeBridge) IfCaps() bridge.Capability  { return b.caps }

func (b *fakeBridge) Lock()   {}
func (b *fakeBridge) Unlock() {}

func TestPickIOTypePrefersHighestBandwidthSupported(t *testing.T) {
	br := &fakeBridge{maxSupported: ioop.IO_1_2_2}
	c := &Chip{bus: bus{br: br}, caps: br.IfCaps()}

	table := catalog.DefaultRdOpcodes4D
	typ, op, err := c.pickIOType(catalog.IOCapsOf(ioop.IO_1_1_1, ioop.IO_1_1_2, ioop.IO_1_2_2, ioop.IO_1_1_4, ioop.IO_1_4_4), &table, ioop.DirIn)
	require.NoError(t, err)
	assert.Equal(t, ioop.IO_1_2_2, typ)
	assert.Equal(t, byte(0xBB), op.Opcode)
}

func TestPickIOTypeFallsBackWhenBridgeLacksBandwidth(t *testing.T) {
	br := &fakeBridge{maxSupported: ioop.IO_1_1_1}
	c := &Chip{bus: bus{br: br}, caps: br.IfCaps()}

	table := catalog.DefaultRdOpcodes4D
	typ, op, err := c.pickIOType(catalog.IOCapsOf(ioop.IO_1_1_1, ioop.IO_1_1_4, ioop.IO_1_4_4), &table, ioop.DirIn)
	require.NoError(t, err)
	assert.Equal(t, ioop.IO_1_1_1, typ)
	assert.Equal(t, byte(0x03), op.Opcode)
}

func TestPickIOTypeNilTableIsUnsupported(t *testing.T) {
	br := &fakeBridge{maxSupported: ioop.IO_1_4_4}
	c := &Chip{bus: bus{br: br}, caps: br.IfCaps()}

	_, _, err := c.pickIOType(catalog.IOCapsOf(ioop.IO_1_1_1), nil, ioop.DirIn)
	assert.Error(t, err)
}

func TestPickIOTypeNoQPIBulkReadSkipsQuadQuad(t *testing.T) {
	br := &fakeBridge{maxSupported: ioop.IO_4_4_4, caps: bridge.NoQPIBulkRead}
	c := &Chip{bus: bus{br: br}, caps: br.IfCaps()}

	table := catalog.OpcodeTable{}
	table[ioop.IO_1_1_4] = catalog.IoOpcode{Opcode: 0x6B, NAddrs: 2, NDummy: 1}
	table[ioop.IO_4_4_4] = catalog.IoOpcode{Opcode: 0x0B, NAddrs: 2, NDummy: 2}

	typ, _, err := c.pickIOType(catalog.IOCapsOf(ioop.IO_1_1_4, ioop.IO_4_4_4), &table, ioop.DirIn)
	require.NoError(t, err)
	assert.NotEqual(t, ioop.IO_4_4_4, typ)
}

func TestChooseOpcodesSetsReadAndProgramLoadFraming(t *testing.T) {
	br := &fakeBridge{maxSupported: ioop.IO_1_4_4}
	rd := catalog.DefaultRdOpcodes4D
	pl := catalog.DefaultPlOpcodes
	part := &catalog.Part{
		RdIOCaps:  catalog.IOCapsOf(ioop.IO_1_1_1, ioop.IO_1_1_2, ioop.IO_1_2_2, ioop.IO_1_1_4, ioop.IO_1_4_4),
		RdOpcodes: &rd,
		PlIOCaps:  catalog.IOCapsOf(ioop.IO_1_1_1, ioop.IO_1_1_4),
		PlOpcodes: &pl,
	}
	c := &Chip{bus: bus{br: br}, caps: br.IfCaps(), part: part}

	require.NoError(t, c.chooseOpcodes())
	assert.Equal(t, ioop.IO_1_4_4, c.rdIOType)
	assert.Equal(t, byte(0xEB), c.rdOpcode)
	assert.Equal(t, ioop.IO_1_1_4, c.plIOType)
	assert.Equal(t, byte(0x32), c.plOpcode)
}
