package ftdi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpascal/ufprog-core-go/ioop"
)

func openedFT4222(t *testing.T) (*FT4222Bridge, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	b := NewFT4222Bridge(tr)
	require.NoError(t, b.Open())
	return b, tr
}

// TestExecMultiIOFraming reproduces scenario S4's op shape (spec.md:245): a
// 1-4-4 fast read of 256 bytes, command byte 0xEB, 2-byte address 0x0040,
// 2 dummy bytes. cmd/addr/dummy are classified independently by their own
// Phase.Width, matching
// _examples/original_source/controller/ftdi/ft4222h-spi.c's
// ufprog_spi_mem_exec_op: the single-lane command byte counts toward
// sio_wr_len even though the address and dummy phases are quad-lane and
// count toward mio_wr_len.
func TestExecMultiIOFraming(t *testing.T) {
	b, tr := openedFT4222(t)

	tr.readQueue = [][]byte{make([]byte, 256)}

	op := ioop.Op{
		Cmd:   ioop.Phase{Width: ioop.Width1, Len: 1, Val: 0xEB},
		Addr:  ioop.Phase{Width: ioop.Width4, Len: 2, Val: 0x0040},
		Dummy: ioop.Phase{Width: ioop.Width4, Len: 2},
		Data:  ioop.Phase{Width: ioop.Width4, Len: 256},
		Dir:   ioop.DirIn,
		Buf:   make([]byte, 256),
	}

	require.NoError(t, b.Exec(&op))

	frame := tr.lastWrite
	require.GreaterOrEqual(t, len(frame), 5)
	assert.Equal(t, byte(0x81), frame[0])                              // bit7 set, sio_wr_len=1 (cmd byte)
	assert.Equal(t, uint16(4), uint16(frame[1])<<8|uint16(frame[2]))   // mio_wr_len: addr(2)+dummy(2)
	assert.Equal(t, uint16(256), uint16(frame[3])<<8|uint16(frame[4])) // mio_rd_len
}

// TestExecMultiIOFramingAllPhasesMultiLane covers a 4-4-4 op where cmd is
// also quad-lane, so every non-data byte now counts toward mio_wr_len and
// sio_wr_len is 0 — the complement of TestExecMultiIOFraming, confirming
// each phase is classified on its own width rather than the whole blob
// being gated by the address phase alone.
func TestExecMultiIOFramingAllPhasesMultiLane(t *testing.T) {
	b, tr := openedFT4222(t)

	tr.readQueue = [][]byte{make([]byte, 4)}

	op := ioop.Op{
		Cmd:   ioop.Phase{Width: ioop.Width4, Len: 1, Val: 0x0B},
		Addr:  ioop.Phase{Width: ioop.Width4, Len: 2, Val: 0x0040},
		Dummy: ioop.Phase{Width: ioop.Width4, Len: 2},
		Data:  ioop.Phase{Width: ioop.Width4, Len: 4},
		Dir:   ioop.DirIn,
		Buf:   make([]byte, 4),
	}

	require.NoError(t, b.Exec(&op))

	frame := tr.lastWrite
	require.GreaterOrEqual(t, len(frame), 5)
	assert.Equal(t, byte(0x80), frame[0])                            // sio_wr_len=0: cmd is also quad-lane
	assert.Equal(t, uint16(5), uint16(frame[1])<<8|uint16(frame[2])) // mio_wr_len: cmd(1)+addr(2)+dummy(2)
	assert.Equal(t, uint16(4), uint16(frame[3])<<8|uint16(frame[4])) // mio_rd_len
}

func TestAdjustOpSizeSingleIOEnvelope(t *testing.T) {
	b, _ := openedFT4222(t)
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 3},
		Data: ioop.Phase{Width: ioop.Width1, Len: 0x20000},
	}
	n := b.AdjustOpSize(&op)
	assert.Equal(t, uint32(singleIOMaxLen-4), n)
}

func TestDriveStrengthMAQuantises(t *testing.T) {
	assert.Equal(t, uint8(4), DriveStrengthMA(0))
	assert.Equal(t, uint8(8), DriveStrengthMA(8))
	assert.Equal(t, uint8(12), DriveStrengthMA(12))
	assert.Equal(t, uint8(16), DriveStrengthMA(20))
}
