package bbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

func TestGetStateLazyProbeUpgradesUnknown(t *testing.T) {
	calls := 0
	r := NewRAM(4, func(block uint32) (bool, error) {
		calls++
		return block == 2, nil
	})

	st, err := r.GetState(2)
	require.NoError(t, err)
	assert.Equal(t, Bad, st)
	assert.Equal(t, 1, calls)

	// Second query must not re-probe: cached state is returned directly.
	st, err = r.GetState(2)
	require.NoError(t, err)
	assert.Equal(t, Bad, st)
	assert.Equal(t, 1, calls)
}

func TestGetStateGoodBlockCached(t *testing.T) {
	r := NewRAM(4, func(block uint32) (bool, error) { return false, nil })
	st, err := r.GetState(0)
	require.NoError(t, err)
	assert.Equal(t, Good, st)
	assert.Equal(t, Good, r.get(0))
}

func TestGetStateNilCheckDefaultsGood(t *testing.T) {
	r := NewRAM(4, nil)
	st, err := r.GetState(3)
	require.NoError(t, err)
	assert.Equal(t, Good, st)
}

func TestGetStatePropagatesCheckError(t *testing.T) {
	r := NewRAM(4, func(block uint32) (bool, error) {
		return false, ufpstatus.New(ufpstatus.DeviceIoError, "boom")
	})
	_, err := r.GetState(0)
	assert.Error(t, err)
}

func TestSetStateThenGetStateSkipsProbe(t *testing.T) {
	calls := 0
	r := NewRAM(4, func(block uint32) (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, r.SetState(1, Erased))

	st, err := r.GetState(1)
	require.NoError(t, err)
	assert.Equal(t, Erased, st)
	assert.Equal(t, 0, calls)
}

func TestGetSetStateOutOfRange(t *testing.T) {
	r := NewRAM(4, nil)
	_, err := r.GetState(4)
	assert.Error(t, err)
	assert.Error(t, r.SetState(4, Good))
}

func TestReprobeWithoutFullScanClearsToUnknown(t *testing.T) {
	r := NewRAM(4, func(block uint32) (bool, error) { return false, nil })
	require.NoError(t, r.SetState(0, Bad))
	require.NoError(t, r.SetState(1, Good))

	require.NoError(t, r.Reprobe(false))

	assert.Equal(t, Unknown, r.get(0))
	assert.Equal(t, Unknown, r.get(1))
}

func TestReprobeFullScanReclassifiesEveryBlock(t *testing.T) {
	r := NewRAM(4, func(block uint32) (bool, error) { return block == 3, nil })
	require.NoError(t, r.SetState(3, Good)) // stale good state on an actually-bad block

	require.NoError(t, r.Reprobe(true))

	st, err := r.GetState(3)
	require.NoError(t, err)
	assert.Equal(t, Bad, st)

	st, err = r.GetState(0)
	require.NoError(t, err)
	assert.Equal(t, Good, st)
}

func TestIsGoodBlock(t *testing.T) {
	r := NewRAM(4, func(block uint32) (bool, error) { return block == 1, nil })

	good, err := r.IsGoodBlock(0)
	require.NoError(t, err)
	assert.True(t, good)

	good, err = r.IsGoodBlock(1)
	require.NoError(t, err)
	assert.False(t, good)

	require.NoError(t, r.SetState(2, Erased))
	good, err = r.IsGoodBlock(2)
	require.NoError(t, err)
	assert.True(t, good)
}
