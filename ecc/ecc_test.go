package ecc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpascal/ufprog-core-go/catalog"
)

func TestNewOnDieChipDecodePageCachesStatus(t *testing.T) {
	want := catalog.EccStatus{Result: catalog.EccCorrected, StepBitflips: []int32{3}}
	calls := 0
	checkEcc := func() (catalog.EccStatus, error) {
		calls++
		return want, nil
	}
	enabled := true
	setEnable := func(e bool) error {
		enabled = e
		return nil
	}

	c := NewOnDieChip("on-die", catalog.EccConfig{StepSize: 512, StrengthPerStep: 1}, catalog.BbmConfig{}, nil, checkEcc, setEnable)
	assert.Equal(t, TypeOnDie, c.Type)

	got, err := c.Ops.DecodePage(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)

	// GetStatus returns the cached value without re-invoking checkEcc.
	cached, err := c.Ops.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, want, cached)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Ops.SetEnable(false))
	assert.False(t, enabled)
}

func TestNewOnDieChipEncodeAndConvertAreNoops(t *testing.T) {
	c := NewOnDieChip("on-die", catalog.EccConfig{}, catalog.BbmConfig{}, nil,
		func() (catalog.EccStatus, error) { return catalog.EccStatus{}, nil },
		func(bool) error { return nil })

	buf := []byte{1, 2, 3}
	orig := append([]byte(nil), buf...)
	require.NoError(t, c.Ops.EncodePage(buf, buf))
	assert.Equal(t, orig, buf)
	require.NoError(t, c.Ops.ConvertPageLayout(buf, true))
	assert.Equal(t, orig, buf)
}

func TestNewOnDieChipDecodePagePropagatesError(t *testing.T) {
	boom := assert.AnError
	c := NewOnDieChip("on-die", catalog.EccConfig{}, catalog.BbmConfig{}, nil,
		func() (catalog.EccStatus, error) { return catalog.EccStatus{}, boom },
		func(bool) error { return nil })

	_, err := c.Ops.DecodePage(nil, nil)
	assert.ErrorIs(t, err, boom)
}
