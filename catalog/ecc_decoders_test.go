package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusOf(b byte) StatusReader {
	return func() (byte, error) { return b, nil }
}

func TestGenericBitDecoder(t *testing.T) {
	dec := GenericBitDecoder(1)

	st, err := dec(statusOf(0x00), 4)
	require.NoError(t, err)
	assert.Equal(t, EccOk, st.Result)

	st, err = dec(statusOf(0x10), 4)
	require.NoError(t, err)
	assert.Equal(t, EccCorrected, st.Result)
	assert.EqualValues(t, 1, st.StepBitflips[0])

	st, err = dec(statusOf(0x20), 4)
	require.NoError(t, err)
	assert.Equal(t, EccUncorrectable, st.Result)
	assert.EqualValues(t, -1, st.StepBitflips[0])
}

func TestMicronExtendedDecoder(t *testing.T) {
	cases := []struct {
		sr     byte
		result EccResult
		n      int32
	}{
		{0x00, EccOk, 0},
		{0x10, EccCorrected, 3},
		{0x30, EccCorrected, 6},
		{0x50, EccCorrected, 8},
		{0x20, EccUncorrectable, -1},
	}
	for _, c := range cases {
		st, err := MicronExtendedDecoder(statusOf(c.sr), 2)
		require.NoError(t, err)
		assert.Equal(t, c.result, st.Result)
		assert.EqualValues(t, c.n, st.StepBitflips[0])
	}
}

func TestMacronixDecoder(t *testing.T) {
	read := func(n byte) func() (byte, error) {
		return func() (byte, error) { return n, nil }
	}

	st, err := MacronixDecoder(read(0), 4, 2)
	require.NoError(t, err)
	assert.Equal(t, EccOk, st.Result)

	st, err = MacronixDecoder(read(3), 4, 2)
	require.NoError(t, err)
	assert.Equal(t, EccCorrected, st.Result)

	st, err = MacronixDecoder(read(5), 4, 2)
	require.NoError(t, err)
	assert.Equal(t, EccUncorrectable, st.Result)
}

func TestGigaDeviceSR3BitDecoder(t *testing.T) {
	dec := GigaDeviceSR3BitDecoder(4)

	st, err := dec(statusOf(0x00), 1)
	require.NoError(t, err)
	assert.Equal(t, EccOk, st.Result)

	st, err = dec(statusOf(0x10), 1) // bits=1
	require.NoError(t, err)
	assert.Equal(t, EccCorrected, st.Result)
	assert.EqualValues(t, 1, st.StepBitflips[0])

	st, err = dec(statusOf(0x70), 1) // bits==0x7 -> uncorrectable
	require.NoError(t, err)
	assert.Equal(t, EccUncorrectable, st.Result)
}

func TestGigaDeviceSR2Decoder(t *testing.T) {
	dec := GigaDeviceSR2Decoder(true) // base=4
	featureOf := func(f0 byte) FeatureReader {
		return func(addr byte) (byte, error) {
			assert.Equal(t, byte(0xF0), addr)
			return f0, nil
		}
	}

	st, err := dec(statusOf(0x00), featureOf(0x00), 1)
	require.NoError(t, err)
	assert.Equal(t, EccOk, st.Result)

	st, err = dec(statusOf(0x20), featureOf(0x00), 1) // sr==2 -> uncorrectable
	require.NoError(t, err)
	assert.Equal(t, EccUncorrectable, st.Result)

	st, err = dec(statusOf(0x30), featureOf(0x00), 1) // sr==3 -> "max bitflips"
	require.NoError(t, err)
	assert.Equal(t, EccCorrected, st.Result)
	assert.EqualValues(t, 8, st.StepBitflips[0]) // base*2 = 4*2
}

func TestWinbondDecoderNonExtendedDelegatesToGenericBitDecoder(t *testing.T) {
	dec := WinbondDecoder(false, 1)
	st, err := dec(statusOf(0x10), 1)
	require.NoError(t, err)
	assert.Equal(t, EccCorrected, st.Result)
}

func TestWinbondDecoderExtended(t *testing.T) {
	dec := WinbondDecoder(true, 4)

	st, err := dec(statusOf(0x00), 1)
	require.NoError(t, err)
	assert.Equal(t, EccOk, st.Result)

	st, err = dec(statusOf(0x50), 1) // bits=5 > strength 4
	require.NoError(t, err)
	assert.Equal(t, EccUncorrectable, st.Result)
}

func TestExtendedBfrDecoder(t *testing.T) {
	dec := ExtendedBfrDecoder([]byte{0xD0, 0xD1}, 4, 4)
	readF := func(addr byte) (byte, error) {
		switch addr {
		case 0xD0:
			return 0x21, nil // step0 nibble=1, step1 nibble=2
		case 0xD1:
			return 0x50, nil // step2 nibble=0, step3 nibble=5 (>strength)
		}
		return 0, nil
	}

	st, err := dec(readF, 4)
	require.NoError(t, err)
	assert.Equal(t, EccUncorrectable, st.Result)
	assert.EqualValues(t, 1, st.StepBitflips[0])
	assert.EqualValues(t, 2, st.StepBitflips[1])
	assert.EqualValues(t, 0, st.StepBitflips[2])
	assert.EqualValues(t, -1, st.StepBitflips[3])
}
