package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProbeGigaDevice reproduces scenario S1: a GD5F1GQ4UAWxx reports
// {0xC8, 0x10} under the address-byte-0 framing (IDDummy is tried first and
// fails) and Probe resolves it to the GigaDevice vendor entry.
func TestProbeGigaDevice(t *testing.T) {
	cat := NewCatalog()

	dummyAttempts := 0
	read := func(framing IDType) ([]byte, error) {
		if framing == IDDummy {
			dummyAttempts++
			return nil, assert.AnError
		}
		return []byte{0xC8, 0x10}, nil
	}

	v, p, err := cat.Probe(read)
	require.NoError(t, err)
	assert.Equal(t, idRetries, dummyAttempts)
	assert.Equal(t, "gigadevice", v.ID)
	assert.Equal(t, "GD5F1GQ4UAWxx", p.Model)
}

// TestProbeMicronM78A reproduces scenario S3: Micron's MT29F2G01ABAGD
// reports {0x2C, 0x24}, resolved under IDAddr0 framing.
func TestProbeMicronM78A(t *testing.T) {
	cat := NewCatalog()

	read := func(framing IDType) ([]byte, error) {
		return []byte{0x2C, 0x24}, nil
	}

	v, p, err := cat.Probe(read)
	require.NoError(t, err)
	assert.Equal(t, "micron", v.ID)
	assert.Equal(t, "MT29F2G01ABAGD", p.Model)
	assert.EqualValues(t, 8, p.EccReq.StrengthPerStep)
}

// TestProbeRetriesThenFallsThroughFramings covers the retry-then-next-framing
// path: the dummy-byte framing fails idRetries times, then address-byte-0
// succeeds and resolves normally.
func TestProbeRetriesThenFallsThroughFramings(t *testing.T) {
	cat := NewCatalog()

	dummyAttempts := 0
	read := func(framing IDType) ([]byte, error) {
		if framing == IDDummy {
			dummyAttempts++
			return nil, assert.AnError
		}
		return []byte{0xC8, 0x10}, nil
	}

	v, p, err := cat.Probe(read)
	require.NoError(t, err)
	assert.Equal(t, idRetries, dummyAttempts)
	assert.Equal(t, "gigadevice", v.ID)
	assert.Equal(t, "GD5F1GQ4UAWxx", p.Model)
}

func TestProbeUnrecognisedID(t *testing.T) {
	cat := NewCatalog()
	read := func(framing IDType) ([]byte, error) {
		return []byte{0xFF, 0xFF}, nil
	}
	_, _, err := cat.Probe(read)
	assert.Error(t, err)
}

func TestFindByModel(t *testing.T) {
	cat := NewCatalog()
	v, p := cat.FindByModel("MX35LF1GE4AB")
	require.NotNil(t, p)
	assert.Equal(t, "macronix", v.ID)
}

func TestListPartsExcludesMeta(t *testing.T) {
	cat := NewCatalog()
	for _, e := range cat.ListParts() {
		assert.False(t, e.Part.IsMeta())
	}
}
