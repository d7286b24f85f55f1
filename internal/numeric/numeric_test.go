package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(2))
	assert.True(t, IsPowerOfTwo(2048))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(3))
	assert.False(t, IsPowerOfTwo(2049))
}

func TestLog2(t *testing.T) {
	assert.EqualValues(t, 0, Log2(1))
	assert.EqualValues(t, 11, Log2(2048))
	assert.EqualValues(t, 16, Log2(65536))
}

func TestMask(t *testing.T) {
	assert.EqualValues(t, 2047, Mask(2048))
	assert.EqualValues(t, 0, Mask(1))
}

func TestCeilDiv(t *testing.T) {
	assert.EqualValues(t, 4, CeilDiv(2048, 512))
	assert.EqualValues(t, 5, CeilDiv(2049, 512))
	assert.EqualValues(t, 0, CeilDiv(10, 0))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "2 KB", FormatBytes(2000))
	assert.Equal(t, "1 MB", FormatBytes(1_000_000))
}
