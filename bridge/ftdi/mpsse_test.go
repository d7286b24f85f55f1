package ftdi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackpascal/ufprog-core-go/bridge"
)

func TestBestDivider(t *testing.T) {
	// 60MHz / (2*(d+1)) closest to but not exceeding 10MHz: d+1=3, freq=10MHz exactly.
	div, freq, ok := bestDivider(60_000_000, 10_000_000)
	assert.True(t, ok)
	assert.Equal(t, uint16(2), div)
	assert.Equal(t, uint32(10_000_000), freq)

	// A target above base/2 clamps to d=0 (fastest possible).
	div, freq, ok = bestDivider(60_000_000, 100_000_000)
	assert.True(t, ok)
	assert.Equal(t, uint16(0), div)
	assert.Equal(t, uint32(30_000_000), freq)

	// A target far below reach (base/(2*65536)) fails.
	_, _, ok = bestDivider(12_000_000/5, 1)
	assert.False(t, ok)
}

// TestSetSpeedThreePhaseScaling reproduces scenario S5: three-phase clocking
// (SPI modes 1/2) scales the requested frequency by 3/2 before computing the
// divider, since each bit cell takes three half-clocks in that mode.
func TestSetSpeedThreePhaseScaling(t *testing.T) {
	tr := &fakeTransport{}
	b, err := NewMPSSEBridge(tr, MPSSEConfig{CSPin: DefaultCSPin, BusyLEDPin: -1, WPPin: -1, HoldPin: -1})
	assert.NoError(t, err)

	assert.NoError(t, b.SetMode(bridge.Mode1))
	assert.True(t, b.threePhase)

	got, err := b.SetSpeed(10_000_000)
	assert.NoError(t, err)
	// target = 15MHz once scaled; base60/(2*2)=15MHz exactly.
	assert.Equal(t, uint32(15_000_000), got)
}

func TestFT2232CUsesBase12Only(t *testing.T) {
	tr := &fakeTransport{}
	b, err := NewMPSSEBridge(tr, MPSSEConfig{CSPin: DefaultCSPin, BusyLEDPin: -1, WPPin: -1, HoldPin: -1, IsFT2232C: true})
	assert.NoError(t, err)

	_, err = b.SetSpeed(1_000_000)
	assert.NoError(t, err)
	// Last BulkWrite should carry the enable-div5 (0x8B) prescaler byte.
	assert.Equal(t, byte(mpsseEnableClkDiv5), tr.lastWrite[0])
}

func TestValidateGPIOAssignmentRejectsDuplicates(t *testing.T) {
	_, err := NewMPSSEBridge(&fakeTransport{}, MPSSEConfig{CSPin: 3, BusyLEDPin: 3, WPPin: -1, HoldPin: -1})
	assert.Error(t, err)
}

func TestSetCSEncodesPinBitmask(t *testing.T) {
	tr := &fakeTransport{}
	b, err := NewMPSSEBridge(tr, MPSSEConfig{CSPin: 3, BusyLEDPin: -1, WPPin: -1, HoldPin: -1})
	assert.NoError(t, err)

	assert.NoError(t, b.setCS(true))
	assert.Equal(t, uint16(1<<3), tr.lastCtrlIndex)
}
