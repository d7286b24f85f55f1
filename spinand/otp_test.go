package spinand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// recordingBridge wraps fakeBridge, remembering the value byte of the last
// SET_FEATURE it executed so enterOTP's written CONFIG bits can be asserted.
type recordingBridge struct {
	fakeBridge
	lastSetFeatureVal byte
}

func (b *recordingBridge) Exec(op *ioop.Op) error {
	if op.Cmd.Val == uint64(OpSetFeature) && op.Dir == ioop.DirOut && len(op.Buf) == 1 {
		b.lastSetFeatureVal = op.Buf[0]
	}
	return nil
}

// TestIsMicronLikeReachableForFlaggedPart reproduces scenario S3 (spec.md
// section 4.4, Micron MT29F2G01ABAGD): isMicronLike must be true for a
// bound part carrying catalog.FlagOTPMicronCrBit, the flag
// catalog/vendor_builtin.go's Micron entries set, not a permanently-dead
// stub.
func TestIsMicronLikeReachableForFlaggedPart(t *testing.T) {
	c := &Chip{part: &catalog.Part{Flags: catalog.FlagOTPMicronCrBit}}
	assert.True(t, c.isMicronLike())
}

func TestIsMicronLikeFalseForOtherVendors(t *testing.T) {
	c := &Chip{part: &catalog.Part{}}
	assert.False(t, c.isMicronLike())
}

func TestIsMicronLikeFalseBeforeAttach(t *testing.T) {
	c := &Chip{}
	assert.False(t, c.isMicronLike())
}

// TestEnterOTPSetsMicronCrBitOnlyWhenFlagged checks enterOTP's combined
// gate: OtpType must be CR-bit-6 style AND the part must carry the Micron
// quirk flag before ConfigOTPLockMicron (0x82) is ORed into the written
// CONFIG value (spec.md section 4.4's documented Micron OTP-lock quirk,
// scenario S3).
func TestEnterOTPSetsMicronCrBitOnlyWhenFlagged(t *testing.T) {
	rb := &recordingBridge{}
	c := New(rb)
	c.part = &catalog.Part{
		OtpType: catalog.OtpEnCrBit6,
		MemOrg:  catalog.MemoryOrg{NumChips: 1},
		Flags:   catalog.FlagOTPMicronCrBit,
	}

	require.NoError(t, c.enterOTP())
	assert.Equal(t, byte(ConfigOTPEn|ConfigOTPLockMicron), rb.lastSetFeatureVal)
}

// TestEnterOTPOmitsMicronCrBitForOtherVendors covers a non-Micron CR-bit-6
// part, where enterOTP must only set ConfigOTPEn.
func TestEnterOTPOmitsMicronCrBitForOtherVendors(t *testing.T) {
	rb := &recordingBridge{}
	c := New(rb)
	c.part = &catalog.Part{
		OtpType: catalog.OtpEnCrBit6,
		MemOrg:  catalog.MemoryOrg{NumChips: 1},
	}

	require.NoError(t, c.enterOTP())
	assert.Equal(t, byte(ConfigOTPEn), rb.lastSetFeatureVal)
}
