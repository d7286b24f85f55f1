package spinand

import (
	"bytes"

	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/internal/clock"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// enterOTP / leaveOTP toggle CONFIG's OTP_EN bit. Micron parts additionally
// set CR bits 0x82 per spec.md section 4.4's OTP operations note.
func (c *Chip) enterOTP() error {
	mask := byte(ConfigOTPEn)
	val := byte(ConfigOTPEn)
	if c.part.OtpType == catalog.OtpEnCrBit6 && c.part.MemOrg.NumChips > 0 && c.isMicronLike() {
		mask |= ConfigOTPLockMicron
		val |= ConfigOTPLockMicron
	}
	return c.setFeatureBits(FeatureConfig, val, mask)
}

func (c *Chip) leaveOTP() error {
	return c.setFeatureBits(FeatureConfig, 0, ConfigOTPEn)
}

// isMicronLike reports whether the bound part needs Micron's OTP-mode CR-bit
// quirk, ground truth
// _examples/original_source/flash/nand/spi-nand/vendor-micron.c's
// spi_nand_otp_control_micron (installed there as the part's otp_control
// override, catalog.PartOps.OtpControl's real-world counterpart): set
// FlagOTPMicronCrBit is the per-part flag the Micron catalog entries
// (catalog/vendor_builtin.go) carry so the quirk is reachable for bound
// Micron parts instead of a permanently-dead stub.
func (c *Chip) isMicronLike() bool {
	return c.part != nil && c.part.Flags&catalog.FlagOTPMicronCrBit != 0
}

// OTPRead implements spec.md section 4.4's otp_read: enter OTP mode,
// READ_TO_CACHE(start_index+index), poll, cache read, always leave OTP
// mode. The bus clock and the on-die ECC setting are left unchanged.
func (c *Chip) OTPRead(index, column uint32, data []byte) error {
	if c.part.OTP == nil {
		return ufpstatus.New(ufpstatus.Unsupported, "spinand.OTPRead: no OTP region")
	}
	if index >= c.part.OTP.Count {
		return ufpstatus.New(ufpstatus.FlashAddressOutOfRange, "spinand.OTPRead")
	}

	if err := c.enterOTP(); err != nil {
		return err
	}
	defer c.leaveOTP()

	page := c.part.OTP.StartIndex + index
	if err := c.bus.readToCache(page); err != nil {
		return err
	}
	if err := c.bus.pollOIP(clock.Background(), c.maxRTimeUS); err != nil {
		return err
	}

	op := ioop.Op{
		Cmd:   ioop.Phase{Width: ioop.Width1, Len: 1, Val: uint64(c.rdOpcode)},
		Addr:  ioop.Phase{Width: c.rdIOType.Info().AddrWidth(), Len: uint32(c.rdNAddr), Val: uint64(column)},
		Dummy: ioop.Phase{Width: c.rdIOType.Info().AddrWidth(), Len: uint32(c.rdNDummy)},
		Data:  ioop.Phase{Width: c.rdIOType.Info().DataWidth(), Len: uint32(len(data))},
		Dir:   ioop.DirIn,
	}
	return ioop.ExecSplit(c.bus.br, op, uint64(column), data)
}

// OTPWrite implements spec.md section 4.4's otp_write: enter OTP mode,
// WRITE_ENABLE, PROGRAM_LOAD, PROGRAM_EXECUTE, poll, WRITE_DISABLE, leave
// OTP mode. The bus clock is left unchanged.
func (c *Chip) OTPWrite(index, column uint32, data []byte) error {
	if c.part.OTP == nil {
		return ufpstatus.New(ufpstatus.Unsupported, "spinand.OTPWrite: no OTP region")
	}
	if index >= c.part.OTP.Count {
		return ufpstatus.New(ufpstatus.FlashAddressOutOfRange, "spinand.OTPWrite")
	}

	if err := c.enterOTP(); err != nil {
		return err
	}
	defer c.leaveOTP()

	if err := c.bus.writeEnable(); err != nil {
		return err
	}

	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: uint64(c.plOpcode)},
		Addr: ioop.Phase{Width: c.plIOType.Info().AddrWidth(), Len: 2, Val: uint64(column)},
		Data: ioop.Phase{Width: c.plIOType.Info().DataWidth(), Len: uint32(len(data))},
		Dir:  ioop.DirOut,
	}
	if err := ioop.ExecSplit(c.bus.br, op, uint64(column), data); err != nil {
		c.bus.writeDisable()
		return err
	}

	page := c.part.OTP.StartIndex + index
	if err := c.bus.programExecute(page); err != nil {
		c.bus.writeDisable()
		return err
	}
	if err := c.bus.pollOIP(clock.Background(), c.maxPPTimeUS); err != nil {
		c.bus.writeDisable()
		return err
	}
	sr, err := c.bus.lastStatus()
	if err != nil {
		c.bus.writeDisable()
		return err
	}
	if sr&StatusProgramFail != 0 {
		c.bus.writeDisable()
		return ufpstatus.New(ufpstatus.FlashProgramFailed, "spinand.OTPWrite")
	}
	return c.bus.writeDisable()
}

// OTPLock implements spec.md section 4.4's otp_lock: enter OTP mode, set
// OTP_LOCK in CONFIG, WRITE_ENABLE, PROGRAM_EXECUTE(page=0), poll, re-read
// CONFIG and verify the bit is set.
func (c *Chip) OTPLock() error {
	if err := c.enterOTP(); err != nil {
		return err
	}
	defer c.leaveOTP()

	if err := c.setFeatureBits(FeatureConfig, ConfigOTPLock, ConfigOTPLock); err != nil {
		return err
	}
	if err := c.bus.writeEnable(); err != nil {
		return err
	}
	if err := c.bus.programExecute(0); err != nil {
		c.bus.writeDisable()
		return err
	}
	if err := c.bus.pollOIP(clock.Background(), c.maxPPTimeUS); err != nil {
		c.bus.writeDisable()
		return err
	}
	c.bus.writeDisable()

	cfg, err := c.bus.getFeature(FeatureConfig)
	if err != nil {
		return err
	}
	if cfg&ConfigOTPLock == 0 {
		return ufpstatus.New(ufpstatus.FlashProgramFailed, "spinand.OTPLock: lock bit not set after program")
	}
	return nil
}

// OTPLocked implements spec.md section 4.4's otp_locked: re-read CONFIG
// with OTP mode disabled.
func (c *Chip) OTPLocked() (bool, error) {
	cfg, err := c.bus.getFeature(FeatureConfig)
	if err != nil {
		return false, err
	}
	return cfg&ConfigOTPLock != 0, nil
}

// ReadUID implements spec.md section 4.4's UID reading: for GENERIC_UID
// parts, the OTP region (page 0, or vendor override e.g. GigaDevice page 6)
// holds the 16-byte UID repeated with its complement 8 times; the first
// block whose XOR with the next equals all-0xFF is returned.
func (c *Chip) ReadUID() ([]byte, error) {
	if c.part.Ops != nil && c.part.Ops.ReadUID != nil {
		return c.part.Ops.ReadUID(c)
	}
	if c.part.Flags&catalog.FlagGenericUID == 0 {
		return nil, ufpstatus.New(ufpstatus.Unsupported, "spinand.ReadUID")
	}

	const uidLen = 16
	buf := make([]byte, uidLen*16)
	if err := c.OTPRead(0, 0, buf); err != nil {
		return nil, err
	}

	for i := 0; i+2*uidLen <= len(buf); i += uidLen {
		a := buf[i : i+uidLen]
		b := buf[i+uidLen : i+2*uidLen]
		if isComplement(a, b) {
			out := make([]byte, uidLen)
			copy(out, a)
			return out, nil
		}
	}
	return nil, ufpstatus.New(ufpstatus.DataVerificationFail, "spinand.ReadUID: no valid repeated+complemented block found")
}

func isComplement(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	xored := make([]byte, len(a))
	for i := range a {
		xored[i] = a[i] ^ b[i]
	}
	return bytes.Equal(xored, bytes.Repeat([]byte{0xFF}, len(a)))
}
