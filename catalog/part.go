package catalog

import "github.com/hackpascal/ufprog-core-go/ioop"

// IOCaps is a bitset of supported ioop.IOType values, one bit per type,
// used for a part's RdIOCaps/PlIOCaps (spec.md section 3 "Part").
type IOCaps uint32

// Has reports whether t is set in the bitset.
func (c IOCaps) Has(t ioop.IOType) bool {
	return c&(1<<uint(t)) != 0
}

// IOCapsOf builds an IOCaps bitset from a list of supported IO types.
func IOCapsOf(types ...ioop.IOType) IOCaps {
	var c IOCaps
	for _, t := range types {
		c |= 1 << uint(t)
	}
	return c
}

// QuadEnableType selects how a part's quad-enable bit is managed (spec.md
// section 3 "Part").
type QuadEnableType uint8

const (
	QeUnknown QuadEnableType = iota
	QeDontCare
	QeCrBit0
)

// EccEnableType selects how a part's on-die ECC is toggled.
type EccEnableType uint8

const (
	EccEnUnknown EccEnableType = iota
	EccEnUnsupported
	EccEnAlwaysOn
	EccEnCrBit4
)

// OtpEnableType selects how a part's OTP mode is entered.
type OtpEnableType uint8

const (
	OtpEnUnknown OtpEnableType = iota
	OtpEnUnsupported
	OtpEnCrBit6
)

// Flags are per-part capability/quirk bits (spec.md section 3 "Part").
type Flags uint32

const (
	FlagNoPP Flags = 1 << iota
	FlagGenericUID
	FlagExtendedEccBfr8b
	FlagReadCacheRandom
	FlagReadCacheSeq
	FlagNorReadCap
	FlagContinuousRead
	FlagBbm2ndPage
	FlagNoOp
	FlagRndPageWrite
	FlagOTPMicronCrBit
)

// OtpInfo describes a part's OTP region (spec.md section 3).
type OtpInfo struct {
	StartIndex uint32
	Count      uint32
}

// PartOps is the per-part hook vtable (spec.md section 3 "ops vtable").
// Any hook may be nil, meaning the vendor or generic default applies.
type PartOps struct {
	ChipSetup       func(ctx interface{}) error
	SelectDie       func(ctx interface{}, die uint32) error
	QuadEnable      func(ctx interface{}) error
	EccControl      func(ctx interface{}, enable bool) error
	OtpControl      func(ctx interface{}, enable bool) error
	CheckEcc        func(ctx interface{}) (EccStatus, error)
	ReadUID         func(ctx interface{}) ([]byte, error)
	NorReadEnable   func(ctx interface{}) error
	NorReadEnabled  func(ctx interface{}) (bool, error)
}

// EccResult is the outcome of a per-page ECC status check (spec.md section
// 4.4 "ECC status retrieval").
type EccResult uint8

const (
	EccOk EccResult = iota
	EccCorrected
	EccUncorrectable
)

// EccStatus carries the overall result plus per-step bitflip counts;
// -1 means uncorrectable for that step (spec.md section 9 "Numeric
// semantics").
type EccStatus struct {
	Result       EccResult
	StepBitflips []int32
}

// AliasItem names an alternate (vendor, model) identity for a part.
type AliasItem struct {
	Vendor string
	Model  string
}

// Part is an immutable per-model catalog record (spec.md section 3
// "Part").
type Part struct {
	Model string
	Alias []AliasItem

	ID    FlashId
	NOps  uint32
	Flags Flags

	QEType  QuadEnableType
	EccType EccEnableType
	OtpType OtpEnableType

	MaxSpeedSPIMHz  uint32
	MaxSpeedDualMHz uint32
	MaxSpeedQuadMHz uint32

	MemOrg  MemoryOrg
	EccReq  EccConfig

	RdIOCaps IOCaps
	RdOpcodes *OpcodeTable

	PlIOCaps IOCaps
	PlOpcodes *OpcodeTable

	PageLayout *PageLayout
	OTP        *OtpInfo

	Ops     *PartOps
	BBM     BbmConfig
}

// IsMeta reports whether this is a NO_OP meta-entry that must never bind.
func (p *Part) IsMeta() bool {
	return p.Flags&FlagNoOp != 0
}
