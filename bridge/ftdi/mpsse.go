package ftdi

import (
	"github.com/hackpascal/ufprog-core-go/bridge"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// MPSSE opcodes used to frame a SPI byte transfer (spec.md section 4.2).
const (
	mpsseDoRead  = 0x20
	mpsseDoWrite = 0x10
	mpsseReadNeg = 0x04
	mpsseWriteNeg = 0x01
)

// Default GPIO pin assignments; all four must be distinct per spec.md.
const (
	DefaultCSPin      = 3
	DefaultBusyLEDPin = -1 // disabled unless configured
	DefaultWPPin      = -1
	DefaultHoldPin    = -1
)

// MPSSEConfig describes the GPIO wiring for an MPSSE bridge instance.
type MPSSEConfig struct {
	CSPin      int
	BusyLEDPin int // -1 if unused
	WPPin      int
	HoldPin    int
	IsFT2232C  bool // no 60MHz base clock option
}

// MPSSEBridge implements bridge.Bridge for FT232H/FT2232H/FT4232H devices in
// MPSSE mode, driving chip-select as a GPIO rather than a dedicated CS pin.
type MPSSEBridge struct {
	t    Transport
	cfg  MPSSEConfig
	mode bridge.SPIMode

	clockHz    uint32
	threePhase bool
	csHigh     bool

	scratch []byte
}

// NewMPSSEBridge constructs a driver bound to an MPSSE-capable transport.
func NewMPSSEBridge(t Transport, cfg MPSSEConfig) (*MPSSEBridge, error) {
	if err := validateGPIOAssignment(cfg); err != nil {
		return nil, err
	}
	return &MPSSEBridge{
		t:       t,
		cfg:     cfg,
		scratch: make([]byte, dataShiftingCmdLen+dataShiftingMaxLen),
	}, nil
}

const (
	dataShiftingCmdLen = 3
	dataShiftingMaxLen = 0x10000
)

func validateGPIOAssignment(cfg MPSSEConfig) error {
	pins := map[int]bool{cfg.CSPin: true}
	for _, p := range []int{cfg.BusyLEDPin, cfg.WPPin, cfg.HoldPin} {
		if p < 0 {
			continue
		}
		if pins[p] {
			return ufpstatus.New(ufpstatus.InvalidParameter, "mpsse: GPIO pins must be distinct")
		}
		pins[p] = true
	}
	return nil
}

// Open sets an initial 6MHz clock and selects SPI mode 0. It does not reset
// the device, set the latency timer, change the bitmode, disable loopback
// or adaptive clocking, tri-state the GPIOs, or purge buffers.
func (b *MPSSEBridge) Open() error {
	if _, err := b.SetSpeed(6_000_000); err != nil {
		return err
	}
	b.mode = bridge.Mode0
	return nil
}

func (b *MPSSEBridge) Close() error {
	return b.t.Close()
}

func (b *MPSSEBridge) SetCSPolarity(activeHigh bool) error {
	b.csHigh = activeHigh
	return nil
}

func (b *MPSSEBridge) SetMode(mode bridge.SPIMode) error {
	b.mode = mode
	b.threePhase = mode == bridge.Mode1 || mode == bridge.Mode2
	return nil
}

// SetSpeed computes the MPSSE clock divider, choosing between the base-60MHz
// and base-12MHz (with /5 TCK prescaler) candidate dividers, whichever gives
// a frequency closest to (but not above) hz. FT2232C lacks the 60MHz PLL
// option and always uses the base-12MHz candidate. In three-phase clocking
// mode the requested hz is scaled by 3/2 before the divider is computed
// (spec.md section 4.2, scenario S5).
func (b *MPSSEBridge) SetSpeed(hz uint32) (uint32, error) {
	target := hz
	if b.threePhase {
		target = hz * 3 / 2
	}

	div60, freq60, ok60 := bestDivider(60_000_000, target)
	div12, freq12, ok12 := bestDivider(12_000_000/5, target)

	var chosenFreq uint32
	var chosenDiv uint16
	useBase60 := false

	switch {
	case b.cfg.IsFT2232C:
		if !ok12 {
			return 0, ufpstatus.New(ufpstatus.InvalidParameter, "mpsse.SetSpeed: frequency too low")
		}
		chosenFreq, chosenDiv = freq12, div12
	case ok60 && (!ok12 || freq60 >= freq12):
		chosenFreq, chosenDiv, useBase60 = freq60, div60, true
	case ok12:
		chosenFreq, chosenDiv = freq12, div12
	default:
		return 0, ufpstatus.New(ufpstatus.InvalidParameter, "mpsse.SetSpeed: frequency too low")
	}

	if err := b.writeClockSetup(useBase60, chosenDiv); err != nil {
		return 0, err
	}

	b.clockHz = chosenFreq
	return chosenFreq, nil
}

// writeClockSetup issues the MPSSE commands selecting the 60MHz-vs-12MHz
// base clock (enable/disable the /5 prescaler, opcodes 0x8A/0x8B) and the
// TCK divisor (opcode 0x86), per spec.md section 4.2's clock setup.
func (b *MPSSEBridge) writeClockSetup(useBase60 bool, div uint16) error {
	prescaler := byte(mpsseEnableClkDiv5)
	if useBase60 {
		prescaler = mpsseDisableClkDiv5
	}
	cmd := []byte{prescaler, mpsseSetTCKDivisor, byte(div), byte(div >> 8)}
	_, err := b.t.BulkWrite(cmd)
	return err
}

const (
	mpsseDisableClkDiv5 = 0x8A
	mpsseEnableClkDiv5  = 0x8B
	mpsseSetTCKDivisor  = 0x86
)

// bestDivider finds the divider d in [0, 65535] such that base/(2*(d+1)) is
// the largest frequency not exceeding target, returning ok=false if even
// d=65535 still exceeds target (frequency too low to reach) or base is
// already below target's reach with d=0 exceeding int range.
func bestDivider(base, target uint32) (div uint16, freq uint32, ok bool) {
	if target == 0 {
		return 0, 0, false
	}
	// d+1 = ceil(base / (2*target)), minimal d+1 satisfying freq <= target.
	denom := 2 * uint64(target)
	num := uint64(base)
	dPlus1 := (num + denom - 1) / denom
	if dPlus1 == 0 {
		dPlus1 = 1
	}
	if dPlus1 > 65536 {
		return 0, 0, false
	}
	d := dPlus1 - 1
	f := base / uint32(2*dPlus1)
	return uint16(d), f, true
}

func (b *MPSSEBridge) MaxReadGranularity() uint32 {
	return dataShiftingMaxLen
}

func (b *MPSSEBridge) IfCaps() bridge.Capability {
	return 0 // SPI only, single data line
}

func (b *MPSSEBridge) Lock()   {}
func (b *MPSSEBridge) Unlock() {}

func (b *MPSSEBridge) Supports(op *ioop.Op) bool {
	return op.Cmd.Width <= ioop.Width1 && op.Addr.Width <= ioop.Width1 && op.Data.Width <= ioop.Width1
}

func (b *MPSSEBridge) AdjustOpSize(op *ioop.Op) uint32 {
	overhead := uint32(1 + op.Addr.Len + op.Dummy.Len)
	max := dataShiftingMaxLen
	if overhead < uint32(max) {
		max -= int(overhead)
	} else {
		max = 0
	}
	if op.Data.Len > uint32(max) {
		return uint32(max)
	}
	return op.Data.Len
}

// Exec frames a SPI transaction by asserting CS (GPIO), clocking the
// command/address/dummy/data bytes with DO_READ/DO_WRITE/READ_NEG/WRITE_NEG
// per the active SPI mode, then deasserting CS. No extra clock toggle is
// issued between CS-assert and the first data byte, in any SPI mode.
func (b *MPSSEBridge) Exec(op *ioop.Op) error {
	if !b.Supports(op) {
		return ufpstatus.New(ufpstatus.Unsupported, "mpsse.Exec")
	}

	if err := b.setCS(true); err != nil {
		return err
	}
	defer b.setCS(false)

	writeFall := b.mode == bridge.Mode0 || b.mode == bridge.Mode3
	readFall := b.mode == bridge.Mode1 || b.mode == bridge.Mode2

	out := nonDataBytes(op)
	if op.Dir == ioop.DirOut {
		out = append(out, op.Buf...)
	} else {
		for i := uint32(0); i < op.Data.Len; i++ {
			out = append(out, 0)
		}
	}

	frame := mpsseFrame(out, op.Dir == ioop.DirIn, writeFall, readFall)
	if _, err := b.t.BulkWrite(frame); err != nil {
		return ufpstatus.Wrap(ufpstatus.DeviceIoError, "mpsse.Exec", err)
	}

	if op.Dir == ioop.DirIn {
		readback := make([]byte, len(out))
		if _, err := b.t.BulkRead(readback); err != nil {
			return ufpstatus.Wrap(ufpstatus.DeviceIoError, "mpsse.Exec", err)
		}
		n := len(out) - int(op.Data.Len)
		copy(op.Buf, readback[n:])
	}
	return nil
}

// setCS drives the CS GPIO to its active level when asserted, or idle
// otherwise, encoding the pin bitmask in the control request's value field.
func (b *MPSSEBridge) setCS(asserted bool) error {
	driveHigh := asserted == b.csHigh
	var value uint16
	if driveHigh {
		value = 1 << uint(b.cfg.CSPin)
	}
	_, err := b.t.ControlTransfer(0x40, gpioSetOp, value, 1<<uint(b.cfg.CSPin), nil)
	return err
}

const gpioSetOp = 0x80

// mpsseFrame builds the <op><lenL-1><lenH-1><bytes...> command for a
// byte-granular MPSSE data-shift transaction.
func mpsseFrame(data []byte, read, writeFall, readFall bool) []byte {
	op := byte(0)
	if len(data) > 0 {
		op |= mpsseDoWrite
		if writeFall {
			op |= mpsseWriteNeg
		}
	}
	if read {
		op |= mpsseDoRead
		if readFall {
			op |= mpsseReadNeg
		}
	}
	l := len(data) - 1
	frame := []byte{op, byte(l), byte(l >> 8)}
	return append(frame, data...)
}
