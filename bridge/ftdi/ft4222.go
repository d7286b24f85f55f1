package ftdi

import (
	"encoding/binary"

	"github.com/hackpascal/ufprog-core-go/bridge"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// FT4222H framing limits (spec.md section 4.2 "FT4222H").
const (
	singleIOMaxLen    = 0xFFFF
	multiIOSioWrMax   = 0xF
	multiIOMioWrMax   = 0xFFFF
	multiIOMioRdMax   = 0xFFFF
	multiIOCmdLen     = 5 // framing prefix length
	ft4222LatencyMS   = 2
	ft4222SysClockHz  = 24_000_000
	ft4222WantedChipA = 0x42
	ft4222WantedChipB = 0x22
)

// chipModeMaxCS maps the FT4222H chip-mode field (0..3) to its maximum chip
// select count: {1, 3, 4, 1} per spec.md section 4.2.
var chipModeMaxCS = [4]int{0: 1, 1: 3, 2: 4, 3: 1}

// maxBuckSizeTable is the set of legal max_buck_size values, selected from
// device hardware-caps field flags at open time.
var maxBuckSizeTable = [3]int{64, 256, 512}

// DriveStrengthMA quantises a JSON numeric drive-strength request (mA) into
// one of the four supported settings, per spec.md section 4.2's thresholds.
func DriveStrengthMA(requested int) uint8 {
	switch {
	case requested < 8:
		return 4
	case requested < 12:
		return 8
	case requested < 16:
		return 12
	default:
		return 16
	}
}

// FT4222Config is the vendor hardware-caps snapshot read at open time.
type FT4222Config struct {
	FirmwareVersion uint32
	ChipMode        uint8 // 0..3
	MaxBuckSize     int
	ClkDrive        uint8
	IODrive         uint8
	CSDrive         uint8
}

// MaxCS returns the maximum chip-select count for this device's chip mode.
func (c FT4222Config) MaxCS() int {
	return chipModeMaxCS[c.ChipMode&3]
}

// FT4222Bridge implements bridge.Bridge for the FTDI FT4222H controller.
type FT4222Bridge struct {
	t      Transport
	cfg    FT4222Config
	mode   bridge.SPIMode
	speed  uint32
	csHigh bool
	caps   bridge.Capability

	// scratch is sized once at bind per spec.md section 9: "Scratch buffer
	// sizing" — MULTIIO_CMD_LEN + MULTIIO_SIO_WR_MAX_LEN + MULTIIO_MIO_WR_MAX_LEN.
	scratch []byte
}

// NewFT4222Bridge constructs a driver bound to an already-identified FT4222H
// transport. Open() still needs to be called to read hardware caps.
func NewFT4222Bridge(t Transport) *FT4222Bridge {
	return &FT4222Bridge{
		t:       t,
		scratch: make([]byte, multiIOCmdLen+multiIOSioWrMax+multiIOMioWrMax),
	}
}

// Open reads the hardware-caps vendor command, verifies the chip model,
// sets the 2ms latency timer and initialises the SPI master per spec.md
// section 4.2's init sequence.
func (b *FT4222Bridge) Open() error {
	model := make([]byte, 2)
	if _, err := b.t.ControlTransfer(0xC0, reqGetChipModel, 0, 0, model); err != nil {
		return ufpstatus.Wrap(ufpstatus.DeviceDisconnected, "ft4222.Open", err)
	}
	if model[0] != ft4222WantedChipA || model[1] != ft4222WantedChipB {
		return ufpstatus.New(ufpstatus.DeviceDisconnected, "ft4222.Open: unexpected chip model")
	}

	capsBuf := make([]byte, 8)
	if _, err := b.t.ControlTransfer(0xC0, reqGetHWCaps, 0, 0, capsBuf); err != nil {
		return ufpstatus.Wrap(ufpstatus.DeviceDisconnected, "ft4222.Open", err)
	}
	b.cfg.FirmwareVersion = binary.LittleEndian.Uint32(capsBuf[0:4])
	b.cfg.ChipMode = capsBuf[4] & 3
	b.cfg.MaxBuckSize = maxBuckSizeTable[capsBuf[5]%3]

	if _, err := b.t.ControlTransfer(0x40, reqSetLatencyTimer, ft4222LatencyMS, 0, nil); err != nil {
		return ufpstatus.Wrap(ufpstatus.DeviceIoError, "ft4222.Open: set latency", err)
	}

	// SPI master init: 24MHz system clock, CLK_DIV_2, CPOL low, CPHA
	// leading, CS active-low.
	b.mode = bridge.Mode0
	b.csHigh = false
	if _, err := b.SetSpeed(ft4222SysClockHz / 2); err != nil {
		return err
	}
	return nil
}

func (b *FT4222Bridge) Close() error {
	return b.t.Close()
}

func (b *FT4222Bridge) SetCSPolarity(activeHigh bool) error {
	b.csHigh = activeHigh
	return nil
}

func (b *FT4222Bridge) SetMode(mode bridge.SPIMode) error {
	b.mode = mode
	return nil
}

func (b *FT4222Bridge) SetSpeed(hz uint32) (uint32, error) {
	// The FT4222H SPI master divides the 24MHz system clock by one of a
	// fixed set of dividers; report the closest achievable rate without
	// exceeding the request.
	dividers := []uint32{2, 4, 8, 16, 32, 64, 128, 256, 512}
	best := ft4222SysClockHz / dividers[len(dividers)-1]
	for _, d := range dividers {
		f := ft4222SysClockHz / d
		if f <= hz && f > best {
			best = f
		}
	}
	b.speed = best
	return best, nil
}

func (b *FT4222Bridge) MaxReadGranularity() uint32 {
	return multiIOMioRdMax
}

func (b *FT4222Bridge) IfCaps() bridge.Capability {
	return bridge.CapQuad | bridge.CapOcta
}

func (b *FT4222Bridge) Lock()   {}
func (b *FT4222Bridge) Unlock() {}

// Supports reports whether this op can be performed by the FT4222H: the
// command phase must be single-lane, and with NoQPIBulkRead set an op with a
// 4-lane address and a 4- or 8-lane data phase is refused. The address
// length is not checked.
func (b *FT4222Bridge) Supports(op *ioop.Op) bool {
	if op.Cmd.Width > ioop.Width1 {
		return false
	}
	if b.caps&bridge.NoQPIBulkRead != 0 && (op.Data.Width == ioop.Width4 || op.Data.Width == ioop.Width8) && op.Addr.Width == ioop.Width4 {
		return false
	}
	return true
}

// AdjustOpSize shrinks op.Data.Len to what a single multi-IO transaction can
// carry, i.e. MULTIIO_MIO_WR_MAX_LEN/MULTIIO_MIO_RD_MAX_LEN for multi-lane
// ops, or the single-IO envelope for width-1 ops.
func (b *FT4222Bridge) AdjustOpSize(op *ioop.Op) uint32 {
	if isSingleLane(op) {
		overhead := uint32(1 + op.Addr.Len + op.Dummy.Len)
		if overhead >= singleIOMaxLen {
			return 0
		}
		max := singleIOMaxLen - overhead
		if op.Data.Len > max {
			return max
		}
		return op.Data.Len
	}
	if op.Data.Len > multiIOMioWrMax {
		return multiIOMioWrMax
	}
	return op.Data.Len
}

// isSingleLane reports whether every phase of op uses a single data line,
// i.e. whether it must go through the single-IO xfer path rather than
// multi-IO framing.
func isSingleLane(op *ioop.Op) bool {
	return op.Cmd.Width <= ioop.Width1 && op.Addr.Width <= ioop.Width1 && op.Data.Width <= ioop.Width1
}

// Exec performs op, choosing single-IO or multi-IO framing per spec.md
// section 4.2, and emits a zero-length packet afterward to terminate the
// transaction.
func (b *FT4222Bridge) Exec(op *ioop.Op) error {
	var err error
	if isSingleLane(op) {
		err = b.execSingleIO(op)
	} else {
		err = b.execMultiIO(op)
	}
	if err != nil {
		return err
	}
	// Zero-length packet to terminate the transaction.
	_, werr := b.t.BulkWrite(nil)
	return werr
}

// execSingleIO implements "Single I/O xfer": all bytes pass on one data
// line. Write-then-read is optimised by emitting outgoing bytes plus a
// dummy placeholder for the read, then discarding the prefix of the
// readback.
func (b *FT4222Bridge) execSingleIO(op *ioop.Op) error {
	out := nonDataBytes(op)
	if op.Dir == ioop.DirOut {
		out = append(out, op.Buf...)
	}

	if op.Dir == ioop.DirIn && op.Data.Len > 0 {
		total := uint32(len(out)) + op.Data.Len
		if total > singleIOMaxLen {
			return ufpstatus.New(ufpstatus.InvalidParameter, "ft4222.execSingleIO: write-then-read exceeds 0xFFFF")
		}
		frame := make([]byte, total)
		copy(frame, out)
		if _, err := b.t.BulkWrite(frame); err != nil {
			return ufpstatus.Wrap(ufpstatus.DeviceIoError, "ft4222.execSingleIO", err)
		}
		readback := make([]byte, total)
		if _, err := b.t.BulkRead(readback); err != nil {
			return ufpstatus.Wrap(ufpstatus.DeviceIoError, "ft4222.execSingleIO", err)
		}
		copy(op.Buf, readback[len(out):])
		return nil
	}

	if len(out) > singleIOMaxLen {
		return ufpstatus.New(ufpstatus.InvalidParameter, "ft4222.execSingleIO: op exceeds 0xFFFF")
	}
	_, err := b.t.BulkWrite(out)
	return ufpstatus.Wrap(ufpstatus.DeviceIoError, "ft4222.execSingleIO", err)
}

// execMultiIO implements the 5-byte multi-IO framing of spec.md section
// 4.2. Each of cmd/addr/dummy is classified independently by its own
// Phase.Width: a single-lane phase counts toward sio_wr_len, a multi-lane
// phase toward mio_wr_len (ground truth:
// _examples/original_source/controller/ftdi/ft4222h-spi.c's
// ufprog_spi_mem_exec_op, which checks op->cmd.buswidth, op->addr.buswidth
// and op->dummy.buswidth separately). The bytes themselves are NOT
// regrouped by classification: they stay in wire order (cmd, addr, dummy,
// then data) in one contiguous buffer after the prefix; sio_wr_len and
// mio_wr_len are only byte counts telling the FT4222H how many of the
// leading bytes to clock single-lane versus multi-lane.
func (b *FT4222Bridge) execMultiIO(op *ioop.Op) error {
	nonData := nonDataBytes(op)

	var sioLen, mioWrLen uint32
	if op.Cmd.Len > 0 {
		if op.Cmd.Width > ioop.Width1 {
			mioWrLen += op.Cmd.Len
		} else {
			sioLen += op.Cmd.Len
		}
	}
	if op.Addr.Len > 0 {
		if op.Addr.Width > ioop.Width1 {
			mioWrLen += op.Addr.Len
		} else {
			sioLen += op.Addr.Len
		}
	}
	if op.Dummy.Len > 0 {
		if op.Dummy.Width > ioop.Width1 {
			mioWrLen += op.Dummy.Len
		} else {
			sioLen += op.Dummy.Len
		}
	}

	var mioRd uint32
	if op.Dir == ioop.DirOut {
		if op.Data.Width > ioop.Width1 {
			mioWrLen += op.Data.Len
		} else {
			sioLen += op.Data.Len
		}
	} else {
		mioRd = op.Data.Len
	}

	if sioLen > multiIOSioWrMax {
		return ufpstatus.New(ufpstatus.InvalidParameter, "ft4222.execMultiIO: sio_wr_len exceeds 0xF")
	}
	if mioWrLen > multiIOMioWrMax {
		return ufpstatus.New(ufpstatus.InvalidParameter, "ft4222.execMultiIO: mio_wr_len exceeds 0xFFFF")
	}
	if mioRd > multiIOMioRdMax {
		return ufpstatus.New(ufpstatus.InvalidParameter, "ft4222.execMultiIO: mio_rd_len exceeds 0xFFFF")
	}

	prefix := multiIOPrefix(int(sioLen), int(mioWrLen), mioRd)

	frame := append(append([]byte{}, prefix[:]...), nonData...)
	if op.Dir == ioop.DirOut {
		frame = append(frame, op.Buf...)
	}

	if b.cfg.FirmwareVersion < 3 && b.cfg.MaxBuckSize > 0 {
		// Older firmware requires the write to be split by max_buck_size.
		for off := 0; off < len(frame); off += b.cfg.MaxBuckSize {
			end := off + b.cfg.MaxBuckSize
			if end > len(frame) {
				end = len(frame)
			}
			if _, err := b.t.BulkWrite(frame[off:end]); err != nil {
				return ufpstatus.Wrap(ufpstatus.DeviceIoError, "ft4222.execMultiIO", err)
			}
		}
	} else {
		if _, err := b.t.BulkWrite(frame); err != nil {
			return ufpstatus.Wrap(ufpstatus.DeviceIoError, "ft4222.execMultiIO", err)
		}
	}

	if mioRd > 0 {
		if _, err := b.t.BulkRead(op.Buf[:mioRd]); err != nil {
			return ufpstatus.Wrap(ufpstatus.DeviceIoError, "ft4222.execMultiIO", err)
		}
	}
	return nil
}

// multiIOPrefix builds the 5-byte framing prefix: bit7 set, low 5 bits of
// byte0 are sio_wr_len, followed by big-endian mio_wr_len and mio_rd_len.
func multiIOPrefix(sioLen, mioWrLen int, mioRdLen uint32) [5]byte {
	var p [5]byte
	p[0] = 0x80 | byte(sioLen&0x1F)
	binary.BigEndian.PutUint16(p[1:3], uint16(mioWrLen))
	binary.BigEndian.PutUint16(p[3:5], uint16(mioRdLen))
	return p
}

// nonDataBytes serialises the opcode, address and dummy-placeholder bytes
// of op in wire order.
func nonDataBytes(op *ioop.Op) []byte {
	out := make([]byte, 0, 1+op.Addr.Len+op.Dummy.Len)
	out = append(out, byte(op.Cmd.Val))
	for i := int(op.Addr.Len) - 1; i >= 0; i-- {
		out = append(out, byte(op.Addr.Val>>(uint(i)*8)))
	}
	for i := uint32(0); i < op.Dummy.Len; i++ {
		out = append(out, 0)
	}
	return out
}

// FT4222H vendor control request IDs (as used by the hardware-caps and
// latency-timer setup in spec.md section 4.2).
const (
	reqGetChipModel    = 0x01
	reqGetHWCaps       = 0x02
	reqSetLatencyTimer = 0x03
)
