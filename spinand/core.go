package spinand

import (
	"time"

	"github.com/hackpascal/ufprog-core-go/bridge"
	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/ecc"
	"github.com/hackpascal/ufprog-core-go/internal/clock"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

func durationFromUS(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}

// Default timeouts, spec.md section 5 "Suspension points".
const (
	DefaultResetTimeoutUS  = 1_000_000
	DefaultReadTimeoutUS   = 5_000_000
	DefaultProgramTimeoutUS = 5_000_000
	DefaultEraseTimeoutUS  = 5_000_000
	DefaultOIPTimeoutUS    = 5_000_000
	LowSpeedHz             = 10_000_000
)

// Chip is the bound SPI-NAND state machine: configuration cache, selected
// opcodes, ECC enable flag, sequential-read state (spec.md section 3
// "State (runtime)").
type Chip struct {
	bus  bus
	part *catalog.Part
	caps bridge.Capability

	curDie     uint32
	dieCount   uint32
	configCache [4]byte

	rdOpcode  byte
	rdIOType  ioop.IOType
	rdNAddr   uint8
	rdNDummy  uint8

	plOpcode byte
	plIOType ioop.IOType

	eccEnabled bool

	seqRdFeatureAddr byte
	seqRdCrbsyMask   byte

	maxRTimeUS  int64
	maxPPTimeUS int64
	maxBETimeUS int64

	onDieCheckEcc func() (catalog.EccStatus, error)
}

// New binds a Chip to a controller and (possibly nil, if identification
// hasn't happened yet) a catalog part.
func New(br bridge.Bridge) *Chip {
	return &Chip{
		bus:         bus{br: br},
		maxRTimeUS:  DefaultReadTimeoutUS,
		maxPPTimeUS: DefaultProgramTimeoutUS,
		maxBETimeUS: DefaultEraseTimeoutUS,
	}
}

// Attach runs the init sequence of spec.md section 4.4 "Init sequence":
// CS polarity/mode probe, low-speed reset, JEDEC ID probe, parameter-page
// probe, opcode selection, per-die setup, and the switch to high speed.
func (c *Chip) Attach(cat *catalog.Catalog, tok *clock.Token) error {
	if err := c.bus.br.SetCSPolarity(false); err != nil {
		return err
	}
	if err := c.bus.br.SetMode(bridge.Mode0); err != nil {
		if err2 := c.bus.br.SetMode(bridge.Mode3); err2 != nil {
			return err2
		}
	}
	if _, err := c.bus.br.SetSpeed(LowSpeedHz); err != nil {
		return err
	}

	if err := c.bus.reset(); err != nil {
		return err
	}
	if err := c.bus.pollOIP(tok, DefaultResetTimeoutUS); err != nil {
		return err
	}

	_, part, err := cat.Probe(func(t IDTypeCompat) ([]byte, error) {
		return c.bus.readID(IDType(t), catalog.MaxIDLen)
	})
	if err != nil {
		return err
	}
	c.part = part

	if part.Flags&catalog.FlagNoOp != 0 {
		return ufpstatus.New(ufpstatus.Unsupported, "spinand.Attach: NO_OP meta part")
	}

	if part.Flags&catalog.FlagNoPP == 0 {
		c.probeParameterPage(tok) // best-effort; built-in catalog fields win on failure
	}

	c.dieCount = part.MemOrg.LunsPerCS * part.MemOrg.NumChips
	if c.dieCount == 0 {
		c.dieCount = 1
	}

	if err := c.chooseOpcodes(); err != nil {
		return err
	}

	for d := int(c.dieCount) - 1; d >= 0; d-- {
		if err := c.bus.selectDie(uint32(d)); err != nil {
			return err
		}
		cfg, err := c.bus.getFeature(FeatureConfig)
		if err != nil {
			return err
		}
		c.configCache[d] = cfg
		if err := c.setFeatureBits(FeatureProtect, 0x00, 0xFF); err != nil {
			return err
		}
		if c.rdIOType.DataWidth() >= ioop.Width4 || c.plIOType.DataWidth() >= ioop.Width4 {
			if err := c.setQuadEnable(true); err != nil {
				return err
			}
		}
		if err := c.ondieEccControl(false); err != nil {
			return err
		}
	}

	speed := part.MaxSpeedSPIMHz * 1_000_000
	if c.rdIOType.DataWidth() == ioop.Width4 && part.MaxSpeedQuadMHz > 0 {
		speed = part.MaxSpeedQuadMHz * 1_000_000
	} else if c.rdIOType.DataWidth() == ioop.Width2 && part.MaxSpeedDualMHz > 0 {
		speed = part.MaxSpeedDualMHz * 1_000_000
	}
	if speed > 0 {
		if _, err := c.bus.br.SetSpeed(speed); err != nil {
			return err
		}
	}

	return nil
}

// Part returns the catalog entry identification matched (nil before a
// successful Attach).
func (c *Chip) Part() *catalog.Part {
	return c.part
}

// EccChip builds the synthetic on-die ecc.Chip for this part, wiring
// check_ecc and the CONFIG.ECC_EN toggle back through this Chip (spec.md
// section 4.7's on-die ECC adapter). Intended for use by the caller that
// constructs the nand.Nand layer above this Chip.
func (c *Chip) EccChip() *ecc.Chip {
	return ecc.NewOnDieChip(c.part.Model, c.part.EccReq, c.part.BBM, c.part.PageLayout, c.checkEcc, c.ondieEccControl)
}

// IDTypeCompat lets catalog.IDReader (which speaks catalog.IDType) drive
// bus.readID (which speaks the package-local IDType) without an import
// cycle between catalog and spinand.
type IDTypeCompat = catalog.IDType

func (c *Chip) setFeatureBits(addr byte, val, mask byte) error {
	cur, err := c.bus.getFeature(addr)
	if err != nil {
		return err
	}
	next := (cur &^ mask) | (val & mask)
	return c.bus.setFeature(addr, next)
}

func (c *Chip) setQuadEnable(enable bool) error {
	if c.part.QEType != catalog.QeCrBit0 {
		return nil
	}
	val := byte(0)
	if enable {
		val = ConfigQuadEn
	}
	return c.setFeatureBits(FeatureConfig, val, ConfigQuadEn)
}

func (c *Chip) ondieEccControl(enable bool) error {
	if c.part.EccType != catalog.EccEnCrBit4 {
		c.eccEnabled = enable && c.part.EccType == catalog.EccEnAlwaysOn
		return nil
	}
	val := byte(0)
	if enable {
		val = ConfigECCEn
	}
	c.eccEnabled = enable
	return c.setFeatureBits(FeatureConfig, val, ConfigECCEn)
}

// chooseOpcodes implements spec.md section 4.4's "Opcode selection":
// intersect part.rd_io_caps/pl_io_caps with controller capabilities,
// iterate IO types highest to lowest bandwidth, and pick the first the
// controller supports.
func (c *Chip) chooseOpcodes() error {
	rdType, rdOp, err := c.pickIOType(c.part.RdIOCaps, c.part.RdOpcodes, ioop.DirIn)
	if err != nil {
		return err
	}
	plType, plOp, err := c.pickIOType(c.part.PlIOCaps, c.part.PlOpcodes, ioop.DirOut)
	if err != nil {
		return err
	}
	c.rdIOType, c.rdOpcode, c.rdNAddr, c.rdNDummy = rdType, rdOp.Opcode, rdOp.NAddrs, rdOp.NDummy
	c.plIOType, c.plOpcode = plType, plOp.Opcode
	return nil
}

func (c *Chip) pickIOType(partCaps catalog.IOCaps, table *catalog.OpcodeTable, dir ioop.Direction) (ioop.IOType, catalog.IoOpcode, error) {
	if table == nil {
		return 0, catalog.IoOpcode{}, ufpstatus.New(ufpstatus.Unsupported, "spinand.chooseOpcodes: no opcode table")
	}
	noQPIBulk := c.caps&bridge.NoQPIBulkRead != 0

	for _, t := range ioop.RankedIOTypes() {
		if !partCaps.Has(t) {
			continue
		}
		if noQPIBulk && (t == ioop.IO_4_4_4 || t == ioop.IO_8_8_8) && dir == ioop.DirIn {
			continue
		}
		entry := table[t]
		if entry.Opcode == 0 {
			continue
		}
		op := ioop.SimpleOp(entry.Opcode, t, dir, entry.NAddrs, entry.NDummy, 1)
		if c.bus.br.Supports(&op) {
			return t, entry, nil
		}
	}
	return 0, catalog.IoOpcode{}, ufpstatus.New(ufpstatus.Unsupported, "spinand.chooseOpcodes: no supported IO type")
}

// probeParameterPage attempts the ONFI-like parameter-page read of
// spec.md section 4.4 step 3. Failure is non-fatal: the caller falls back
// to the matched built-in part's fields.
func (c *Chip) probeParameterPage(tok *clock.Token) {
	_ = c.setFeatureBits(FeatureConfig, 0, 0xFF)
	_ = c.setFeatureBits(FeatureConfig, ConfigOTPEn, ConfigOTPEn)
	defer c.setFeatureBits(FeatureConfig, 0, ConfigOTPEn)

	if err := c.bus.readToCache(1); err != nil {
		return
	}
	if err := c.bus.pollOIP(tok, DefaultOIPTimeoutUS); err != nil {
		return
	}

	buf := make([]byte, 3*512)
	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: 0x0B},
		Addr: ioop.Phase{Width: ioop.Width1, Len: 2},
		Dummy: ioop.Phase{Width: ioop.Width1, Len: 1},
		Data: ioop.Phase{Width: ioop.Width1, Len: uint32(len(buf))},
		Dir:  ioop.DirIn,
		Buf:  buf,
	}
	if err := ioop.ExecSplit(c.bus.br, op, 0, buf); err != nil {
		return
	}

	for copyIdx := 0; copyIdx < 3; copyIdx++ {
		block := buf[copyIdx*256 : copyIdx*256+256]
		if string(block[0:4]) != "ONFI" {
			continue
		}
		want := uint16(block[254]) | uint16(block[255])<<8
		if CRC16(block[0:254]) != want {
			continue
		}
		// A valid parameter page was found; detailed field extraction is
		// vendor-datasheet-specific and left to pre_param_setup/fixups
		// hooks on the matched part, per spec.md section 4.4 step 4.
		return
	}
}

// ReadPage implements spec.md section 4.4's read path: select_die_page,
// ondie_ecc_control, READ_TO_CACHE, poll, check_ecc, READ_FROM_CACHE.
func (c *Chip) ReadPage(page uint32, column uint32, buf []byte, enableECC bool) error {
	die, withinDie := c.part.MemOrg.SelectDiePage(page)
	if die != c.curDie {
		if err := c.bus.selectDie(die); err != nil {
			return err
		}
		c.curDie = die
	}

	if err := c.ondieEccControl(enableECC); err != nil {
		return err
	}

	pageWithPlane := c.planeAddress(withinDie)
	if err := c.bus.readToCache(pageWithPlane); err != nil {
		return err
	}
	if err := c.bus.pollOIP(clock.Background(), c.maxRTimeUS); err != nil {
		return err
	}

	var eccStatus catalog.EccStatus
	if enableECC {
		st, err := c.checkEcc()
		if err != nil {
			return err
		}
		eccStatus = st
	}

	op := ioop.Op{
		Cmd:   ioop.Phase{Width: ioop.Width1, Len: 1, Val: uint64(c.rdOpcode)},
		Addr:  ioop.Phase{Width: c.rdIOType.Info().AddrWidth(), Len: uint32(c.rdNAddr), Val: uint64(column)},
		Dummy: ioop.Phase{Width: c.rdIOType.Info().AddrWidth(), Len: uint32(c.rdNDummy)},
		Data:  ioop.Phase{Width: c.rdIOType.Info().DataWidth(), Len: uint32(len(buf))},
		Dir:   ioop.DirIn,
	}
	if err := ioop.ExecSplit(c.bus.br, op, uint64(column), buf); err != nil {
		return err
	}

	if enableECC && eccStatus.Result == catalog.EccUncorrectable {
		return ufpstatus.New(ufpstatus.EccUncorrectable, "spinand.ReadPage")
	}
	return nil
}

// planeAddress propagates the plane bit per spec.md section 4.4 "Plane
// address": for planes_per_lun=2, bit pages_per_block of the page number
// moves to bit page_shift+1 of the column/page address.
func (c *Chip) planeAddress(withinDiePage uint32) uint32 {
	if c.part.MemOrg.PlanesPerLun != 2 {
		return withinDiePage
	}
	ppb := c.part.MemOrg.PagesPerBlock
	planeBit := (withinDiePage / ppb) & 1
	page := withinDiePage &^ planeBit
	return page | (planeBit << c.part.MemOrg.PageShift)
}

func (c *Chip) checkEcc() (catalog.EccStatus, error) {
	if c.onDieCheckEcc != nil {
		return c.onDieCheckEcc()
	}
	sr, err := c.bus.lastStatus()
	if err != nil {
		return catalog.EccStatus{}, err
	}
	steps, _ := c.part.EccReq.Steps(c.part.MemOrg.PageSize)
	decoder := GenericStatusDecoder(int32(c.part.EccReq.StrengthPerStep))
	return decoder(sr, steps), nil
}

// GenericStatusDecoder implements spec.md section 4.4's "generic 1-bit-
// per-step decoder": STATUS bits [4:5], 0->Ok, 1->Corrected(strength),
// >=2->Uncorrectable.
func GenericStatusDecoder(strength int32) func(byte, uint32) catalog.EccStatus {
	return func(sr byte, steps uint32) catalog.EccStatus {
		bits := (sr >> 4) & 0x3
		st := catalog.EccStatus{StepBitflips: make([]int32, steps)}
		switch bits {
		case 0:
			st.Result = catalog.EccOk
		case 1:
			st.Result = catalog.EccCorrected
			for i := range st.StepBitflips {
				st.StepBitflips[i] = strength
			}
		default:
			st.Result = catalog.EccUncorrectable
			for i := range st.StepBitflips {
				st.StepBitflips[i] = -1
			}
		}
		return st
	}
}

// WritePage implements spec.md section 4.4's program path: WRITE_ENABLE,
// verify WEL, PROGRAM_LOAD across splits, PROGRAM_EXECUTE, poll,
// PROGRAM_FAIL check, WRITE_DISABLE on any error.
func (c *Chip) WritePage(page uint32, column uint32, buf []byte) error {
	die, withinDie := c.part.MemOrg.SelectDiePage(page)
	if die != c.curDie {
		if err := c.bus.selectDie(die); err != nil {
			return err
		}
		c.curDie = die
	}

	if err := c.bus.writeEnable(); err != nil {
		return err
	}
	sr, err := c.bus.lastStatus()
	if err != nil {
		c.bus.writeDisable()
		return err
	}
	if sr&StatusWEL == 0 {
		c.bus.writeDisable()
		return ufpstatus.New(ufpstatus.DeviceIoError, "spinand.WritePage: WEL not set after write_enable")
	}

	op := ioop.Op{
		Cmd:  ioop.Phase{Width: ioop.Width1, Len: 1, Val: uint64(c.plOpcode)},
		Addr: ioop.Phase{Width: c.plIOType.Info().AddrWidth(), Len: 2, Val: uint64(column)},
		Data: ioop.Phase{Width: c.plIOType.Info().DataWidth(), Len: uint32(len(buf))},
		Dir:  ioop.DirOut,
	}
	if err := ioop.ExecSplit(c.bus.br, op, uint64(column), buf); err != nil {
		c.bus.writeDisable()
		return err
	}

	pageWithPlane := c.planeAddress(withinDie)
	if err := c.bus.programExecute(pageWithPlane); err != nil {
		c.bus.writeDisable()
		return err
	}
	if err := c.bus.pollOIP(clock.Background(), c.maxPPTimeUS); err != nil {
		c.bus.writeDisable()
		return err
	}

	sr, err = c.bus.lastStatus()
	if err != nil {
		c.bus.writeDisable()
		return err
	}
	if sr&StatusProgramFail != 0 {
		c.bus.writeDisable()
		return ufpstatus.New(ufpstatus.FlashProgramFailed, "spinand.WritePage")
	}
	return nil
}

// EraseBlock erases block, converting it to the first page of that block.
func (c *Chip) EraseBlock(block uint32) error {
	page := block << (c.part.MemOrg.BlockShift - c.part.MemOrg.PageShift)
	die, withinDie := c.part.MemOrg.SelectDiePage(page)
	if die != c.curDie {
		if err := c.bus.selectDie(die); err != nil {
			return err
		}
		c.curDie = die
	}

	if err := c.bus.writeEnable(); err != nil {
		return err
	}
	if err := c.bus.blockErase(withinDie); err != nil {
		c.bus.writeDisable()
		return err
	}
	if err := c.bus.pollOIP(clock.Background(), c.maxBETimeUS); err != nil {
		c.bus.writeDisable()
		return err
	}
	sr, err := c.bus.lastStatus()
	if err != nil {
		c.bus.writeDisable()
		return err
	}
	if sr&StatusEraseFail != 0 {
		c.bus.writeDisable()
		return ufpstatus.New(ufpstatus.FlashEraseFailed, "spinand.EraseBlock")
	}
	return nil
}

// SelectDie re-selects the active die explicitly (spec.md section 3
// "State (runtime)": current die index).
func (c *Chip) SelectDie(die uint32) error {
	if err := c.bus.selectDie(die); err != nil {
		return err
	}
	c.curDie = die
	return nil
}

// ChipResetSetup drops pipeline state after a sequential-read failure
// (spec.md section 4.4 "Sequential multi-page read": "the die is fully
// reset and re-initialised").
func (c *Chip) ChipResetSetup(tok *clock.Token) error {
	if err := c.bus.reset(); err != nil {
		return err
	}
	if err := c.bus.pollOIP(tok, DefaultResetTimeoutUS); err != nil {
		return err
	}
	return c.ondieEccControl(c.eccEnabled)
}
