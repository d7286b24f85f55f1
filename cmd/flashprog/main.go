// Go flash programmer CLI reference implementation.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/hackpascal/ufprog-core-go/bbt"
	"github.com/hackpascal/ufprog-core-go/bridge"
	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/ftl"
	"github.com/hackpascal/ufprog-core-go/internal/clock"
	"github.com/hackpascal/ufprog-core-go/internal/numeric"
	"github.com/hackpascal/ufprog-core-go/internal/progconfig"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/nand"
	"github.com/hackpascal/ufprog-core-go/spinand"
)

const (
	_LINUX_CAPABILITY_VERSION_3 = 0x20080522

	CAP_SYS_RAWIO = 1 << 17
	CAP_SYS_ADMIN = 1 << 21
)

type capHeader struct {
	version uint32
	pid     int
}

type capData struct {
	effective   uint32
	permitted   uint32
	inheritable uint32
}

type capsV3 struct {
	hdr  capHeader
	data [2]capData
}

// checkCaps invokes the capget syscall to check for necessary capabilities
// before a raw USB bridge is opened, matching the teacher's approach for
// raw SCSI/ioctl device access.
func checkCaps() {
	caps := new(capsV3)
	caps.hdr.version = _LINUX_CAPABILITY_VERSION_3

	_, _, e1 := unix.RawSyscall(unix.SYS_CAPGET, uintptr(unsafe.Pointer(&caps.hdr)), uintptr(unsafe.Pointer(&caps.data)), 0)
	if e1 != 0 {
		return
	}
	if (caps.data[0].effective&CAP_SYS_RAWIO == 0) && (caps.data[0].effective&CAP_SYS_ADMIN == 0) {
		fmt.Println("Neither cap_sys_rawio nor cap_sys_admin are in effect. Device access will probably fail.")
	}
}

// session binds everything a subcommand needs once a device is open and a
// part identified: the bridge, the SPI-NAND core, the generic NAND layer,
// a RAM BBT, and a single-partition Basic FTL spanning the whole part.
type session struct {
	br    bridge.Bridge
	chip  *spinand.Chip
	n     *nand.Nand
	table *bbt.RAM
	f     *ftl.FTL
	part  *catalog.Part
}

func openSession(cfg *progconfig.Config, dev, partModel string) (*session, error) {
	br, err := openBridge(dev)
	if err != nil {
		return nil, err
	}
	if err := br.Open(); err != nil {
		return nil, err
	}

	if hz := cfg.DeviceMaxSpeedHz(dev); hz != 0 {
		if _, err := br.SetSpeed(hz); err != nil {
			br.Close()
			return nil, err
		}
	}

	chip := spinand.New(br)
	cat := catalog.NewCatalog()

	if err := chip.Attach(cat, clock.Background()); err != nil {
		br.Close()
		return nil, err
	}

	part := chip.Part()
	if partModel != "" && part.Model != partModel {
		if _, p := cat.FindByModel(partModel); p != nil {
			part = p
		} else {
			br.Close()
			return nil, ufpstatus.New(ufpstatus.FlashPartMismatch, "flashprog: part="+partModel+" not found in catalog")
		}
	}

	eccChip := chip.EccChip()
	n := nand.New(chip, part.MemOrg, eccChip, part.BBM)

	blockCount := uint32(part.MemOrg.BlockCount)
	table := bbt.NewRAM(blockCount, n.CheckBad)

	f := &ftl.FTL{Nand: n, BBT: table}

	return &session{br: br, chip: chip, n: n, table: table, f: f, part: part}, nil
}

func (s *session) close() {
	s.br.Close()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func loadConfig() *progconfig.Config {
	path, err := progconfig.DefaultPath()
	if err != nil {
		return progconfig.Default()
	}
	cfg, err := progconfig.Load(path)
	if err != nil {
		return progconfig.Default()
	}
	return cfg
}

func main() {
	fmt.Println("Go Flash Programmer Reference Implementation")
	fmt.Printf("Built with %s on %s (%s)\n\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	checkCaps()
	cfg := loadConfig()

	global := flag.NewFlagSet("flashprog", flag.ExitOnError)
	dev := global.String("dev", "", "bridge device name, e.g. ft4222-0 or mpsse-0")
	part := global.String("part", "", "force a catalog part model instead of auto-identification")
	die := global.Uint("die", 0, "target die index")
	global.Parse(os.Args[2:])

	if *dev == "" {
		*dev = cfg.LastDevice
	}

	switch os.Args[1] {
	case "list":
		cmdList(global.Args())
	case "probe":
		cmdProbe(cfg, *dev, *part)
	case "uid":
		cmdUID(cfg, *dev, *part)
	case "read":
		cmdRead(cfg, *dev, *part, uint32(*die), global.Args())
	case "write", "update":
		cmdWrite(cfg, *dev, *part, uint32(*die), global.Args())
	case "erase":
		cmdErase(cfg, *dev, *part, uint32(*die), global.Args())
	case "otp":
		cmdOTP(cfg, *dev, *part, global.Args())
	case "config":
		cmdConfig(cfg, global.Args())
	default:
		printUsage()
		os.Exit(1)
	}

	if *dev != "" {
		cfg.LastDevice = *dev
		cfg.Save()
	}
}

func printUsage() {
	fmt.Println("usage: flashprog <command> [-dev NAME] [-part MODEL] [-die N] [args...]")
	fmt.Println("commands: list, probe, read <file> [addr [size]], write|update <file> [addr [size]],")
	fmt.Println("          erase {chip|[addr [size]]}, uid, otp {info|read|lock} [INDEX],")
	fmt.Println("          config init")
}

func cmdList(args []string) {
	cat := catalog.NewCatalog()
	for _, e := range cat.ListParts() {
		fmt.Printf("%-16s %-24s %s\n", e.Vendor.Name, e.Part.Model, numeric.FormatBytes(e.Part.MemOrg.PageCount*uint64(e.Part.MemOrg.PageSize)))
	}
}

func cmdProbe(cfg *progconfig.Config, dev, part string) {
	s, err := openSession(cfg, dev, part)
	if err != nil {
		fail(err)
	}
	defer s.close()

	fmt.Printf("Model: %s\n", s.part.Model)
	fmt.Printf("Size:  %s\n", numeric.FormatBytes(s.part.MemOrg.PageCount*uint64(s.part.MemOrg.PageSize)))
	fmt.Printf("Page:  %d + %d OOB\n", s.part.MemOrg.PageSize, s.part.MemOrg.OobSize)
	fmt.Printf("Block: %d pages\n", s.part.MemOrg.PagesPerBlock)
}

func cmdUID(cfg *progconfig.Config, dev, part string) {
	s, err := openSession(cfg, dev, part)
	if err != nil {
		fail(err)
	}
	defer s.close()

	uid, err := s.n.ReadUID()
	if err != nil {
		fail(err)
	}
	fmt.Printf("% X\n", uid)
}

func cmdRead(cfg *progconfig.Config, dev, part string, die uint32, args []string) {
	if len(args) < 1 {
		fail(ufpstatus.New(ufpstatus.InvalidParameter, "flashprog read: missing output file"))
	}
	s, err := openSession(cfg, dev, part)
	if err != nil {
		fail(err)
	}
	defer s.close()

	if err := s.chip.SelectDie(die); err != nil {
		fail(err)
	}

	addr, size := parseAddrSize(args[1:], uint32(s.part.MemOrg.PageCount)*s.part.MemOrg.PageSize)
	pageSize := s.part.MemOrg.PageSize
	startPage := addr / pageSize
	count := numeric.CeilDiv(size, pageSize)

	buf := make([]byte, count*pageSize)
	if _, err := s.n.ReadPages(startPage, count, buf, true); err != nil {
		fail(err)
	}
	if err := os.WriteFile(args[0], buf[:size], 0o644); err != nil {
		fail(err)
	}
	fmt.Printf("Read %s to %s\n", numeric.FormatBytes(uint64(size)), args[0])
}

func cmdWrite(cfg *progconfig.Config, dev, part string, die uint32, args []string) {
	if len(args) < 1 {
		fail(ufpstatus.New(ufpstatus.InvalidParameter, "flashprog write: missing input file"))
	}
	s, err := openSession(cfg, dev, part)
	if err != nil {
		fail(err)
	}
	defer s.close()

	if err := s.chip.SelectDie(die); err != nil {
		fail(err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fail(err)
	}

	pageSize := s.part.MemOrg.PageSize
	ppb := s.part.MemOrg.PagesPerBlock
	pagesPerBlockShift := numeric.Log2(ppb)

	addr, _ := parseAddrSize(args[1:], uint32(len(data)))
	partition := ftl.Partition{PagesPerBlockShift: pagesPerBlockShift, PageSize: pageSize}

	padded := make([]byte, numeric.CeilDiv(uint32(len(data)), pageSize)*pageSize)
	copy(padded, data)

	done, err := s.f.WritePages(partition, addr/pageSize, uint32(len(padded))/pageSize, padded, false, 0)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %d pages\n", done)
}

func cmdErase(cfg *progconfig.Config, dev, part string, die uint32, args []string) {
	s, err := openSession(cfg, dev, part)
	if err != nil {
		fail(err)
	}
	defer s.close()

	if err := s.chip.SelectDie(die); err != nil {
		fail(err)
	}

	ppb := s.part.MemOrg.PagesPerBlock
	pagesPerBlockShift := numeric.Log2(ppb)
	partition := ftl.Partition{PagesPerBlockShift: pagesPerBlockShift, PageSize: s.part.MemOrg.PageSize}

	var startBlock, count uint32
	if len(args) == 0 || args[0] == "chip" {
		count = uint32(s.part.MemOrg.BlockCount)
	} else {
		addr, size := parseAddrSize(args, uint32(s.part.MemOrg.PageCount)*s.part.MemOrg.PageSize)
		blockSize := ppb * s.part.MemOrg.PageSize
		startBlock = addr / blockSize
		count = numeric.CeilDiv(size, blockSize)
	}

	done, err := s.f.EraseBlocks(partition, startBlock, count, true, 0)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Erased %d blocks\n", done)
}

func cmdOTP(cfg *progconfig.Config, dev, part string, args []string) {
	if len(args) < 1 {
		fail(ufpstatus.New(ufpstatus.InvalidParameter, "flashprog otp: missing subcommand"))
	}
	s, err := openSession(cfg, dev, part)
	if err != nil {
		fail(err)
	}
	defer s.close()

	index := uint32(0)
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			index = uint32(v)
		}
	}

	switch args[0] {
	case "info":
		if s.part.OTP == nil {
			fmt.Println("no OTP region")
			return
		}
		fmt.Printf("OTP: %d pages starting at index %d\n", s.part.OTP.Count, s.part.OTP.StartIndex)
	case "read":
		buf := make([]byte, s.part.MemOrg.PageSize)
		if err := s.n.OtpRead(index, 0, buf); err != nil {
			fail(err)
		}
		fmt.Printf("% X\n", buf)
	case "lock":
		if err := s.n.OtpLock(); err != nil {
			fail(err)
		}
		fmt.Println("OTP locked")
	default:
		fail(ufpstatus.New(ufpstatus.Unsupported, "flashprog otp: unknown subcommand "+args[0]))
	}
}

func parseAddrSize(args []string, defaultSize uint32) (addr, size uint32) {
	size = defaultSize
	if len(args) > 0 {
		if v, err := strconv.ParseUint(args[0], 0, 32); err == nil {
			addr = uint32(v)
		}
	}
	if len(args) > 1 {
		if v, err := strconv.ParseUint(args[1], 0, 32); err == nil {
			size = uint32(v)
		}
	}
	return addr, size
}
