// Package ioop implements the SPI-mem "op" executor boundary (spec.md
// section 4.1, component A): a generic command/address/dummy/data record
// that is the sole interface between flash logic and a controller, plus the
// seventeen named SPI-mem IO types and the packed IoTypeInfo representation
// the rest of the core uses to pick an opcode.
package ioop

import "fmt"

// BusWidth is the number of data lines a phase uses.
type BusWidth uint8

const (
	Width1 BusWidth = 1
	Width2 BusWidth = 2
	Width4 BusWidth = 4
	Width8 BusWidth = 8
)

// IOType names one of the seventeen SPI-mem IO types: ten cmd-addr-data bus
// width combinations, plus DTR (double transfer rate) variants of 1-1-1,
// 1-2-2, 2-2-2, 1-4-4, 4-4-4, 1-8-8 and 8-8-8. 1-1-2, 1-1-4 and 1-1-8 have
// no DTR variant.
type IOType uint8

const (
	IO_1_1_1 IOType = iota
	IO_1_1_2
	IO_1_2_2
	IO_2_2_2
	IO_1_1_4
	IO_1_4_4
	IO_4_4_4
	IO_1_1_8
	IO_1_8_8
	IO_8_8_8
	IO_1_1_1_DTR
	IO_1_2_2_DTR
	IO_2_2_2_DTR
	IO_1_4_4_DTR
	IO_4_4_4_DTR
	IO_1_8_8_DTR
	IO_8_8_8_DTR

	NumIOTypes
)

type ioTypeDef struct {
	name         string
	cmdW, addrW  BusWidth
	dataW        BusWidth
	dtr          bool
}

var ioTypeTable = [NumIOTypes]ioTypeDef{
	IO_1_1_1:     {"1-1-1", Width1, Width1, Width1, false},
	IO_1_1_2:     {"1-1-2", Width1, Width1, Width2, false},
	IO_1_2_2:     {"1-2-2", Width1, Width2, Width2, false},
	IO_2_2_2:     {"2-2-2", Width2, Width2, Width2, false},
	IO_1_1_4:     {"1-1-4", Width1, Width1, Width4, false},
	IO_1_4_4:     {"1-4-4", Width1, Width4, Width4, false},
	IO_4_4_4:     {"4-4-4", Width4, Width4, Width4, false},
	IO_1_1_8:     {"1-1-8", Width1, Width1, Width8, false},
	IO_1_8_8:     {"1-8-8", Width1, Width8, Width8, false},
	IO_8_8_8:     {"8-8-8", Width8, Width8, Width8, false},
	IO_1_1_1_DTR: {"1-1-1-dtr", Width1, Width1, Width1, true},
	IO_1_2_2_DTR: {"1-2-2-dtr", Width1, Width2, Width2, true},
	IO_2_2_2_DTR: {"2-2-2-dtr", Width2, Width2, Width2, true},
	IO_1_4_4_DTR: {"1-4-4-dtr", Width1, Width4, Width4, true},
	IO_4_4_4_DTR: {"4-4-4-dtr", Width4, Width4, Width4, true},
	IO_1_8_8_DTR: {"1-8-8-dtr", Width1, Width8, Width8, true},
	IO_8_8_8_DTR: {"8-8-8-dtr", Width8, Width8, Width8, true},
}

// rank orders IO types from highest to lowest bandwidth, used by the opcode
// selection algorithm (spec.md section 4.4 "Opcode selection", invariant 16).
var rankOrder = []IOType{
	IO_8_8_8_DTR, IO_8_8_8, IO_1_8_8_DTR, IO_1_8_8, IO_1_1_8,
	IO_4_4_4_DTR, IO_4_4_4, IO_1_4_4_DTR, IO_1_4_4, IO_1_1_4,
	IO_2_2_2_DTR, IO_2_2_2, IO_1_2_2_DTR, IO_1_2_2, IO_1_1_2,
	IO_1_1_1_DTR, IO_1_1_1,
}

// RankedIOTypes returns IO types ordered from highest to lowest bandwidth,
// for iterating during opcode selection.
func RankedIOTypes() []IOType {
	out := make([]IOType, len(rankOrder))
	copy(out, rankOrder)
	return out
}

// IoTypeInfo is the packed integer carrying per-phase bus widths and the DTR
// flag for an IO type, as described in spec.md section 3 "IoOp (SPI-mem
// op)". Layout: bits[0:4]=cmd width, bits[4:8]=addr width, bits[8:12]=data
// width, bit[12]=dtr.
type IoTypeInfo uint16

func packInfo(d ioTypeDef) IoTypeInfo {
	info := IoTypeInfo(d.cmdW) | IoTypeInfo(d.addrW)<<4 | IoTypeInfo(d.dataW)<<8
	if d.dtr {
		info |= 1 << 12
	}
	return info
}

// Info returns the packed IoTypeInfo for an IO type.
func (t IOType) Info() IoTypeInfo {
	if t >= NumIOTypes {
		return 0
	}
	return packInfo(ioTypeTable[t])
}

func (info IoTypeInfo) CmdWidth() BusWidth  { return BusWidth(info & 0xf) }
func (info IoTypeInfo) AddrWidth() BusWidth { return BusWidth((info >> 4) & 0xf) }
func (info IoTypeInfo) DataWidth() BusWidth { return BusWidth((info >> 8) & 0xf) }
func (info IoTypeInfo) DTR() bool           { return info&(1<<12) != 0 }

// IOName returns the canonical name of an IO type, e.g. "1-1-4".
func IOName(t IOType) string {
	if t >= NumIOTypes {
		return "unknown"
	}
	return ioTypeTable[t].name
}

// NameToType is the inverse of IOName.
func NameToType(name string) (IOType, error) {
	for i, d := range ioTypeTable {
		if d.name == name {
			return IOType(i), nil
		}
	}
	return 0, fmt.Errorf("ioop: unknown IO type %q", name)
}

// DataWidth reports the IO type's data-phase bus width (1/2/4/8).
func (t IOType) DataWidth() BusWidth {
	if t >= NumIOTypes {
		return 0
	}
	return ioTypeTable[t].dataW
}

// CmdWidth reports the IO type's command-phase bus width.
func (t IOType) CmdWidth() BusWidth {
	if t >= NumIOTypes {
		return 0
	}
	return ioTypeTable[t].cmdW
}
