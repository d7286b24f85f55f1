package catalog

import "github.com/hackpascal/ufprog-core-go/ioop"

// IoOpcode is one entry of a part's read or program-load opcode table,
// indexed by ioop.IOType (spec.md section 3 "Part": "optional rd/pl opcode
// tables").
type IoOpcode struct {
	Opcode byte
	NAddrs uint8
	NDummy uint8
}

// OpcodeTable maps every SPI-mem IO type to its framing, mirroring
// spi_nand_io_opcode[__SPI_MEM_IO_MAX] in part.h.
type OpcodeTable [ioop.NumIOTypes]IoOpcode

// DefaultRdOpcodes4D is the default read-opcode table for parts using 4
// dummy cycles on fast-read variants, grounded on
// default_rd_opcodes_4d[] (part.h/part.c).
var DefaultRdOpcodes4D = OpcodeTable{
	ioop.IO_1_1_1: {0x03, 2, 0},
	ioop.IO_1_1_2: {0x3B, 2, 1},
	ioop.IO_1_2_2: {0xBB, 2, 1},
	ioop.IO_1_1_4: {0x6B, 2, 1},
	ioop.IO_1_4_4: {0xEB, 2, 2},
}

// DefaultRdOpcodesQ2D is the default read-opcode table for parts whose
// quad/x4 fast read uses 2 dummy cycles instead of 4, grounded on
// default_rd_opcodes_q2d[].
var DefaultRdOpcodesQ2D = OpcodeTable{
	ioop.IO_1_1_1: {0x03, 2, 0},
	ioop.IO_1_1_2: {0x3B, 2, 1},
	ioop.IO_1_2_2: {0xBB, 2, 1},
	ioop.IO_1_1_4: {0x6B, 2, 1},
	ioop.IO_1_4_4: {0xEB, 2, 1},
}

// DefaultPlOpcodes is the default program-load opcode table, grounded on
// default_pl_opcodes[].
var DefaultPlOpcodes = OpcodeTable{
	ioop.IO_1_1_1: {0x02, 2, 0},
	ioop.IO_1_1_4: {0x32, 2, 0},
}
