package catalog

import "github.com/hackpascal/ufprog-core-go/ioop"

// ioTypesUpTo1_1_4 lists the IO types supported by parts whose fastest
// read mode is 1-1-4 (single-lane command/address, quad data).
func ioTypesUpTo1_1_4() []ioop.IOType {
	return []ioop.IOType{ioop.IO_1_1_1, ioop.IO_1_1_2, ioop.IO_1_2_2, ioop.IO_1_1_4}
}

// ioTypesUpTo1_4_4 adds 1-4-4 (quad address) on top of ioTypesUpTo1_1_4.
func ioTypesUpTo1_4_4() []ioop.IOType {
	return append(ioTypesUpTo1_1_4(), ioop.IO_1_4_4)
}

// defaultRdCaps4d is the read-capability bitset for parts using
// DefaultRdOpcodes4D (1-1-1 through 1-4-4).
func defaultRdCaps4d() IOCaps {
	return IOCapsOf(ioTypesUpTo1_4_4()...)
}

// defaultPlCaps is the program-load capability bitset for parts using
// DefaultPlOpcodes (1-1-1 and 1-1-4).
func defaultPlCaps() IOCaps {
	return IOCapsOf(ioop.IO_1_1_1, ioop.IO_1_1_4)
}
