// Package numeric holds the small bit-twiddling and formatting helpers used
// throughout the catalog, NAND and FTL layers: power-of-two checks for
// geometry validation (spec.md section 8, invariant 1), shift/mask derivation,
// and human-readable byte-size formatting for the CLI.
package numeric

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"unsafe"
)

// NativeEndian is the host's native byte order, used when decoding raw
// parameter-page and ID-table structures that are defined in terms of the
// controller's natural endianness.
var NativeEndian binary.ByteOrder

func init() {
	i := uint32(1)
	b := (*[4]byte)(unsafe.Pointer(&i))
	if b[0] == 1 {
		NativeEndian = binary.LittleEndian
	} else {
		NativeEndian = binary.BigEndian
	}
}

// Log2 finds the position of the most significant set bit, used to derive
// page_shift/block_shift/lun_shift/chip_shift from their power-of-two sizes.
func Log2(x uint32) uint {
	if x == 0 {
		return 0
	}
	return uint(bits.Len32(x) - 1)
}

// IsPowerOfTwo reports whether x is a non-zero power of two, the validation
// spec.md section 8 invariant 1 requires of every geometry field.
func IsPowerOfTwo(x uint32) bool {
	return x != 0 && x&(x-1) == 0
}

// Mask returns the bitmask selecting the low log2(size) bits, i.e. size-1
// for a power-of-two size. Used to derive *_mask fields alongside *_shift.
func Mask(size uint32) uint32 {
	return size - 1
}

// FormatBytes formats a byte quantity using human-readable SI-ish units
// (KB/MB/GB/...), matching the CLI's "dump"/"probe" size reporting.
func FormatBytes(v uint64) string {
	var i int

	suffixes := [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	d := uint64(1)

	for i = 0; i < len(suffixes)-1; i++ {
		if v >= d*1000 {
			d *= 1000
		} else {
			break
		}
	}

	if i == 0 {
		return fmt.Sprintf("%d %s", v, suffixes[i])
	}
	return fmt.Sprintf("%.3g %s", float64(v)/float64(d), suffixes[i])
}

// CeilDiv returns ceil(a/b) for positive integers, used for ecc_steps and
// split-by-max-payload arithmetic.
func CeilDiv(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
