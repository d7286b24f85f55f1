// Package bridge defines the controller adapter contract of spec.md section
// 6 ("Bridge I/O contract"): the only surface the core calls on a concrete
// USB-tethered controller (FT4222H, MPSSE, or any future bridge).
package bridge

import (
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// Capability is a bitset describing what a bridge can and cannot do, merged
// with part capabilities during opcode selection (spec.md section 4.4).
type Capability uint32

const (
	// CapQuad means the bridge can drive 4 data lines.
	CapQuad Capability = 1 << iota
	// CapOcta means the bridge can drive 8 data lines.
	CapOcta
	// CapDTR means the bridge can clock on both edges.
	CapDTR
	// NoQPIBulkRead disables 4-4-4 (and 8-8-8) bulk reads even if the bus
	// width would otherwise be supported - spec.md invariant 16.
	NoQPIBulkRead
)

// SPIMode is one of the four standard SPI clock polarity/phase modes.
type SPIMode uint8

const (
	Mode0 SPIMode = iota
	Mode1
	Mode2
	Mode3
)

// Bridge is the controller adapter boundary. Every method may block until
// the underlying USB transaction completes, bounded by a transport-specific
// timeout (spec.md section 5: TRANSFER_TIMEOUT = 10s).
type Bridge interface {
	ioop.Executor

	Open() error
	Close() error

	SetCSPolarity(activeHigh bool) error
	SetMode(mode SPIMode) error
	// SetSpeed requests hz and returns the actual clock achieved.
	SetSpeed(hz uint32) (actualHz uint32, err error)

	MaxReadGranularity() uint32
	IfCaps() Capability

	Lock()
	Unlock()
}
