// Package bbt implements the BBT (Bad Block Table) driver of spec.md
// section 4.6 (component F): a plugin-shaped interface plus a default RAM
// implementation that lazily probes blocks on first query.
package bbt

import "github.com/hackpascal/ufprog-core-go/internal/ufpstatus"

// State is one block's 2-bit BBT entry (spec.md section 4.6).
type State uint8

const (
	Unknown State = iota
	Erased
	Good
	Bad
)

// CheckFunc probes a single block's bad-block marker, supplied by the
// NAND generic layer (checkbad).
type CheckFunc func(block uint32) (bad bool, err error)

// Driver is the BBT plugin contract. Plugins may additionally implement
// Commit/ModifyConfig/GetConfig/IsReserved; the shell treats an absent
// optional hook as unsupported/no-op (spec.md section 4.6).
type Driver interface {
	GetState(block uint32) (State, error)
	SetState(block uint32, s State) error
	Reprobe(fullScan bool) error
}

// RAM is the default in-memory BBT: a 2-bit state per block packed into a
// bitmap sized block_count*2 bits (spec.md section 4.6).
type RAM struct {
	blockCount uint32
	bits       []byte // 2 bits/block, 4 blocks/byte
	check      CheckFunc
}

// NewRAM constructs a RAM BBT for blockCount blocks, all initially Unknown.
func NewRAM(blockCount uint32, check CheckFunc) *RAM {
	return &RAM{
		blockCount: blockCount,
		bits:       make([]byte, (uint64(blockCount)*2+7)/8),
		check:      check,
	}
}

func (r *RAM) get(block uint32) State {
	byteIdx := block / 4
	shift := (block % 4) * 2
	return State((r.bits[byteIdx] >> shift) & 0x3)
}

func (r *RAM) set(block uint32, s State) {
	byteIdx := block / 4
	shift := (block % 4) * 2
	r.bits[byteIdx] = (r.bits[byteIdx] &^ (0x3 << shift)) | (byte(s) << shift)
}

// GetState lazily upgrades Unknown -> probe -> cached state (spec.md
// section 4.6 "get_state(block) lazily upgrades UNKNOWN").
func (r *RAM) GetState(block uint32) (State, error) {
	if block >= r.blockCount {
		return Unknown, ufpstatus.New(ufpstatus.InvalidParameter, "bbt.RAM.GetState: block out of range")
	}
	s := r.get(block)
	if s != Unknown {
		return s, nil
	}
	if r.check == nil {
		r.set(block, Good)
		return Good, nil
	}
	bad, err := r.check(block)
	if err != nil {
		return Unknown, err
	}
	if bad {
		r.set(block, Bad)
		return Bad, nil
	}
	r.set(block, Good)
	return Good, nil
}

// SetState mutates the bitmap in place.
func (r *RAM) SetState(block uint32, s State) error {
	if block >= r.blockCount {
		return ufpstatus.New(ufpstatus.InvalidParameter, "bbt.RAM.SetState: block out of range")
	}
	r.set(block, s)
	return nil
}

// Reprobe either zeroes the map (fast) or, if fullScan, calls check on
// every block (spec.md section 4.6).
func (r *RAM) Reprobe(fullScan bool) error {
	for i := range r.bits {
		r.bits[i] = 0
	}
	if !fullScan {
		return nil
	}
	for b := uint32(0); b < r.blockCount; b++ {
		if _, err := r.GetState(b); err != nil {
			return err
		}
	}
	return nil
}

// IsGoodBlock is a convenience helper over GetState used by the FTL.
func (r *RAM) IsGoodBlock(block uint32) (bool, error) {
	s, err := r.GetState(block)
	if err != nil {
		return false, err
	}
	return s == Good || s == Erased, nil
}
