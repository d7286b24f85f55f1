package nand

import "github.com/hackpascal/ufprog-core-go/internal/ufpstatus"

// checkPattern reports whether buf is entirely pattern bytes. Grounded on
// spec.md section 9's Open Question about nand_torture_check_pattern: the
// source's erased-block path was missing an "if (ret)" guard around this
// check, silently ignoring a mismatch. This implementation surfaces the
// result explicitly to its caller instead.
func checkPattern(buf []byte, pattern byte) bool {
	for _, b := range buf {
		if b != pattern {
			return false
		}
	}
	return true
}

// TortureBlock implements spec.md section 4.5's torture_block(block):
// erase, verify all-0xFF, write 0x5A, verify, write ~0x5A, verify; if
// randomPageWrite capability is present also write the pattern without a
// pre-erase. The block is left erased (in service) on success.
func (n *Nand) TortureBlock(block uint32, randomPageWrite bool) error {
	pageShift := n.blockPageShift()
	pagesPerBlock := uint32(1) << pageShift
	pageSize := n.MemOrg.PageSize + n.MemOrg.OobSize
	pageBase := block << pageShift

	if err := n.EraseBlock(block); err != nil {
		return err
	}
	if err := n.verifyBlockPattern(pageBase, pagesPerBlock, pageSize, 0xFF); err != nil {
		return err
	}

	if err := n.writeAndVerifyPattern(pageBase, pagesPerBlock, pageSize, 0x5A); err != nil {
		return err
	}
	if err := n.EraseBlock(block); err != nil {
		return err
	}
	if err := n.writeAndVerifyPattern(pageBase, pagesPerBlock, pageSize, ^byte(0x5A)); err != nil {
		return err
	}

	if randomPageWrite {
		if err := n.writeAndVerifyPatternNoErase(pageBase, pagesPerBlock, pageSize, 0x5A); err != nil {
			return err
		}
	}

	return n.EraseBlock(block)
}

func (n *Nand) verifyBlockPattern(pageBase, count, pageSize uint32, pattern byte) error {
	buf := make([]byte, pageSize)
	for i := uint32(0); i < count; i++ {
		if err := n.Chip.ReadPage(pageBase+i, 0, buf, false); err != nil {
			return err
		}
		if !checkPattern(buf, pattern) {
			return ufpstatus.New(ufpstatus.DataVerificationFail, "nand.TortureBlock: non-matching byte found")
		}
	}
	return nil
}

func (n *Nand) writeAndVerifyPattern(pageBase, count, pageSize uint32, pattern byte) error {
	buf := make([]byte, pageSize)
	for i := range buf {
		buf[i] = pattern
	}
	for i := uint32(0); i < count; i++ {
		if err := n.Chip.WritePage(pageBase+i, 0, buf); err != nil {
			return err
		}
	}
	readback := make([]byte, pageSize)
	for i := uint32(0); i < count; i++ {
		if err := n.Chip.ReadPage(pageBase+i, 0, readback, false); err != nil {
			return err
		}
		if !checkPattern(readback, pattern) {
			return ufpstatus.New(ufpstatus.DataVerificationFail, "nand.TortureBlock: pattern mismatch")
		}
	}
	return nil
}

func (n *Nand) writeAndVerifyPatternNoErase(pageBase, count, pageSize uint32, pattern byte) error {
	return n.writeAndVerifyPattern(pageBase, count, pageSize, pattern)
}
