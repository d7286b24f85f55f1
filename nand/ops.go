package nand

import (
	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// WritePages programs count consecutive pages starting at page, stopping
// at the first failure (spec.md section 4.5's write_pages; bulk retry
// logic belongs to the Basic FTL, not this layer).
func (n *Nand) WritePages(page, count uint32, buf []byte) (uint32, error) {
	pageSize := n.MemOrg.PageSize + n.MemOrg.OobSize
	var done uint32
	for i := uint32(0); i < count; i++ {
		off := i * pageSize
		if err := n.WritePage(page+i, 0, buf[off:off+pageSize]); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// SetEcc toggles the bound ECC driver, matching spec.md section 4.5's
// set_ecc(enable).
func (n *Nand) SetEcc(enable bool) error {
	if n.ECC == nil || n.ECC.Ops.SetEnable == nil {
		return ufpstatus.New(ufpstatus.Unsupported, "nand.SetEcc: no ECC driver bound")
	}
	return n.ECC.Ops.SetEnable(enable)
}

// ConvertPageFormat transforms page between the chip's raw on-wire layout
// and the canonical vendor-neutral layout via the bound ECC driver's
// ConvertPageLayout hook (spec.md section 4.5's convert_page_format).
func (n *Nand) ConvertPageFormat(page []byte, fromCanonical bool) error {
	if n.ECC == nil || n.ECC.Ops.ConvertPageLayout == nil {
		return nil
	}
	return n.ECC.Ops.ConvertPageLayout(page, fromCanonical)
}

// GeneratePageLayout returns the canonical page layout for this chip,
// preferring the bound ECC driver's layout (spec.md section 4.5's
// generate_page_layout) and falling back to the raw BBM/geometry-only
// layout otherwise.
func (n *Nand) GeneratePageLayout() (catalog.PageLayout, error) {
	if n.ECC != nil && n.ECC.PageLayout != nil {
		return *n.ECC.PageLayout, nil
	}
	return catalog.PageLayout{
		Entries: []catalog.LayoutEntry{
			{Type: catalog.RegionData, Count: n.MemOrg.PageSize},
			{Type: catalog.RegionOobFree, Count: n.MemOrg.OobSize},
		},
	}, nil
}

// FillPageByLayout delegates to catalog.FillPageByLayout using this
// chip's canonical layout.
func (n *Nand) FillPageByLayout(dst, src []byte, flags catalog.FillFlags) error {
	layout, err := n.GeneratePageLayout()
	if err != nil {
		return err
	}
	catalog.FillPageByLayout(dst, src, layout, flags)
	return nil
}

// OtpRead/OtpWrite/OtpLock/OtpLocked delegate to the bound Chip's OTP
// operations (spec.md section 4.5's otp_read/otp_write/otp_lock/otp_locked).
func (n *Nand) OtpRead(index, column uint32, buf []byte) error {
	return n.Chip.OTPRead(index, column, buf)
}

func (n *Nand) OtpWrite(index, column uint32, buf []byte) error {
	return n.Chip.OTPWrite(index, column, buf)
}

func (n *Nand) OtpLock() error {
	return n.Chip.OTPLock()
}

func (n *Nand) OtpLocked() (bool, error) {
	return n.Chip.OTPLocked()
}
