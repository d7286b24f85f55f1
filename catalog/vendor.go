package catalog

// VendorOps holds optional vendor-wide setup hooks (spec.md section 4.3:
// "optional vendor_ops{init, pp_post_init}").
type VendorOps struct {
	Init        func(ctx interface{}) error
	PpPostInit  func(ctx interface{}, onfiSignature bool) error
}

// Vendor is a static record contributed by one flash vendor (spec.md
// section 4.3): manufacturer ID byte, string id, printable name, its parts,
// and the defaults applied when a part omits a field.
type Vendor struct {
	MfrID uint8
	ID    string
	Name  string

	Parts []*Part

	Ops             *VendorOps
	DefaultPartOps  *PartOps
	DefaultOTPOps   *OtpOps
}

// OtpOps is the NAND-layer OTP hook table a vendor or part may supply
// (spec.md section 3 "nand_flash_otp_ops").
type OtpOps struct {
	Read   func(ctx interface{}, index, column uint32, data []byte) error
	Write  func(ctx interface{}, index, column uint32, data []byte) error
	Lock   func(ctx interface{}) error
	Locked func(ctx interface{}) (bool, error)
}

// FindByID searches this vendor's parts for one whose stored FlashId
// prefix matches read, per spec.md section 4.3's vendor resolution order.
func (v *Vendor) FindByID(idType IDType, read []byte) *Part {
	if len(read) == 0 || read[0] != v.MfrID {
		return nil
	}
	for _, p := range v.Parts {
		if p.IsMeta() {
			continue
		}
		if p.ID.Type == idType && p.ID.Matches(read) {
			return p
		}
	}
	return nil
}

// FindByModel looks up a part by its exact model name (no alias search).
func (v *Vendor) FindByModel(model string) *Part {
	for _, p := range v.Parts {
		if p.Model == model {
			return p
		}
	}
	return nil
}
