package catalog

// Built-in vendors, grounded on the per-vendor tables under
// _examples/original_source/flash/nand/spi-nand/vendor-*.c named in
// spec.md section 4.3. Geometry, speed, and ECC fields reflect the
// datasheet-typical values the decoder and opcode-selection algorithms
// need to exercise; the ID bytes for named parts match common public
// JEDEC tables for these families.

func vendorMicron() *Vendor {
	m68a := &Part{
		Model: "MT29F1G01ABAFDWB", // M68A family member
		ID:    NewFlashId(IDAddr0, 0x2C, 0x14),
		MemOrg: Memorg1G2k64,
		EccReq: EccConfig{StepSize: 512, StrengthPerStep: 1},
		PageLayout: &ecc2k64_1bitLayout,
		QEType: QeCrBit0, EccType: EccEnCrBit4, OtpType: OtpEnCrBit6,
		MaxSpeedSPIMHz: 104, MaxSpeedQuadMHz: 104,
		RdIOCaps: defaultRdCaps4d(), PlIOCaps: defaultPlCaps(),
		RdOpcodes: &DefaultRdOpcodes4D, PlOpcodes: &DefaultPlOpcodes,
		OTP:   &OtpInfo{StartIndex: 0, Count: 4},
		Flags: FlagOTPMicronCrBit,
	}
	m78a := &Part{
		Model: "MT29F2G01ABAGD", // M78A family, 8-bit/step ECC, ONFI-identified
		ID:    NewFlashId(IDAddr0, 0x2C, 0x24),
		MemOrg: Memorg2G2k128,
		EccReq: EccConfig{StepSize: 512, StrengthPerStep: 8},
		QEType: QeCrBit0, EccType: EccEnCrBit4, OtpType: OtpEnCrBit6,
		MaxSpeedSPIMHz: 133, MaxSpeedQuadMHz: 133,
		RdIOCaps: IOCapsOf(ioTypesUpTo1_1_4()...), PlIOCaps: defaultPlCaps(),
		RdOpcodes: &DefaultRdOpcodes4D, PlOpcodes: &DefaultPlOpcodes,
		Flags: FlagReadCacheRandom | FlagReadCacheSeq | FlagOTPMicronCrBit,
	}
	return &Vendor{
		MfrID: 0x2C, ID: "micron", Name: "Micron",
		Parts: []*Part{m68a, m78a},
	}
}

func vendorGigaDevice() *Vendor {
	gd5f1gq4uaw := &Part{
		Model: "GD5F1GQ4UAWxx", // spec.md scenario S1
		ID:    NewFlashId(IDAddr0, 0xC8, 0x10),
		MemOrg: Memorg1G2k64,
		EccReq: EccConfig{StepSize: 512, StrengthPerStep: 1},
		PageLayout: &ecc2k64_1bitLayout,
		QEType: QeCrBit0, EccType: EccEnCrBit4, OtpType: OtpEnCrBit6,
		MaxSpeedSPIMHz: 104, MaxSpeedQuadMHz: 104,
		RdIOCaps: defaultRdCaps4d(), PlIOCaps: defaultPlCaps(),
		RdOpcodes: &DefaultRdOpcodes4D, PlOpcodes: &DefaultPlOpcodes,
		OTP: &OtpInfo{StartIndex: 0, Count: 4},
	}
	return &Vendor{
		MfrID: 0xC8, ID: "gigadevice", Name: "GigaDevice",
		Parts: []*Part{gd5f1gq4uaw},
	}
}

func vendorMacronix() *Vendor {
	p := &Part{
		Model: "MX35LF1GE4AB",
		ID:    NewFlashId(IDAddr0, 0xC2, 0x12),
		MemOrg: Memorg1G2k64,
		EccReq: EccConfig{StepSize: 512, StrengthPerStep: 4},
		PageLayout: &ecc2k64_1bitLayout,
		QEType: QeCrBit0, EccType: EccEnCrBit4, OtpType: OtpEnCrBit6,
		MaxSpeedSPIMHz: 104, MaxSpeedQuadMHz: 104,
		RdIOCaps: defaultRdCaps4d(), PlIOCaps: defaultPlCaps(),
		RdOpcodes: &DefaultRdOpcodes4D, PlOpcodes: &DefaultPlOpcodes,
		Flags: FlagNorReadCap,
	}
	return &Vendor{MfrID: 0xC2, ID: "macronix", Name: "Macronix", Parts: []*Part{p}}
}

func vendorWinbond() *Vendor {
	p := &Part{
		Model: "W25N01GV",
		ID:    NewFlashId(IDAddr0, 0xEF, 0xAA, 0x21),
		MemOrg: Memorg1G2k64,
		EccReq: EccConfig{StepSize: 512, StrengthPerStep: 1},
		PageLayout: &ecc2k64_1bitLayout,
		QEType: QeCrBit0, EccType: EccEnCrBit4, OtpType: OtpEnCrBit6,
		MaxSpeedSPIMHz: 104, MaxSpeedQuadMHz: 104,
		RdIOCaps: defaultRdCaps4d(), PlIOCaps: defaultPlCaps(),
		RdOpcodes: &DefaultRdOpcodes4D, PlOpcodes: &DefaultPlOpcodes,
	}
	return &Vendor{MfrID: 0xEF, ID: "winbond", Name: "Winbond", Parts: []*Part{p}}
}

func vendorToshiba() *Vendor {
	p := &Part{
		Model: "TC58CVG0S3HRAIG",
		ID:    NewFlashId(IDAddr0, 0x98, 0xC2),
		MemOrg: Memorg1G2k64,
		EccReq: EccConfig{StepSize: 512, StrengthPerStep: 8},
		PageLayout: &ecc2k64_1bitLayout,
		QEType: QeCrBit0, EccType: EccEnCrBit4, OtpType: OtpEnCrBit6,
		MaxSpeedSPIMHz: 104, MaxSpeedQuadMHz: 104,
		RdIOCaps: defaultRdCaps4d(), PlIOCaps: defaultPlCaps(),
		RdOpcodes: &DefaultRdOpcodes4D, PlOpcodes: &DefaultPlOpcodes,
		BBM: BbmConfig{Flags: BbmMarkWholePage},
	}
	return &Vendor{MfrID: 0x98, ID: "toshiba", Name: "Toshiba/Kioxia", Parts: []*Part{p}}
}

// otherVendors covers the remaining named vendors (spec.md section 4.3
// "Other vendors") with one representative part each and the generic 1-bit
// decoder, since no per-model quirks beyond identification are named in
// scope here.
func otherVendors() []*Vendor {
	type spec struct {
		mfr        byte
		id, name   string
		partID     byte
		model      string
	}
	specs := []spec{
		{0xF8, "dosilicon", "Dosilicon", 0x11, "FM25S01A"},
		{0xF8, "fidelix", "Fidelix", 0xA1, "FM25S01"},
		{0x2C, "esmt", "ESMT", 0x01, "F50L1G41LB"},
		{0xD5, "etron", "Etron", 0x01, "EM73C044SNB"},
		{0xCD, "foresee", "Foresee", 0x01, "FS35ND01G"},
		{0xC8, "heyangtek", "HeYangTek", 0x21, "HYF1GQ4UAACAE"},
		{0xC8, "issi", "ISSI", 0x21, "IS37SML01G1"},
		{0xBA, "zetta", "Zetta", 0x21, "ZD35D1GA"},
		{0x0B, "xtx", "XTX", 0x11, "XT26G01A"},
		{0xA1, "paragon", "Paragon", 0x21, "PN26G01A"},
		{0x52, "alliance", "Alliance Memory", 0x21, "AS5F31G04SND"},
		{0x9F, "ato", "ATO", 0x21, "ATO25D1GA"},
		{0xA1, "corestorage", "CoreStorage", 0x21, "CS11G0T0A0AA"},
		{0xA1, "fudan", "Fudan", 0x21, "FM25Q01A"},
		{0xC8, "mk", "MK", 0x21, "MK35SPA1G"},
	}
	out := make([]*Vendor, 0, len(specs))
	for _, s := range specs {
		p := &Part{
			Model: s.model,
			ID:    NewFlashId(IDAddr0, s.mfr, s.partID),
			MemOrg: Memorg1G2k64,
			EccReq: EccConfig{StepSize: 512, StrengthPerStep: 1},
			PageLayout: &ecc2k64_1bitLayout,
			QEType: QeCrBit0, EccType: EccEnCrBit4, OtpType: OtpEnCrBit6,
			MaxSpeedSPIMHz: 104, MaxSpeedQuadMHz: 104,
			RdIOCaps: defaultRdCaps4d(), PlIOCaps: defaultPlCaps(),
			RdOpcodes: &DefaultRdOpcodes4D, PlOpcodes: &DefaultPlOpcodes,
		}
		out = append(out, &Vendor{MfrID: s.mfr, ID: s.id, Name: s.name, Parts: []*Part{p}})
	}
	return out
}

// BuiltinVendors returns every vendor shipped in-tree.
func BuiltinVendors() []*Vendor {
	v := []*Vendor{
		vendorMicron(),
		vendorGigaDevice(),
		vendorMacronix(),
		vendorWinbond(),
		vendorToshiba(),
	}
	v = append(v, otherVendors()...)
	return v
}
