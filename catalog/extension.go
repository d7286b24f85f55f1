package catalog

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
	"github.com/hackpascal/ufprog-core-go/ioop"
)

// Extension-catalog JSON schema (spec.md section 4.3): a document keyed by
// /vendors/<vendor-id>, each with mfr-id, name, parts, plus optional
// top-level io-opcodes/page-layouts/memory-organizations tables that parts
// may reference by string name.

type extDoc struct {
	Vendors              map[string]extVendor  `json:"vendors"`
	IOOpcodes            map[string]extOpTable `json:"io-opcodes,omitempty"`
	PageLayouts          map[string][]extLayoutEntry `json:"page-layouts,omitempty"`
	MemoryOrganizations  map[string]extMemorg  `json:"memory-organizations,omitempty"`
}

type extVendor struct {
	MfrID int                  `json:"mfr-id"`
	Name  string               `json:"name"`
	Parts map[string]extPart   `json:"parts"`
}

type extMemorg struct {
	PageSize      uint32 `json:"page-size"`
	OobSize       uint32 `json:"oob-size"`
	PagesPerBlock uint32 `json:"pages-per-block"`
	BlocksPerLun  uint32 `json:"blocks-per-lun"`
	LunsPerCS     uint32 `json:"luns-per-cs"`
	PlanesPerLun  uint32 `json:"planes-per-lun"`
}

type extLayoutEntry struct {
	Type  string `json:"type"`
	Count uint32 `json:"count"`
}

type extOpEntry struct {
	Opcode       int `json:"opcode"`
	DummyCycles  int `json:"dummy-cycles"`
	AddressBytes int `json:"address-bytes"`
}

type extOpTable map[string]extOpEntry // keyed by IO type name, e.g. "1-1-4"

type extEccReq struct {
	StepSize        uint32 `json:"step-size"`
	StrengthPerStep uint32 `json:"strength-per-step"`
}

type extOtp struct {
	StartIndex uint32 `json:"start-index"`
	Count      uint32 `json:"count"`
}

type extAlias struct {
	Vendor string `json:"vendor,omitempty"`
	Model  string `json:"model"`
}

type extPart struct {
	ID               []string  `json:"id"`
	Flags            []string  `json:"flags,omitempty"`
	VendorFlags      []string  `json:"vendor-flags,omitempty"`
	IDType           string    `json:"id-type"`
	QEType           string    `json:"qe-type,omitempty"`
	EccEnType        string    `json:"ecc-en-type,omitempty"`
	OtpCtrlType      string    `json:"otp-ctrl-type,omitempty"`
	NumberOfPrograms uint32    `json:"number-of-programs,omitempty"`
	MaxSpeedSPIMHz   uint32    `json:"max-speed-spi-mhz,omitempty"`
	MaxSpeedDualMHz  uint32    `json:"max-speed-dual-mhz,omitempty"`
	MaxSpeedQuadMHz  uint32    `json:"max-speed-quad-mhz,omitempty"`
	ReadIOCaps       []string  `json:"read-io-caps,omitempty"`
	PlIOCaps         []string  `json:"pl-io-caps,omitempty"`
	ReadOpcodes      json.RawMessage `json:"read-opcodes,omitempty"`
	PlOpcodes        json.RawMessage `json:"pl-opcodes,omitempty"`
	PageLayout       json.RawMessage `json:"page-layout,omitempty"`
	MemoryOrg        json.RawMessage `json:"memory-organization"`
	EccRequirement   extEccReq `json:"ecc-requirement,omitempty"`
	Otp              *extOtp   `json:"otp,omitempty"`
	Alias            []extAlias `json:"alias,omitempty"`
	Model            string    `json:"-"` // set from the parts-map key by ParseExtensionCatalog
}

// ParseExtensionCatalog parses an extension-catalog JSON document (spec.md
// section 4.3 / section 6 "Extension catalog file") into vendors ready for
// Catalog.LoadExtension. A missing file is not an error at the caller
// level; this function only parses bytes already read.
func ParseExtensionCatalog(data []byte) ([]*Vendor, error) {
	var doc extDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ufpstatus.Wrap(ufpstatus.JsonTypeInvalid, "catalog.ParseExtensionCatalog", err)
	}

	var vendors []*Vendor
	for vendorID, ev := range doc.Vendors {
		if ev.MfrID < 1 || ev.MfrID > 0xFF {
			return nil, ufpstatus.New(ufpstatus.JsonDataInvalid, "catalog.ParseExtensionCatalog: mfr-id out of range for vendor "+vendorID)
		}
		v := &Vendor{MfrID: uint8(ev.MfrID), ID: vendorID, Name: ev.Name}

		for model, ep := range ev.Parts {
			ep.Model = model
			p, err := parseExtPart(ep, doc)
			if err != nil {
				return nil, err
			}
			v.Parts = append(v.Parts, p)
		}
		vendors = append(vendors, v)
	}
	return vendors, nil
}

func parseExtPart(ep extPart, doc extDoc) (*Part, error) {
	if len(ep.ID) == 0 {
		return nil, ufpstatus.New(ufpstatus.JsonDataInvalid, "catalog: part missing id")
	}
	idBytes := make([]byte, 0, len(ep.ID))
	for _, h := range ep.ID {
		b, err := hex.DecodeString(trimHexPrefix(h))
		if err != nil || len(b) != 1 {
			return nil, ufpstatus.New(ufpstatus.JsonDataInvalid, "catalog: invalid id byte "+h)
		}
		idBytes = append(idBytes, b[0])
	}

	idType, err := parseIDType(ep.IDType)
	if err != nil {
		return nil, err
	}

	p := &Part{
		Model: ep.Model,
		ID:    NewFlashId(idType, idBytes...),
		NOps:  ep.NumberOfPrograms,
		QEType: parseQEType(ep.QEType),
		EccType: parseEccEnType(ep.EccEnType),
		OtpType: parseOtpEnType(ep.OtpCtrlType),
		MaxSpeedSPIMHz: ep.MaxSpeedSPIMHz,
		MaxSpeedDualMHz: ep.MaxSpeedDualMHz,
		MaxSpeedQuadMHz: ep.MaxSpeedQuadMHz,
		EccReq: EccConfig{StepSize: ep.EccRequirement.StepSize, StrengthPerStep: ep.EccRequirement.StrengthPerStep},
	}
	for _, f := range ep.Flags {
		p.Flags |= parseFlag(f)
	}
	if ep.Otp != nil {
		p.OTP = &OtpInfo{StartIndex: ep.Otp.StartIndex, Count: ep.Otp.Count}
	}
	for _, a := range ep.Alias {
		p.Alias = append(p.Alias, AliasItem{Vendor: a.Vendor, Model: a.Model})
	}

	caps, err := parseIOCapsList(ep.ReadIOCaps)
	if err != nil {
		return nil, err
	}
	p.RdIOCaps = caps
	caps, err = parseIOCapsList(ep.PlIOCaps)
	if err != nil {
		return nil, err
	}
	p.PlIOCaps = caps

	if len(ep.ReadOpcodes) > 0 {
		table, err := resolveOpTable(ep.ReadOpcodes, doc.IOOpcodes)
		if err != nil {
			return nil, err
		}
		p.RdOpcodes = table
	}
	if len(ep.PlOpcodes) > 0 {
		table, err := resolveOpTable(ep.PlOpcodes, doc.IOOpcodes)
		if err != nil {
			return nil, err
		}
		p.PlOpcodes = table
	}

	if len(ep.MemoryOrg) > 0 {
		mo, err := resolveMemorg(ep.MemoryOrg, doc.MemoryOrganizations)
		if err != nil {
			return nil, err
		}
		if err := mo.Bind(); err != nil {
			return nil, err
		}
		p.MemOrg = mo
	}

	if len(ep.PageLayout) > 0 {
		layout, err := resolvePageLayout(ep.PageLayout, doc.PageLayouts)
		if err != nil {
			return nil, err
		}
		p.PageLayout = layout
	}

	return p, nil
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		return s[2:]
	}
	return s
}

func parseIDType(s string) (IDType, error) {
	switch s {
	case "with-dummy-byte":
		return IDDummy, nil
	case "with-address-byte":
		return IDAddr0, nil
	case "direct":
		return IDDirect, nil
	default:
		return 0, ufpstatus.New(ufpstatus.JsonDataInvalid, "catalog: invalid id-type "+s)
	}
}

func parseQEType(s string) QuadEnableType {
	switch s {
	case "dont-care":
		return QeDontCare
	case "cr-bit0":
		return QeCrBit0
	default:
		return QeUnknown
	}
}

func parseEccEnType(s string) EccEnableType {
	switch s {
	case "unsupported":
		return EccEnUnsupported
	case "cr-bit4":
		return EccEnCrBit4
	default:
		return EccEnUnknown
	}
}

func parseOtpEnType(s string) OtpEnableType {
	switch s {
	case "unsupported":
		return OtpEnUnsupported
	case "cr-bit6":
		return OtpEnCrBit6
	default:
		return OtpEnUnknown
	}
}

func parseFlag(s string) Flags {
	switch s {
	case "no-pp":
		return FlagNoPP
	case "generic-uid":
		return FlagGenericUID
	case "extended-ecc-bfr-8b":
		return FlagExtendedEccBfr8b
	case "read-cache-random":
		return FlagReadCacheRandom
	case "read-cache-seq":
		return FlagReadCacheSeq
	case "nor-read-cap":
		return FlagNorReadCap
	case "continuous-read":
		return FlagContinuousRead
	case "bbm-2nd-page":
		return FlagBbm2ndPage
	case "no-op":
		return FlagNoOp
	case "rnd-page-write":
		return FlagRndPageWrite
	default:
		return 0
	}
}

func parseIOCapsList(names []string) (IOCaps, error) {
	var c IOCaps
	for _, n := range names {
		t, err := ioop.NameToType(n)
		if err != nil {
			return 0, ufpstatus.Wrap(ufpstatus.JsonDataInvalid, "catalog: invalid io type", err)
		}
		c |= 1 << uint(t)
	}
	return c, nil
}

func resolveOpTable(raw json.RawMessage, named map[string]extOpTable) (*OpcodeTable, error) {
	var ref string
	if err := json.Unmarshal(raw, &ref); err == nil {
		t, ok := named[ref]
		if !ok {
			return nil, ufpstatus.New(ufpstatus.JsonDataInvalid, "catalog: unknown io-opcodes reference "+ref)
		}
		return buildOpTable(t)
	}
	var inline extOpTable
	if err := json.Unmarshal(raw, &inline); err != nil {
		return nil, ufpstatus.Wrap(ufpstatus.JsonTypeInvalid, "catalog: invalid opcode table", err)
	}
	return buildOpTable(inline)
}

func buildOpTable(t extOpTable) (*OpcodeTable, error) {
	var out OpcodeTable
	for name, e := range t {
		ioType, err := ioop.NameToType(name)
		if err != nil {
			return nil, ufpstatus.Wrap(ufpstatus.JsonDataInvalid, "catalog: invalid io type in opcode table", err)
		}
		out[ioType] = IoOpcode{Opcode: byte(e.Opcode), NAddrs: uint8(e.AddressBytes), NDummy: uint8(e.DummyCycles)}
	}
	return &out, nil
}

func resolveMemorg(raw json.RawMessage, named map[string]extMemorg) (MemoryOrg, error) {
	var ref string
	if err := json.Unmarshal(raw, &ref); err == nil {
		m, ok := named[ref]
		if !ok {
			return MemoryOrg{}, ufpstatus.New(ufpstatus.JsonDataInvalid, "catalog: unknown memory-organization reference "+ref)
		}
		return toMemorg(m), nil
	}
	var inline extMemorg
	if err := json.Unmarshal(raw, &inline); err != nil {
		return MemoryOrg{}, ufpstatus.Wrap(ufpstatus.JsonTypeInvalid, "catalog: invalid memory-organization", err)
	}
	return toMemorg(inline), nil
}

func toMemorg(m extMemorg) MemoryOrg {
	lpc := m.LunsPerCS
	if lpc == 0 {
		lpc = 1
	}
	ppl := m.PlanesPerLun
	if ppl == 0 {
		ppl = 1
	}
	return MemoryOrg{
		PageSize: m.PageSize, OobSize: m.OobSize, PagesPerBlock: m.PagesPerBlock,
		BlocksPerLun: m.BlocksPerLun, LunsPerCS: lpc, NumChips: 1, PlanesPerLun: ppl,
	}
}

func resolvePageLayout(raw json.RawMessage, named map[string][]extLayoutEntry) (*PageLayout, error) {
	var ref string
	if err := json.Unmarshal(raw, &ref); err == nil {
		entries, ok := named[ref]
		if !ok {
			return nil, ufpstatus.New(ufpstatus.JsonDataInvalid, "catalog: unknown page-layout reference "+ref)
		}
		return buildLayout(entries)
	}
	var inline []extLayoutEntry
	if err := json.Unmarshal(raw, &inline); err != nil {
		return nil, ufpstatus.Wrap(ufpstatus.JsonTypeInvalid, "catalog: invalid page-layout", err)
	}
	return buildLayout(inline)
}

func buildLayout(entries []extLayoutEntry) (*PageLayout, error) {
	l := &PageLayout{}
	for _, e := range entries {
		t, err := parseRegionType(e.Type)
		if err != nil {
			return nil, err
		}
		l.Entries = append(l.Entries, LayoutEntry{Type: t, Count: e.Count})
	}
	return l, nil
}

func parseRegionType(s string) (RegionType, error) {
	switch s {
	case "unused":
		return RegionUnused, nil
	case "data":
		return RegionData, nil
	case "oob-data":
		return RegionOobData, nil
	case "oob-free":
		return RegionOobFree, nil
	case "ecc-parity":
		return RegionEccParity, nil
	case "marker":
		return RegionMarker, nil
	default:
		return 0, ufpstatus.New(ufpstatus.JsonDataInvalid, fmt.Sprintf("catalog: invalid page-layout region type %q", s))
	}
}
