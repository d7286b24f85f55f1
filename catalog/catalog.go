package catalog

import "github.com/hackpascal/ufprog-core-go/internal/ufpstatus"

// idFramingOrder is the order in which the three read-id framings are
// tried (spec.md section 4.3: "try all three read-id framings in the
// order {Dummy, Addr0, Direct}").
var idFramingOrder = []IDType{IDDummy, IDAddr0, IDDirect}

// idRetries is the per-framing retry budget (spec.md section 4.3).
const idRetries = 3

// IDReader abstracts "read N bytes of JEDEC ID using framing t", supplied
// by the SPI-NAND core so this package stays transport-agnostic.
type IDReader func(t IDType) ([]byte, error)

// Catalog owns the built-in vendor list plus any loaded extension-catalog
// vendors. Per spec.md section 9 "Global state", this is the explicit,
// process-independent object a host application constructs and owns,
// replacing the source's process-wide static registry.
type Catalog struct {
	builtins   []*Vendor
	extensions []*Vendor
}

// NewCatalog returns a Catalog pre-populated with every built-in vendor
// (spec.md section 4.3 "Built-in vendor specifics").
func NewCatalog() *Catalog {
	return &Catalog{builtins: BuiltinVendors()}
}

// LoadExtension merges an extension-catalog document (already parsed by
// ParseExtensionCatalog) into this Catalog. Extension vendors are searched
// before built-ins per the vendor resolution order.
func (c *Catalog) LoadExtension(vendors []*Vendor) error {
	seen := make(map[string]bool)
	for _, v := range c.extensions {
		seen[v.ID] = true
	}
	for _, v := range vendors {
		if seen[v.ID] {
			return ufpstatus.New(ufpstatus.AlreadyExist, "catalog.LoadExtension: duplicate vendor id "+v.ID)
		}
		seen[v.ID] = true
		c.extensions = append(c.extensions, v)
	}
	return nil
}

// Vendors returns extension vendors followed by built-in vendors, the
// search order spec.md section 4.3 mandates.
func (c *Catalog) Vendors() []*Vendor {
	all := make([]*Vendor, 0, len(c.extensions)+len(c.builtins))
	all = append(all, c.extensions...)
	all = append(all, c.builtins...)
	return all
}

// Probe implements the full vendor-resolution algorithm of spec.md section
// 4.3: for each of the three framings (in order), read the ID (retrying up
// to idRetries times on I/O error), then search extension vendors before
// built-ins for a matching mfr_id + ID prefix.
func (c *Catalog) Probe(read IDReader) (*Vendor, *Part, error) {
	var lastErr error
	for _, framing := range idFramingOrder {
		var bytes []byte
		var err error
		for attempt := 0; attempt < idRetries; attempt++ {
			bytes, err = read(framing)
			if err == nil {
				break
			}
			lastErr = err
		}
		if err != nil {
			continue
		}

		for _, v := range c.Vendors() {
			if p := v.FindByID(framing, bytes); p != nil {
				return v, p, nil
			}
		}
	}
	if lastErr != nil {
		return nil, nil, ufpstatus.Wrap(ufpstatus.DeviceIoError, "catalog.Probe", lastErr)
	}
	return nil, nil, ufpstatus.New(ufpstatus.FlashPartNotRecognised, "catalog.Probe")
}

// FindByModel searches extension vendors then built-ins for an exact model
// match, for a CLI's "part=<model>" override.
func (c *Catalog) FindByModel(model string) (*Vendor, *Part) {
	for _, v := range c.Vendors() {
		if p := v.FindByModel(model); p != nil {
			return v, p
		}
	}
	return nil, nil
}

// ListParts returns every (vendor, part) pair across extensions and
// built-ins, for the CLI's "list" subcommand.
func (c *Catalog) ListParts() []struct {
	Vendor *Vendor
	Part   *Part
} {
	var out []struct {
		Vendor *Vendor
		Part   *Part
	}
	for _, v := range c.Vendors() {
		for _, p := range v.Parts {
			if p.IsMeta() {
				continue
			}
			out = append(out, struct {
				Vendor *Vendor
				Part   *Part
			}{v, p})
		}
	}
	return out
}
