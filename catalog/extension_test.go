package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseExtensionCatalog reproduces scenario S2: an extension-catalog
// JSON document defining one vendor and one part, referencing a named
// memory-organization and page-layout table, parses into a loadable Vendor
// whose part Catalog.FindByModel then finds.
func TestParseExtensionCatalog(t *testing.T) {
	doc := []byte(`{
		"memory-organizations": {
			"geom-1g-2k64": {
				"page-size": 2048, "oob-size": 64,
				"pages-per-block": 64, "blocks-per-lun": 1024
			}
		},
		"page-layouts": {
			"layout-a": [
				{"type": "data", "count": 2048},
				{"type": "oob-free", "count": 16},
				{"type": "ecc-parity", "count": 48}
			]
		},
		"vendors": {
			"acme": {
				"mfr-id": 231,
				"name": "Acme",
				"parts": {
					"ACME1G01": {
						"id": ["0xE7", "0x11"],
						"id-type": "with-address-byte",
						"qe-type": "cr-bit0",
						"ecc-en-type": "cr-bit4",
						"max-speed-spi-mhz": 104,
						"memory-organization": "geom-1g-2k64",
						"page-layout": "layout-a",
						"ecc-requirement": {"step-size": 512, "strength-per-step": 1}
					}
				}
			}
		}
	}`)

	vendors, err := ParseExtensionCatalog(doc)
	require.NoError(t, err)
	require.Len(t, vendors, 1)

	v := vendors[0]
	assert.Equal(t, "acme", v.ID)
	assert.EqualValues(t, 231, v.MfrID)
	require.Len(t, v.Parts, 1)

	p := v.Parts[0]
	assert.Equal(t, "ACME1G01", p.Model)
	assert.EqualValues(t, 2048, p.MemOrg.PageSize)
	assert.EqualValues(t, 64, p.MemOrg.OobSize)
	require.NotNil(t, p.PageLayout)
	assert.Len(t, p.PageLayout.Entries, 3)

	cat := NewCatalog()
	require.NoError(t, cat.LoadExtension(vendors))

	gotV, gotP := cat.FindByModel(p.Model)
	assert.Same(t, v, gotV)
	assert.Same(t, p, gotP)
}

func TestParseExtensionCatalogDuplicateVendorRejected(t *testing.T) {
	doc := []byte(`{"vendors":{"acme":{"mfr-id":1,"name":"A","parts":{"P1":{"id":["0x01","0x02"],"id-type":"direct","memory-organization":{"page-size":2048,"oob-size":64,"pages-per-block":64,"blocks-per-lun":1024}}}}}}`)

	vendors, err := ParseExtensionCatalog(doc)
	require.NoError(t, err)

	cat := NewCatalog()
	require.NoError(t, cat.LoadExtension(vendors))
	assert.Error(t, cat.LoadExtension(vendors))
}

func TestParseExtensionCatalogInvalidIDType(t *testing.T) {
	doc := []byte(`{"vendors":{"acme":{"mfr-id":1,"name":"A","parts":{"P1":{"id":["0x01"],"id-type":"bogus","memory-organization":{"page-size":2048,"oob-size":64,"pages-per-block":64,"blocks-per-lun":1024}}}}}}`)
	_, err := ParseExtensionCatalog(doc)
	assert.Error(t, err)
}
