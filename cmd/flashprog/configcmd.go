package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/hackpascal/ufprog-core-go/catalog"
	"github.com/hackpascal/ufprog-core-go/internal/progconfig"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// idsTomlPart is one row of the starter spi-nand-ids.toml reference this
// command writes alongside the JSON program config; it is a convenience
// export for a user to read or hand-edit, not something flashprog parses
// back in (the extension catalog stays JSON, per the persisted-state
// config format).
type idsTomlPart struct {
	Vendor string `toml:"vendor"`
	Model  string `toml:"model"`
	MfrID  string `toml:"mfr_id"`
}

type idsTomlDoc struct {
	Parts []idsTomlPart `toml:"parts"`
}

// cmdConfig implements "flashprog config init", writing the program's
// default JSON config path (if absent) and a starter TOML listing of every
// built-in part's JEDEC manufacturer ID, for operators who prefer to keep a
// local cheat sheet of known IDs next to their config directory.
func cmdConfig(cfg *progconfig.Config, args []string) {
	if len(args) < 1 || args[0] != "init" {
		fail(ufpstatus.New(ufpstatus.InvalidParameter, "flashprog config: expected \"init\""))
	}

	if err := cfg.Save(); err != nil {
		fail(err)
	}

	path, err := progconfig.DefaultPath()
	if err != nil {
		fail(err)
	}
	tomlPath := filepath.Join(filepath.Dir(path), "spi-nand-ids.toml")

	var doc idsTomlDoc
	cat := catalog.NewCatalog()
	for _, e := range cat.ListParts() {
		doc.Parts = append(doc.Parts, idsTomlPart{
			Vendor: e.Vendor.Name,
			Model:  e.Part.Model,
			MfrID:  fmt.Sprintf("0x%02X", e.Vendor.MfrID),
		})
	}

	f, err := os.Create(tomlPath)
	if err != nil {
		fail(ufpstatus.Wrap(ufpstatus.DeviceIoError, "flashprog config init", err))
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		fail(ufpstatus.Wrap(ufpstatus.DeviceIoError, "flashprog config init", err))
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Printf("Wrote %s (%d parts)\n", tomlPath, len(doc.Parts))
}
