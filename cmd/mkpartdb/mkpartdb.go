// Built-in parts catalog to YAML export tool, the domain analogue of the
// teacher's drivedb.h-to-YAML converter.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/hackpascal/ufprog-core-go/catalog"
)

type yamlPart struct {
	Vendor     string `yaml:"vendor"`
	Model      string `yaml:"model"`
	PageSize   uint32 `yaml:"page_size"`
	OobSize    uint32 `yaml:"oob_size"`
	PageCount  uint64 `yaml:"page_count"`
	MaxSpeed   uint32 `yaml:"max_speed_spi_mhz"`
	EccStep    uint32 `yaml:"ecc_step_size,omitempty"`
	EccStrength uint32 `yaml:"ecc_strength_per_step,omitempty"`
}

type yamlDb struct {
	Parts []yamlPart `yaml:"parts"`
}

func main() {
	outFilename := flag.String("out", "partdb.yaml", "Output .yaml filename")
	flag.Parse()

	cat := catalog.NewCatalog()
	var db yamlDb

	for _, e := range cat.ListParts() {
		db.Parts = append(db.Parts, yamlPart{
			Vendor:      e.Vendor.Name,
			Model:       e.Part.Model,
			PageSize:    e.Part.MemOrg.PageSize,
			OobSize:     e.Part.MemOrg.OobSize,
			PageCount:   e.Part.MemOrg.PageCount,
			MaxSpeed:    e.Part.MaxSpeedSPIMHz,
			EccStep:     e.Part.EccReq.StepSize,
			EccStrength: e.Part.EccReq.StrengthPerStep,
		})
	}

	destFile, err := os.Create(*outFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create output: %v\n", err)
		os.Exit(1)
	}
	defer destFile.Close()

	destFile.WriteString("# This file was generated from the built-in SPI-NAND parts catalog.\n")

	enc := yaml.NewEncoder(destFile)
	if err := enc.Encode(db); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding yaml: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %d parts to %s\n", len(db.Parts), *outFilename)
}
