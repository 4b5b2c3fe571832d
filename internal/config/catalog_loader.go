package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog_default.yaml
var defaultCatalogYAML []byte

// CatalogFile is the on-disk shape of the roster catalog.
type CatalogFile struct {
	Teams   []string `yaml:"teams"`
	Venues  []string `yaml:"venues"`
	Players []string `yaml:"players"`
}

// LoadCatalogFile reads the roster catalog from path. An empty path returns
// the catalog bundled with the binary.
func LoadCatalogFile(path string) (CatalogFile, error) {
	data := defaultCatalogYAML
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return CatalogFile{}, fmt.Errorf("read catalog: %w", err)
		}
		data = raw
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (CatalogFile, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return CatalogFile{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cf.Teams) == 0 || len(cf.Venues) == 0 || len(cf.Players) == 0 {
		return CatalogFile{}, fmt.Errorf("parse catalog: teams, venues and players are all required")
	}
	return cf, nil
}
