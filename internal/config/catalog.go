package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/WishEngine/internal/fortune"
)

//go:embed paradise.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Version  int         `yaml:"version"`
	Machines []string    `yaml:"machines"`
	Scenes   []sceneFile `yaml:"scenes"`
	MissNum  struct {
		Count []string `yaml:"count"`
	} `yaml:"miss_num"`
}

type sceneFile struct {
	ID             string   `yaml:"id"`
	Label          string   `yaml:"label"`
	FoodCategories []string `yaml:"food_categories"`
}

// LoadCatalog reads and validates a paradise.yaml catalog.
func LoadCatalog(path string) (*fortune.Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := ParseCatalog(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *fortune.Catalog {
	cat, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic("config: embedded catalog is invalid: " + err.Error())
	}
	return cat
}

// ParseCatalog decodes catalog YAML and checks the draw invariants.
func ParseCatalog(b []byte) (*fortune.Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported catalog version: %d", f.Version)
	}

	cat := &fortune.Catalog{
		Machines:    f.Machines,
		MissBuckets: f.MissNum.Count,
		Scenes:      make([]fortune.Scene, 0, len(f.Scenes)),
	}
	for _, s := range f.Scenes {
		cat.Scenes = append(cat.Scenes, fortune.Scene{
			ID:             s.ID,
			Label:          s.Label,
			FoodCategories: s.FoodCategories,
		})
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}
