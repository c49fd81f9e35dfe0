package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/richinex/slidesmith/deck"
)

// LoadLayouts reads a YAML layout map such as
//
//	cover: 1
//	table_of_contents: 2
//	section: 3
//	content: 4
//	closing: 5
//	fallback: 1
//
// Keys left out keep their defaults. An empty path returns the defaults.
func LoadLayouts(path string) (deck.LayoutMap, error) {
	layouts := deck.DefaultLayoutMap()
	if path == "" {
		return layouts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return layouts, fmt.Errorf("read layout map %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &layouts); err != nil {
		return deck.DefaultLayoutMap(), fmt.Errorf("parse layout map %s: %w", path, err)
	}
	return layouts, nil
}
