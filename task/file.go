package task

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidPreset = errors.New("invalid task preset")

type presetFile struct {
	Tasks []presetEntry `yaml:"tasks"`
}

type presetEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Models      []string `yaml:"models"`
	Keywords    []string `yaml:"keywords"`
	All         bool     `yaml:"all"`
}

// Load reads presets from a YAML file. The file replaces the built-in list.
// An empty path or a missing file yields Builtin().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Builtin(), nil
		}
		return nil, fmt.Errorf("read task presets: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML preset document.
func Parse(data []byte) (*Catalog, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode task presets: %w", err)
	}

	seen := make(map[string]bool, len(f.Tasks))
	presets := make([]Preset, 0, len(f.Tasks))
	for i, e := range f.Tasks {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidPreset, i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidPreset, e.Name)
		}
		seen[e.Name] = true

		var m Matcher
		switch {
		case e.All:
			m = All()
		case len(e.Models) > 0 || len(e.Keywords) > 0:
			m = Any(IDs(e.Models...), Keywords(e.Keywords...))
		default:
			return nil, fmt.Errorf("%w: %q matches no models", ErrInvalidPreset, e.Name)
		}
		presets = append(presets, Preset{Name: e.Name, Description: e.Description, Match: m})
	}
	return NewCatalog(presets...), nil
}
