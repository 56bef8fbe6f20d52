package state

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type seed struct {
	Tree         map[string]any `yaml:"tree"`
	DefaultIcons []any          `yaml:"defaultIcons"`
}

// DefaultTree returns a fresh copy of the construction-time tree.
func DefaultTree() map[string]any {
	s := mustSeed()
	return s.Tree
}

// DefaultIcons returns a fresh copy of the built-in icon set, used when no
// icons were ever stored.
func DefaultIcons() []any {
	s := mustSeed()
	return s.DefaultIcons
}

// mustSeed decodes the embedded seed and normalizes it to JSON shape, so
// numbers are float64 like everything read back from durable storage.
func mustSeed() seed {
	var raw seed
	if err := yaml.Unmarshal(defaultsYAML, &raw); err != nil {
		panic(fmt.Sprintf("state: invalid embedded defaults: %v", err))
	}
	tree, err := Normalize(raw.Tree)
	if err != nil {
		panic(fmt.Sprintf("state: invalid embedded defaults: %v", err))
	}
	icons, err := Normalize(raw.DefaultIcons)
	if err != nil {
		panic(fmt.Sprintf("state: invalid embedded defaults: %v", err))
	}
	return seed{Tree: tree.(map[string]any), DefaultIcons: icons.([]any)}
}
