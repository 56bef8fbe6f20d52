package types

import (
	"encoding/json"
	"math"
)

// IconType represents the kind of desktop icon
type IconType string

const (
	IconApp    IconType = "app"
	IconLink   IconType = "link"
	IconFolder IconType = "folder"
)

// Position represents an icon position on the desktop
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Icon represents a desktop icon record
type Icon struct {
	ID    string   `json:"id" yaml:"id"`
	Emoji string   `json:"emoji" yaml:"emoji"`
	Label string   `json:"label" yaml:"label"`
	Type  IconType `json:"type" yaml:"type"`
	X     float64  `json:"x" yaml:"x"`
	Y     float64  `json:"y" yaml:"y"`
	URL   string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// PetSettings configures the desktop pet
type PetSettings struct {
	Enabled bool   `json:"enabled"`
	Type    string `json:"type"`
}

// Settings is the fixed-shape settings slice
type Settings struct {
	Sound            bool        `json:"sound"`
	CRTEffect        bool        `json:"crtEffect"`
	Pet              PetSettings `json:"pet"`
	ScreensaverDelay float64     `json:"screensaverDelay"`
}

// Window is an open window record. App-supplied fields are open-ended, so
// the record stays a map; the store-owned fields have accessors.
type Window map[string]any

// ID returns the window id
func (w Window) ID() string {
	id, _ := w["id"].(string)
	return id
}

// ZIndex returns the stacking order stamped by the store
func (w Window) ZIndex() int {
	return toInt(w["zIndex"])
}

// Minimized reports whether the window is minimized
func (w Window) Minimized() bool {
	v, _ := w["minimized"].(bool)
	return v
}

// Maximized reports whether the window is maximized
func (w Window) Maximized() bool {
	v, _ := w["maximized"].(bool)
	return v
}

// Clone returns a shallow copy of the record
func (w Window) Clone() Window {
	out := make(Window, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(math.Round(n))
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}
