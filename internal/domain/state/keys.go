package state

import (
	"github.com/bytedance/sonic"

	"github.com/morroware/retrosv2-sub000/internal/shared/types"
)

// Getter reads by path. Store and Batch implement it.
type Getter interface {
	Get(path string) (any, bool)
}

// Copier reads a deep copy by path. Store implements it; Key.Get prefers
// it so decoding never walks the live tree.
type Copier interface {
	GetCopy(path string) (any, bool)
}

// Setter writes by path. Store and Batch implement it.
type Setter interface {
	Set(path string, value any, persist bool) error
}

// Key is a typed accessor for a fixed path.
type Key[T any] struct {
	Path string
}

// Get decodes the value at the key's path. It reports false when the path
// is missing, holds nil, or does not decode into T.
func (k Key[T]) Get(g Getter) (T, bool) {
	var zero T
	var v any
	var ok bool
	if c, isCopier := g.(Copier); isCopier {
		v, ok = c.GetCopy(k.Path)
	} else {
		v, ok = g.Get(k.Path)
	}
	if !ok || v == nil {
		return zero, false
	}
	out, err := Decode[T](v)
	if err != nil {
		return zero, false
	}
	return out, true
}

// Set stores value at the key's path in its JSON shape.
func (k Key[T]) Set(s Setter, value T, persist bool) error {
	v, err := Normalize(value)
	if err != nil {
		return err
	}
	return s.Set(k.Path, v, persist)
}

// Decode converts a JSON-shaped value into T.
func Decode[T any](v any) (T, error) {
	if out, ok := v.(T); ok {
		return out, nil
	}
	var out T
	data, err := sonic.Marshal(v)
	if err != nil {
		return out, err
	}
	err = sonic.Unmarshal(data, &out)
	return out, err
}

// Keys for the desktop's well-known slices. Dynamic paths such as
// filePositions entries stay available through Store.Get and Store.Set.
var (
	Icons         = Key[[]types.Icon]{Path: "icons"}
	FilePositions = Key[map[string]types.Position]{Path: "filePositions"}
	Windows       = Key[[]types.Window]{Path: "windows"}
	MenuItems     = Key[[]map[string]any]{Path: "menuItems"}
	RecycledItems = Key[[]map[string]any]{Path: "recycledItems"}
	Achievements  = Key[[]string]{Path: "achievements"}

	Settings         = Key[types.Settings]{Path: "settings"}
	SoundEnabled     = Key[bool]{Path: "settings.sound"}
	CRTEffect        = Key[bool]{Path: "settings.crtEffect"}
	PetEnabled       = Key[bool]{Path: "settings.pet.enabled"}
	PetType          = Key[string]{Path: "settings.pet.type"}
	ScreensaverDelay = Key[float64]{Path: "settings.screensaverDelay"}

	IsAdmin    = Key[bool]{Path: "user.isAdmin"}
	HasVisited = Key[bool]{Path: "user.hasVisited"}

	ActiveWindow  = Key[string]{Path: "ui.activeWindow"}
	StartMenuOpen = Key[bool]{Path: "ui.startMenuOpen"}
)
