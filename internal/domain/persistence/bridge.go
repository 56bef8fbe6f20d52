package persistence

import (
	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/domain/state"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/events"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/kv"
)

type mapping struct {
	path string
	key  string
}

// table is the complete set of durable paths, in hydration order.
var table = []mapping{
	{"icons", "desktopIcons"},
	{"filePositions", "filePositions"},
	{"menuItems", "menuItems"},
	{"recycledItems", "recycledItems"},
	{"achievements", "achievements"},
	{"settings.sound", "soundEnabled"},
	{"settings.crtEffect", "crtEffect"},
	{"settings.pet.enabled", "petEnabled"},
	{"settings.pet.type", "petType"},
	{"user.hasVisited", "hasVisited"},
}

var byPath = func() map[string]string {
	m := make(map[string]string, len(table))
	for _, e := range table {
		m[e.path] = e.key
	}
	return m
}()

// Key returns the durable key for path.
func Key(path string) (string, bool) {
	key, ok := byPath[path]
	return key, ok
}

// Paths returns every durable path in table order.
func Paths() []string {
	out := make([]string, len(table))
	for i, e := range table {
		out[i] = e.path
	}
	return out
}

// Bridge connects the state tree to the guarded durable store.
type Bridge struct {
	kv      *kv.Guarded
	emitter state.Emitter
	logger  *zap.Logger
}

// NewBridge creates a bridge. emitter may be nil.
func NewBridge(store *kv.Guarded, emitter state.Emitter, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{kv: store, emitter: emitter, logger: logger}
}

// KV returns the guarded store behind the bridge.
func (b *Bridge) KV() *kv.Guarded {
	return b.kv
}

// Persist writes value under the key mapped to path. Unmapped paths are
// ignored and report false.
func (b *Bridge) Persist(path string, value any) bool {
	key, ok := Key(path)
	if !ok {
		return false
	}
	return b.kv.Set(key, value)
}

// Hydrate overlays every stored durable value onto target and returns how
// many were applied. Icons fall back to the built-in set when absent.
func (b *Bridge) Hydrate(target state.Setter) int {
	applied := 0
	for _, e := range table {
		value, ok := b.kv.Lookup(e.key)
		if !ok {
			if e.path != "icons" {
				continue
			}
			value = state.DefaultIcons()
		}
		if err := target.Set(e.path, value, false); err != nil {
			b.logger.Warn("hydration skipped path",
				zap.String("path", e.path),
				zap.String("key", e.key),
				zap.Error(err),
			)
			continue
		}
		applied++
	}
	b.logger.Debug("state hydrated", zap.Int("applied", applied))
	return applied
}

// Initial builds the construction-time tree with durable values overlaid.
func (b *Bridge) Initial() map[string]any {
	scratch := state.New(state.DefaultTree())
	b.Hydrate(scratch)
	return scratch.Snapshot()
}

// Ops turns the persisting writes of a batch into durable operations.
// Writes to unmapped paths are dropped.
func Ops(writes []state.Write) []kv.Op {
	var ops []kv.Op
	for _, w := range writes {
		if !w.Persist {
			continue
		}
		if key, ok := Key(w.Path); ok {
			ops = append(ops, kv.Set(key, w.Value))
		}
	}
	return ops
}

// Reset clears every durable key and rebuilds the tree from defaults plus
// whatever is left in storage, which after a successful clear is nothing.
// Subscribers survive and see every top-level slice change. It is
// unconditional; confirmation belongs to the caller.
func (b *Bridge) Reset(store *state.Store) {
	if !b.kv.Clear() {
		b.logger.Warn("durable clear failed during reset")
	}
	store.Replace(b.Initial())
	b.logger.Info("state reset")
	if b.emitter != nil {
		b.emitter.Emit(events.TopicStateReset, nil)
	}
}
