package snapshot

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/domain/persistence"
	"github.com/morroware/retrosv2-sub000/internal/domain/state"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/events"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/kv"
)

type warnings struct {
	list []string
}

func (w *warnings) addf(format string, args ...any) {
	w.list = append(w.list, fmt.Sprintf(format, args...))
}

type route int

const (
	routeInvalid route = iota
	routeComplete
	routeLegacy
)

// routeOf decides how a document is imported. Untagged documents go to the
// legacy adapter only when they carry the old top-level icons or settings.
func routeOf(doc map[string]any) route {
	if meta, ok := doc["_meta"].(map[string]any); ok {
		switch meta["type"] {
		case TypeComplete:
			return routeComplete
		case TypeLegacy:
			return routeLegacy
		}
	}
	if _, ok := doc["icons"]; ok {
		return routeLegacy
	}
	if _, ok := doc["settings"]; ok {
		return routeLegacy
	}
	return routeInvalid
}

// ImportComplete restores a snapshot. data may be a *Snapshot, a decoded
// JSON document or anything that encodes to one. The live tree and the
// durable store are either fully updated or left untouched.
func (s *Service) ImportComplete(data any) ImportResult {
	doc, ok := toDocument(data)
	if !ok {
		return s.finish("invalid", ImportResult{Error: ErrInvalidFormat})
	}

	switch routeOf(doc) {
	case routeComplete:
		return s.finish("complete", s.guard(func(w *warnings) (*Meta, error) {
			return s.applyComplete(doc, w)
		}))
	case routeLegacy:
		result := s.guard(func(w *warnings) (*Meta, error) {
			return nil, s.applyLegacy(doc, w)
		})
		result.Legacy = result.Success
		return s.finish("legacy", result)
	default:
		return s.finish("invalid", ImportResult{Error: ErrInvalidFormat})
	}
}

// ImportCompleteJSON decodes raw JSON and imports it. Oversized or too deeply
// nested documents are rejected as invalid before decoding finishes.
func (s *Service) ImportCompleteJSON(raw []byte) ImportResult {
	doc, err := s.documents.Decode(raw)
	if err != nil {
		s.logger.Debug("snapshot document rejected", zap.Error(err))
		return s.finish("invalid", ImportResult{Error: ErrInvalidFormat})
	}
	return s.ImportComplete(doc)
}

// ImportStateJSON decodes raw JSON and imports it as the legacy shape.
func (s *Service) ImportStateJSON(raw []byte) ImportResult {
	doc, err := s.documents.Decode(raw)
	if err != nil {
		s.logger.Debug("legacy document rejected", zap.Error(err))
		return s.finish("invalid", ImportResult{Error: ErrInvalidFormat})
	}
	return s.ImportState(doc)
}

// ImportState restores the legacy export shape directly.
func (s *Service) ImportState(data any) ImportResult {
	doc, ok := toDocument(data)
	if !ok {
		return s.finish("invalid", ImportResult{Error: ErrInvalidFormat})
	}
	result := s.guard(func(w *warnings) (*Meta, error) {
		return nil, s.applyLegacy(doc, w)
	})
	result.Legacy = result.Success
	return s.finish("legacy", result)
}

// guard runs one import under the import lock and turns errors and panics
// into a failed result.
func (s *Service) guard(apply func(w *warnings) (*Meta, error)) (result ImportResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &warnings{list: []string{}}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("snapshot import panicked", zap.Any("panic", r))
			result = ImportResult{Error: fmt.Sprintf("import failed: %v", r)}
		}
	}()

	meta, err := apply(w)
	if err != nil {
		return ImportResult{Error: err.Error(), Warnings: w.list}
	}
	return ImportResult{Success: true, Warnings: w.list, Meta: meta}
}

func (s *Service) finish(kind string, result ImportResult) ImportResult {
	s.metrics.RecordSnapshotImport(kind, result.Success)
	if !result.Success {
		s.logger.Warn("snapshot import rejected",
			zap.String("kind", kind),
			zap.String("error", result.Error),
		)
		return result
	}
	s.logger.Info("snapshot imported",
		zap.String("kind", kind),
		zap.Int("warnings", len(result.Warnings)),
	)
	if s.emitter != nil {
		s.emitter.Emit(events.TopicSnapshotImport, events.SnapshotImport{
			Legacy:   result.Legacy,
			Warnings: result.Warnings,
		})
	}
	return result
}

func (s *Service) applyComplete(doc map[string]any, w *warnings) (*Meta, error) {
	meta, err := state.Decode[Meta](doc["_meta"])
	if err != nil {
		w.addf("_meta could not be read: %v", err)
	}

	b := s.store.Begin()
	var raw []kv.Op

	for _, key := range sortedKeys(doc) {
		value := doc[key]
		switch key {
		case "_meta":
		case "state":
			if meta.Checksum != "" {
				if sum, err := checksum(value); err != nil || sum != meta.Checksum {
					w.addf("state checksum does not match _meta.checksum")
				}
			}
			s.applyState(b, value, w)
		case fileSystemKey:
			if value != nil {
				raw = append(raw, kv.Set(fileSystemKey, value))
			}
		default:
			g, ok := groupFor(key)
			if !ok {
				w.addf("unknown section %q ignored", key)
				continue
			}
			raw = append(raw, rawOps(g, value, w)...)
		}
	}

	if err := s.commit(b, raw); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Service) applyState(b *state.Batch, v any, w *warnings) {
	section, ok := v.(map[string]any)
	if !ok {
		w.addf("state section is not an object; skipped")
		return
	}
	for _, key := range sortedKeys(section) {
		value := section[key]
		switch key {
		case "icons", "menuItems", "recycledItems":
			set(b, key, s.sanitizeLabels(key, value, w), w)
		case "filePositions", "achievements":
			set(b, key, value, w)
		case "settings":
			applySettings(b, value, w)
		case "user":
			applyUser(b, value, w)
		default:
			w.addf("unknown state key %q ignored", key)
		}
	}
}

// applySettings writes settings one nested level deep, so pet.enabled and
// pet.type land on their own durable keys.
func applySettings(b *state.Batch, v any, w *warnings) {
	settings, ok := v.(map[string]any)
	if !ok {
		w.addf("settings is not an object; skipped")
		return
	}
	for _, key := range sortedKeys(settings) {
		value := settings[key]
		nested, ok := value.(map[string]any)
		if !ok {
			set(b, "settings."+key, value, w)
			continue
		}
		for _, sub := range sortedKeys(nested) {
			set(b, "settings."+key+"."+sub, nested[sub], w)
		}
	}
}

func applyUser(b *state.Batch, v any, w *warnings) {
	user, ok := v.(map[string]any)
	if !ok {
		w.addf("user is not an object; skipped")
		return
	}
	for _, key := range sortedKeys(user) {
		switch key {
		case "hasVisited":
			set(b, "user.hasVisited", user[key], w)
		case "isAdmin":
			w.addf("user.isAdmin is session-only and was ignored")
		default:
			w.addf("unknown user key %q ignored", key)
		}
	}
}

func set(b *state.Batch, path string, value any, w *warnings) {
	if err := b.Set(path, value, true); err != nil {
		w.addf("%s skipped: %v", path, err)
	}
}

func groupFor(section string) (rawGroup, bool) {
	for _, g := range rawGroups {
		if g.section == section {
			return g, true
		}
	}
	return rawGroup{}, false
}

func rawOps(g rawGroup, v any, w *warnings) []kv.Op {
	section, ok := v.(map[string]any)
	if !ok {
		w.addf("%s is not an object; skipped", g.section)
		return nil
	}
	var ops []kv.Op
	for _, key := range sortedKeys(section) {
		if !g.allows(key) {
			w.addf("unknown %s key %q ignored", g.section, key)
			continue
		}
		ops = append(ops, kv.Set(key, section[key]))
	}
	return ops
}

// commit flushes the durable writes of b plus raw and swaps the tree in, as
// one unit.
func (s *Service) commit(b *state.Batch, raw []kv.Op) error {
	ops := append(persistence.Ops(b.Writes()), raw...)
	err := s.store.CommitWith(b, func() error {
		return s.kv.Apply(ops)
	})
	if err != nil {
		b.Discard()
		if errors.Is(err, state.ErrStaleBatch) {
			return fmt.Errorf("state changed during import: %w", err)
		}
		return fmt.Errorf("apply snapshot: %w", err)
	}
	return nil
}

// toDocument normalizes data to a JSON object.
func toDocument(data any) (map[string]any, bool) {
	if data == nil {
		return nil, false
	}
	normalized, err := state.Normalize(data)
	if err != nil {
		return nil, false
	}
	doc, ok := normalized.(map[string]any)
	return doc, ok
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
