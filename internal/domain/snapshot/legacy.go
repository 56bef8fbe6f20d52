package snapshot

import (
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/kv"
)

// applyLegacy is the one adapter for the old export shape: icons, menu
// items, achievements, settings, background color and admin password.
func (s *Service) applyLegacy(doc map[string]any, w *warnings) error {
	b := s.store.Begin()
	var raw []kv.Op

	for _, key := range sortedKeys(doc) {
		value := doc[key]
		switch key {
		case "_meta":
		case "icons", "menuItems":
			set(b, key, s.sanitizeLabels(key, value, w), w)
		case "achievements":
			set(b, key, value, w)
		case "settings":
			applySettings(b, value, w)
		case "desktopBg", "adminPassword":
			if value != nil {
				raw = append(raw, kv.Set(key, value))
			}
		default:
			w.addf("unknown legacy key %q ignored", key)
		}
	}

	return s.commit(b, raw)
}
