package snapshot

import (
	"html"
)

// sanitizeLabels strips markup from the label of every record in a list.
// Plain text, including characters the policy escapes, comes back unchanged.
func (s *Service) sanitizeLabels(section string, v any, w *warnings) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		label, ok := record["label"].(string)
		if !ok {
			continue
		}
		clean := html.UnescapeString(s.labels.Sanitize(label))
		if clean != label {
			record["label"] = clean
			w.addf("%s.%d.label contained markup and was sanitized", section, i)
		}
	}
	return items
}
