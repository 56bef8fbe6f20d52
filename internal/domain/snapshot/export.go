package snapshot

import (
	"fmt"
	"time"
)

// ExportComplete assembles a complete snapshot. user.isAdmin is session-only
// and never exported.
func (s *Service) ExportComplete() (*Snapshot, error) {
	tree := s.store.Snapshot()

	st := make(map[string]any, len(stateSlices)+1)
	for _, slice := range stateSlices {
		if v, ok := tree[slice]; ok {
			st[slice] = v
		}
	}
	if user, ok := tree["user"].(map[string]any); ok {
		if visited, ok := user["hasVisited"]; ok {
			st["user"] = map[string]any{"hasVisited": visited}
		}
	}

	sum, err := checksum(st)
	if err != nil {
		return nil, fmt.Errorf("checksum state: %w", err)
	}

	snap := &Snapshot{
		Meta: Meta{
			Version:      VersionComplete,
			Type:         TypeComplete,
			Timestamp:    s.now().UTC().Format(time.RFC3339),
			ExportedFrom: s.exportedFrom,
			Checksum:     sum,
		},
		State:      st,
		FileSystem: s.kv.Get(fileSystemKey, nil),
	}
	for _, g := range rawGroups {
		section := s.readGroup(g)
		switch g.section {
		case "displaySettings":
			snap.DisplaySettings = section
		case "appData":
			snap.AppData = section
		case "features":
			snap.Features = section
		case "security":
			snap.Security = section
		}
	}

	s.metrics.IncSnapshotExports()
	return snap, nil
}

// ExportState produces the legacy export shape.
func (s *Service) ExportState() *LegacyState {
	tree := s.store.Snapshot()
	return &LegacyState{
		Meta:          Meta{Version: VersionLegacy, Type: TypeLegacy},
		Icons:         tree["icons"],
		MenuItems:     tree["menuItems"],
		Achievements:  tree["achievements"],
		Settings:      tree["settings"],
		DesktopBg:     s.kv.Get("desktopBg", nil),
		AdminPassword: s.kv.Get("adminPassword", nil),
	}
}

// readGroup returns the stored keys of g; absent keys are left out.
func (s *Service) readGroup(g rawGroup) map[string]any {
	out := make(map[string]any)
	for _, key := range g.keys {
		if v, ok := s.kv.Lookup(key); ok {
			out[key] = v
		}
	}
	return out
}
