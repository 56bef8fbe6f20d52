package snapshot

// Snapshot format tags.
const (
	TypeComplete = "complete-snapshot"
	TypeLegacy   = "legacy-state"

	VersionComplete = "2.0"
	VersionLegacy   = "1.0"

	// ErrInvalidFormat is the ImportResult error for unrecognised input.
	ErrInvalidFormat = "Invalid snapshot format"
)

// Meta identifies a snapshot.
type Meta struct {
	Version      string `json:"version"`
	Type         string `json:"type"`
	Timestamp    string `json:"timestamp,omitempty"`
	ExportedFrom string `json:"exportedFrom,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
}

// Snapshot is a complete checkpoint. Every section is optional on import.
type Snapshot struct {
	Meta            Meta           `json:"_meta"`
	State           map[string]any `json:"state"`
	FileSystem      any            `json:"fileSystem"`
	DisplaySettings map[string]any `json:"displaySettings"`
	AppData         map[string]any `json:"appData"`
	Features        map[string]any `json:"features"`
	Security        map[string]any `json:"security"`
}

// LegacyState is the older, smaller export shape.
type LegacyState struct {
	Meta          Meta `json:"_meta"`
	Icons         any  `json:"icons"`
	MenuItems     any  `json:"menuItems"`
	Achievements  any  `json:"achievements"`
	Settings      any  `json:"settings"`
	DesktopBg     any  `json:"desktopBg,omitempty"`
	AdminPassword any  `json:"adminPassword,omitempty"`
}

// ImportResult reports the outcome of an import. Callers must branch on
// Success.
type ImportResult struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Legacy   bool     `json:"legacy,omitempty"`
	Meta     *Meta    `json:"meta,omitempty"`
}

// rawGroup is a snapshot section made of durable keys the store does not
// map.
type rawGroup struct {
	section string
	keys    []string
}

const fileSystemKey = "fileSystem"

var rawGroups = []rawGroup{
	{"displaySettings", []string{
		"desktopBg", "desktopWallpaper", "colorScheme", "screensaverType",
		"screensaverDelay", "animationsEnabled", "windowAnimations",
	}},
	{"appData", []string{
		"calendarEvents", "clockAlarms", "musicPlaylist", "snakeHighScore",
		"minesweeperBestTimes", "asteroidsHighScore", "solitaireSave",
	}},
	{"features", []string{"enabledFeatures", "featureSettings"}},
	{"security", []string{"adminPassword"}},
}

func (g rawGroup) allows(key string) bool {
	for _, k := range g.keys {
		if k == key {
			return true
		}
	}
	return false
}

// stateSlices are exported under "state" in this order.
var stateSlices = []string{"icons", "filePositions", "menuItems", "recycledItems", "achievements", "settings"}
