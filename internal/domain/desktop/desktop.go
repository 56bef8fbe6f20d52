package desktop

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/domain/state"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
)

var (
	// ErrDuplicateIcon is returned when adding an icon whose id is taken.
	ErrDuplicateIcon = errors.New("desktop: icon id already exists")

	// ErrInvalidIcon is returned for icons without an id.
	ErrInvalidIcon = errors.New("desktop: icon requires an id")

	// ErrNotList is returned when a list path holds something other than a
	// list, such as a record or a scalar written through the path API.
	ErrNotList = errors.New("desktop: value is not a list")
)

// Desktop applies desktop operations to a store.
type Desktop struct {
	store   *state.Store
	emitter state.Emitter
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New creates the helper layer over store. emitter receives
// achievement:unlock and may be nil.
func New(store *state.Store, emitter state.Emitter, logger *zap.Logger) *Desktop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Desktop{store: store, emitter: emitter, logger: logger}
}

// WithMetrics adds metrics tracking
func (d *Desktop) WithMetrics(metrics *monitoring.Metrics) *Desktop {
	d.metrics = metrics
	return d
}

// list returns a deep copy of the list at path so callers can build a new
// version without touching the live tree. Typed Go slices stored through
// Store.Set are converted to their JSON shape. A missing or nil value is an
// empty list.
func (d *Desktop) list(path string) ([]any, error) {
	v, _ := d.store.GetCopy(path)
	if v == nil {
		return nil, nil
	}
	if items, ok := v.([]any); ok {
		return items, nil
	}
	normalized, err := state.Normalize(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotList, path, err)
	}
	items, ok := normalized.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrNotList, path, v)
	}
	return items, nil
}

func record(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func recordID(v any) string {
	m, _ := record(v)
	id, _ := m["id"].(string)
	return id
}

func indexOf(items []any, id string) int {
	for i, item := range items {
		if recordID(item) == id {
			return i
		}
	}
	return -1
}

func cloneRecord(v any) map[string]any {
	m, _ := record(v)
	out := make(map[string]any, len(m)+3)
	for k, val := range m {
		out[k] = val
	}
	return out
}
