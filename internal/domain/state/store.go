package state

import (
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/infrastructure/events"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
)

const (
	// DefaultMaxCascadeDepth bounds nested Set calls issued from callbacks.
	DefaultMaxCascadeDepth = 32

	// DefaultZIndexBase is the first value handed out minus one.
	DefaultZIndexBase = 1000
)

// Persister mirrors a write to durable storage. It reports whether the path
// is mapped and the write was stored.
type Persister interface {
	Persist(path string, value any) bool
}

// Emitter receives one event per mutation.
type Emitter interface {
	Emit(topic string, payload any)
}

// Store is the in-memory state tree.
type Store struct {
	mu      sync.RWMutex
	tree    map[string]any // Protected by mu
	version uint64         // Protected by mu
	zIndex  int            // Protected by mu
	zBase   int

	subMu  sync.RWMutex
	subs   map[string][]subscription // Protected by subMu
	nextID uint64                    // Protected by subMu

	depth    atomic.Int32
	maxDepth int32

	persister Persister
	emitter   Emitter
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPersister sets the durable mirror used by persisting writes.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithEmitter sets the event sink.
func WithEmitter(e Emitter) Option {
	return func(s *Store) { s.emitter = e }
}

// WithMetrics enables metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithMaxCascadeDepth overrides DefaultMaxCascadeDepth.
func WithMaxCascadeDepth(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxDepth = int32(n)
		}
	}
}

// WithZIndexBase overrides DefaultZIndexBase.
func WithZIndexBase(base int) Option {
	return func(s *Store) {
		s.zBase = base
		s.zIndex = base
	}
}

// New creates a store over tree. A nil tree starts empty; DefaultTree gives
// the desktop's construction-time shape.
func New(tree map[string]any, opts ...Option) *Store {
	if tree == nil {
		tree = make(map[string]any)
	}
	s := &Store{
		tree:     tree,
		zIndex:   DefaultZIndexBase,
		zBase:    DefaultZIndexBase,
		subs:     make(map[string][]subscription),
		maxDepth: DefaultMaxCascadeDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value at path. An empty path returns the root. Returned
// maps and lists are the live tree, not copies; callers must not mutate
// them.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if path == "" {
		return s.tree, true
	}
	return lookup(s.tree, splitPath(path))
}

// GetCopy is Get returning a deep copy, safe to hold or encode while later
// writes happen.
func (s *Store) GetCopy(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if path == "" {
		return deepClone(s.tree), true
	}
	v, ok := lookup(s.tree, splitPath(path))
	return deepClone(v), ok
}

// Snapshot returns a deep copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepClone(s.tree).(map[string]any)
}

// Version increases on every successful write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Set assigns value at path, runs the cascade, emits state:change and, when
// persist is true, mirrors the write through the Persister. Unmapped paths
// are not persisted.
func (s *Store) Set(path string, value any, persist bool) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := s.admit(path); err != nil {
		return err
	}

	s.mu.Lock()
	old, err := assign(s.tree, splitPath(path), value)
	if err == nil {
		s.version++
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.metrics.RecordStateWrite(persist)
	s.publish(path, value, old)

	if persist && s.persister != nil {
		s.persister.Persist(path, value)
	}
	return nil
}

// Notify runs the cascade for path with its current value without writing.
func (s *Store) Notify(path string) error {
	if err := s.admit(path); err != nil {
		return err
	}
	value, _ := s.Get(path)
	s.depth.Add(1)
	defer s.depth.Add(-1)
	s.notify(path, value)
	return nil
}

// NextZIndex pre-increments and returns the stacking counter. It is the only
// source of window z-indexes.
func (s *Store) NextZIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zIndex++
	return s.zIndex
}

// Replace swaps in a new tree, resets the z-index counter and notifies every
// top-level key. Subscribers are kept.
func (s *Store) Replace(tree map[string]any) {
	if tree == nil {
		tree = make(map[string]any)
	}

	s.mu.Lock()
	old := s.tree
	s.tree = tree
	s.zIndex = s.zBase
	s.version++
	s.mu.Unlock()

	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.publish(k, tree[k], old[k])
	}
}

// admit refuses a write issued from inside too many nested cascades.
func (s *Store) admit(path string) error {
	if depth := s.depth.Load(); depth >= s.maxDepth {
		s.metrics.IncCascadeRefusals()
		s.logger.Error("cascade depth exceeded, write refused",
			zap.String("path", path),
			zap.Int32("depth", depth),
		)
		return ErrCascadeTooDeep
	}
	return nil
}

// publish runs the cascade and emits the change event for one write.
func (s *Store) publish(path string, value, old any) {
	s.depth.Add(1)
	defer s.depth.Add(-1)

	n := s.notify(path, value)
	s.metrics.RecordCascadeCallbacks(n)

	if s.emitter != nil {
		s.emitter.Emit(events.TopicStateChange, events.StateChange{
			Path:     path,
			Value:    value,
			OldValue: old,
		})
	}
}
