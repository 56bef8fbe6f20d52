package state

// Write is one recorded batch assignment.
type Write struct {
	Path     string
	Value    any
	OldValue any
	Persist  bool
}

// Batch is a candidate tree built off to the side of the live store. Nothing
// is visible to readers or subscribers until Commit. A Batch is not safe for
// concurrent use.
type Batch struct {
	tree    map[string]any
	version uint64
	writes  []Write
	closed  bool
}

// Begin starts a batch over a deep copy of the current tree.
func (s *Store) Begin() *Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Batch{
		tree:    deepClone(s.tree).(map[string]any),
		version: s.version,
	}
}

// Get reads from the candidate tree.
func (b *Batch) Get(path string) (any, bool) {
	if path == "" {
		return b.tree, true
	}
	return lookup(b.tree, splitPath(path))
}

// Set assigns into the candidate tree and records the write.
func (b *Batch) Set(path string, value any, persist bool) error {
	if b.closed {
		return ErrBatchClosed
	}
	if path == "" {
		return ErrEmptyPath
	}
	old, err := assign(b.tree, splitPath(path), value)
	if err != nil {
		return err
	}
	b.writes = append(b.writes, Write{Path: path, Value: value, OldValue: old, Persist: persist})
	return nil
}

// Writes returns the recorded writes in order.
func (b *Batch) Writes() []Write {
	return append([]Write(nil), b.writes...)
}

// Discard closes the batch without applying it.
func (b *Batch) Discard() {
	b.closed = true
}

// Commit swaps the batch's tree in as the live tree, then runs the cascade
// and emits one change event per recorded write, in order. It fails with
// ErrStaleBatch when any other write reached the store after Begin.
func (s *Store) Commit(b *Batch) error {
	return s.CommitWith(b, nil)
}

// CommitWith is Commit with a flush step that runs after the staleness check
// and before the swap, while writers are held off. A flush error aborts the
// commit and the live tree is left untouched. Snapshot import uses it to
// write durable storage and the tree as one unit.
func (s *Store) CommitWith(b *Batch, flush func() error) error {
	if b.closed {
		return ErrBatchClosed
	}
	if err := s.admit("<batch>"); err != nil {
		return err
	}
	if err := s.swap(b, flush); err != nil {
		return err
	}
	b.closed = true

	for _, w := range b.writes {
		s.metrics.RecordStateWrite(w.Persist)
		s.publish(w.Path, w.Value, w.OldValue)
	}
	return nil
}

func (s *Store) swap(b *Batch, flush func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.version != s.version {
		return ErrStaleBatch
	}
	if flush != nil {
		if err := flush(); err != nil {
			return err
		}
	}
	s.tree = b.tree
	s.version++
	return nil
}
