package state

import "errors"

var (
	// ErrEmptyPath is returned when a write has no path.
	ErrEmptyPath = errors.New("state: empty path")

	// ErrNotContainer is returned when a path walks through a scalar.
	ErrNotContainer = errors.New("state: path segment is not a container")

	// ErrIndexOutOfRange is returned for list segments that are not a valid index.
	ErrIndexOutOfRange = errors.New("state: list index out of range")

	// ErrCascadeTooDeep is returned when a write is issued from inside too
	// many nested cascades.
	ErrCascadeTooDeep = errors.New("state: cascade depth exceeded")

	// ErrStaleBatch is returned by Commit when the store changed after Begin.
	ErrStaleBatch = errors.New("state: batch is stale")

	// ErrBatchClosed is returned when a committed or discarded batch is reused.
	ErrBatchClosed = errors.New("state: batch already closed")
)
