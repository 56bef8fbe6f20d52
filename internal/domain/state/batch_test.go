package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchInvisibleUntilCommit(t *testing.T) {
	em := &recordingEmitter{}
	s := New(DefaultTree(), WithEmitter(em))

	calls := 0
	s.Subscribe("achievements", func(any, string) { calls++ })

	b := s.Begin()
	require.NoError(t, b.Set("achievements", []any{"a"}, true))
	require.NoError(t, b.Set("settings.sound", true, true))

	v, _ := b.Get("achievements")
	assert.Equal(t, []any{"a"}, v)
	v, _ = s.Get("achievements")
	assert.Equal(t, []any{}, v)
	assert.Zero(t, calls)
	assert.Empty(t, em.topics)

	require.NoError(t, s.Commit(b))

	v, _ = s.Get("achievements")
	assert.Equal(t, []any{"a"}, v)
	v, _ = s.Get("settings.sound")
	assert.Equal(t, true, v)
	assert.Equal(t, 1, calls)
	assert.Len(t, em.topics, 2)
}

func TestBatchRecordsWrites(t *testing.T) {
	s := New(DefaultTree())

	b := s.Begin()
	require.NoError(t, b.Set("settings.pet.type", "fox", true))
	require.NoError(t, b.Set("ui.startMenuOpen", true, false))

	assert.Equal(t, []Write{
		{Path: "settings.pet.type", Value: "fox", OldValue: "cat", Persist: true},
		{Path: "ui.startMenuOpen", Value: true, OldValue: false, Persist: false},
	}, b.Writes())
}

func TestBatchDoesNotTouchLiveTree(t *testing.T) {
	s := New(DefaultTree())

	b := s.Begin()
	require.NoError(t, b.Set("settings.pet.type", "fox", false))
	b.Discard()

	v, _ := s.Get("settings.pet.type")
	assert.Equal(t, "cat", v)
	assert.ErrorIs(t, s.Commit(b), ErrBatchClosed)
	assert.ErrorIs(t, b.Set("a", 1, false), ErrBatchClosed)
}

func TestStaleBatchIsRejected(t *testing.T) {
	s := New(DefaultTree())

	b := s.Begin()
	require.NoError(t, b.Set("achievements", []any{"from-batch"}, false))
	require.NoError(t, s.Set("achievements", []any{"live"}, false))

	assert.ErrorIs(t, s.Commit(b), ErrStaleBatch)
	v, _ := s.Get("achievements")
	assert.Equal(t, []any{"live"}, v)
}

func TestBatchSetFailureLeavesCandidateIntact(t *testing.T) {
	s := New(DefaultTree())

	b := s.Begin()
	err := b.Set("settings.sound.level", 3.0, false)
	assert.ErrorIs(t, err, ErrNotContainer)
	assert.Empty(t, b.Writes())

	v, _ := b.Get("settings.sound")
	assert.Equal(t, false, v)
}

func TestCommitWithFlushFailureLeavesTree(t *testing.T) {
	s := New(DefaultTree())
	calls := 0
	s.Subscribe("achievements", func(any, string) { calls++ })

	b := s.Begin()
	require.NoError(t, b.Set("achievements", []any{"a"}, true))

	flushErr := errors.New("disk full")
	err := s.CommitWith(b, func() error { return flushErr })
	assert.ErrorIs(t, err, flushErr)

	v, _ := s.Get("achievements")
	assert.Equal(t, []any{}, v)
	assert.Zero(t, calls)

	// The batch stays open and can be retried.
	require.NoError(t, s.CommitWith(b, func() error { return nil }))
	v, _ = s.Get("achievements")
	assert.Equal(t, []any{"a"}, v)
	assert.Equal(t, 1, calls)
}

func TestCommitWithSkipsFlushWhenStale(t *testing.T) {
	s := New(DefaultTree())
	b := s.Begin()
	require.NoError(t, s.Set("ui.startMenuOpen", true, false))

	flushed := false
	err := s.CommitWith(b, func() error { flushed = true; return nil })
	assert.ErrorIs(t, err, ErrStaleBatch)
	assert.False(t, flushed)
}
