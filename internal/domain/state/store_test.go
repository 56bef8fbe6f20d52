package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morroware/retrosv2-sub000/internal/infrastructure/events"
)

type recordingPersister struct {
	writes map[string]any
}

func (p *recordingPersister) Persist(path string, value any) bool {
	if p.writes == nil {
		p.writes = make(map[string]any)
	}
	p.writes[path] = value
	return true
}

type recordingEmitter struct {
	topics   []string
	payloads []any
}

func (e *recordingEmitter) Emit(topic string, payload any) {
	e.topics = append(e.topics, topic)
	e.payloads = append(e.payloads, payload)
}

func TestSetGetRoundTrip(t *testing.T) {
	s := New(DefaultTree())

	tests := []struct {
		path  string
		value any
	}{
		{"settings.sound", true},
		{"settings.pet.type", "dog"},
		{"ui.activeWindow", "win_1"},
		{"brand.new.branch", 42.0},
		{"menuItems", []any{map[string]any{"label": "Docs"}}},
		{"filePositions", map[string]any{"/a.txt": map[string]any{"x": 1.0, "y": 2.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.NoError(t, s.Set(tt.path, tt.value, false))
			got, ok := s.Get(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestGetMissing(t *testing.T) {
	s := New(DefaultTree())

	for _, path := range []string{"nope", "settings.nope", "settings.sound.deeper", "ui.activeWindow.id", "icons.7"} {
		v, ok := s.Get(path)
		assert.False(t, ok, path)
		assert.Nil(t, v, path)
	}
}

func TestGetEmptyPathReturnsRoot(t *testing.T) {
	s := New(DefaultTree())

	root, ok := s.Get("")
	require.True(t, ok)
	tree, isMap := root.(map[string]any)
	require.True(t, isMap)
	assert.Contains(t, tree, "settings")
	assert.Contains(t, tree, "icons")
}

func TestListIndexSegments(t *testing.T) {
	s := New(map[string]any{
		"icons": []any{map[string]any{"id": "a", "label": "A"}},
	})

	v, ok := s.Get("icons.0.label")
	require.True(t, ok)
	assert.Equal(t, "A", v)

	require.NoError(t, s.Set("icons.0.label", "B", false))
	v, _ = s.Get("icons.0.label")
	assert.Equal(t, "B", v)

	err := s.Set("icons.3.label", "C", false)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	err = s.Set("icons.x", "C", false)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSetCreatesMissingAndNilIntermediates(t *testing.T) {
	s := New(map[string]any{"ui": map[string]any{"panel": nil}})

	require.NoError(t, s.Set("ui.panel.size.w", 10.0, false))
	v, ok := s.Get("ui.panel")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"size": map[string]any{"w": 10.0}}, v)
}

func TestSetRefusesScalarIntermediate(t *testing.T) {
	for _, scalar := range []any{false, 0.0, "", "x", true} {
		t.Run(fmt.Sprintf("%v", scalar), func(t *testing.T) {
			s := New(map[string]any{"settings": map[string]any{"sound": scalar}})
			before := s.Version()

			err := s.Set("settings.sound.volume", 1.0, false)
			assert.ErrorIs(t, err, ErrNotContainer)

			v, ok := s.Get("settings.sound")
			require.True(t, ok)
			assert.Equal(t, scalar, v)
			assert.Equal(t, before, s.Version())
		})
	}
}

func TestSetEmptyPath(t *testing.T) {
	s := New(nil)
	assert.ErrorIs(t, s.Set("", 1, false), ErrEmptyPath)
}

func TestCascadeOrderAndArguments(t *testing.T) {
	s := New(DefaultTree())

	type call struct {
		name    string
		value   any
		changed string
	}
	var calls []call

	s.Subscribe("settings", func(value any, changed string) {
		calls = append(calls, call{"parent", value, changed})
	})
	s.Subscribe("settings.pet.enabled", func(value any, changed string) {
		calls = append(calls, call{"exact", value, changed})
	})

	require.NoError(t, s.Set("settings.pet.enabled", true, false))

	require.Len(t, calls, 2)
	assert.Equal(t, "exact", calls[0].name)
	assert.Equal(t, true, calls[0].value)
	assert.Equal(t, "settings.pet.enabled", calls[0].changed)

	settings, _ := s.Get("settings")
	assert.Equal(t, "parent", calls[1].name)
	assert.Equal(t, settings, calls[1].value)
	assert.Equal(t, "settings.pet.enabled", calls[1].changed)
}

func TestCascadeNearestAncestorFirst(t *testing.T) {
	s := New(DefaultTree())

	var order []string
	s.Subscribe("settings", func(any, string) { order = append(order, "settings") })
	s.Subscribe("settings.pet", func(any, string) { order = append(order, "settings.pet") })
	s.Subscribe("settings.pet.type", func(any, string) { order = append(order, "exact") })

	require.NoError(t, s.Set("settings.pet.type", "dog", false))
	assert.Equal(t, []string{"exact", "settings.pet", "settings"}, order)
}

func TestCascadeAncestorSeesLiveValue(t *testing.T) {
	s := New(DefaultTree())

	// The first ancestor callback writes a sibling; the second must see it.
	s.Subscribe("settings", func(any, string) {
		v, _ := s.Get("settings.crtEffect")
		if v == true {
			_ = s.Set("settings.crtEffect", false, false)
		}
	})
	var seen any
	s.Subscribe("settings", func(value any, _ string) {
		seen = value.(map[string]any)["crtEffect"]
	})

	require.NoError(t, s.Set("settings.sound", true, false))
	assert.Equal(t, false, seen)
}

func TestTopLevelPathHasNoAncestorPhase(t *testing.T) {
	s := New(DefaultTree())

	rootCalls := 0
	s.Subscribe("", func(any, string) { rootCalls++ })
	exact := 0
	s.Subscribe("achievements", func(any, string) { exact++ })

	require.NoError(t, s.Set("achievements", []any{"a"}, false))
	assert.Equal(t, 1, exact)
	assert.Zero(t, rootCalls)
}

func TestSubscribersInRegistrationOrder(t *testing.T) {
	s := New(nil)

	var order []int
	for i := 0; i < 3; i++ {
		s.Subscribe("a", func(any, string) { order = append(order, i) })
	}
	require.NoError(t, s.Set("a", 1.0, false))
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestUnsubscribeRemovesExactlyThatCallback(t *testing.T) {
	s := New(nil)

	var hits []string
	cb := func(tag string) Callback {
		return func(any, string) { hits = append(hits, tag) }
	}
	unsubA := s.Subscribe("a", cb("a"))
	s.Subscribe("a", cb("b"))

	unsubA()
	unsubA()
	assert.Equal(t, 1, s.SubscriberCount("a"))

	require.NoError(t, s.Set("a", 1.0, false))
	assert.Equal(t, []string{"b"}, hits)
}

func TestReentrantSetRunsDepthFirst(t *testing.T) {
	s := New(nil)

	var order []string
	s.Subscribe("a", func(any, string) {
		order = append(order, "a:start")
		require.NoError(t, s.Set("b", 1.0, false))
		order = append(order, "a:end")
	})
	s.Subscribe("b", func(any, string) { order = append(order, "b") })

	require.NoError(t, s.Set("a", 1.0, false))
	assert.Equal(t, []string{"a:start", "b", "a:end"}, order)
}

func TestCascadeDepthGuard(t *testing.T) {
	s := New(nil, WithMaxCascadeDepth(4))

	var errs []error
	calls := 0
	// Two paths whose subscribers keep triggering each other.
	s.Subscribe("ping", func(v any, _ string) {
		calls++
		if err := s.Set("pong", v, false); err != nil {
			errs = append(errs, err)
		}
	})
	s.Subscribe("pong", func(v any, _ string) {
		calls++
		if err := s.Set("ping", v, false); err != nil {
			errs = append(errs, err)
		}
	})

	require.NoError(t, s.Set("ping", 1.0, false))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrCascadeTooDeep)
	assert.Equal(t, 4, calls)

	// The guard unwinds with the cascade.
	require.NoError(t, s.Set("other", 1.0, false))
}

func TestSubscriberPanicDoesNotBreakCascade(t *testing.T) {
	s := New(nil)

	s.Subscribe("a", func(any, string) { panic("boom") })
	called := false
	s.Subscribe("a", func(any, string) { called = true })

	require.NoError(t, s.Set("a", 1.0, false))
	assert.True(t, called)
}

func TestSetEmitsChangeEvent(t *testing.T) {
	em := &recordingEmitter{}
	s := New(DefaultTree(), WithEmitter(em))

	require.NoError(t, s.Set("settings.pet.type", "dog", false))

	require.Equal(t, []string{events.TopicStateChange}, em.topics)
	assert.Equal(t, events.StateChange{
		Path:     "settings.pet.type",
		Value:    "dog",
		OldValue: "cat",
	}, em.payloads[0])
}

func TestSetPersistsOnlyWhenAsked(t *testing.T) {
	p := &recordingPersister{}
	s := New(DefaultTree(), WithPersister(p))

	require.NoError(t, s.Set("settings.sound", true, false))
	assert.Empty(t, p.writes)

	require.NoError(t, s.Set("settings.sound", true, true))
	assert.Equal(t, map[string]any{"settings.sound": true}, p.writes)
}

func TestNextZIndexIsMonotonic(t *testing.T) {
	s := New(nil, WithZIndexBase(10))

	assert.Equal(t, 11, s.NextZIndex())
	assert.Equal(t, 12, s.NextZIndex())
	assert.Equal(t, 13, s.NextZIndex())
}

func TestReplaceKeepsSubscribersAndResetsZIndex(t *testing.T) {
	s := New(DefaultTree())
	s.NextZIndex()
	s.NextZIndex()

	var got any
	s.Subscribe("achievements", func(value any, _ string) { got = value })

	next := DefaultTree()
	next["achievements"] = []any{"fresh"}
	s.Replace(next)

	assert.Equal(t, []any{"fresh"}, got)
	assert.Equal(t, DefaultZIndexBase+1, s.NextZIndex())
}

func TestNotifyWithoutWrite(t *testing.T) {
	s := New(DefaultTree())

	var got any
	s.Subscribe("settings.sound", func(value any, _ string) { got = value })
	require.NoError(t, s.Notify("settings.sound"))
	assert.Equal(t, false, got)
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New(DefaultTree())

	snap := s.Snapshot()
	snap["settings"].(map[string]any)["sound"] = true

	v, _ := s.Get("settings.sound")
	assert.Equal(t, false, v)
}

func TestGetCopyIsDetached(t *testing.T) {
	s := New(DefaultTree())

	v, ok := s.GetCopy("settings")
	require.True(t, ok)
	v.(map[string]any)["sound"] = true

	live, _ := s.Get("settings.sound")
	assert.Equal(t, false, live)

	_, ok = s.GetCopy("missing.path")
	assert.False(t, ok)
}
