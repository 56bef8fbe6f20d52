package state

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morroware/retrosv2-sub000/internal/shared/types"
)

func TestKeyGetDecodes(t *testing.T) {
	s := New(DefaultTree())
	require.NoError(t, s.Set("icons", DefaultIcons(), false))

	icons, ok := Icons.Get(s)
	require.True(t, ok)
	require.NotEmpty(t, icons)
	assert.Equal(t, types.IconApp, icons[0].Type)

	settings, ok := Settings.Get(s)
	require.True(t, ok)
	assert.True(t, settings.CRTEffect)
	assert.Equal(t, "cat", settings.Pet.Type)
	assert.Equal(t, 300000.0, settings.ScreensaverDelay)
}

func TestKeyGetNilIsAbsent(t *testing.T) {
	s := New(DefaultTree())

	id, ok := ActiveWindow.Get(s)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestKeyGetWrongShape(t *testing.T) {
	s := New(DefaultTree())
	require.NoError(t, s.Set("settings.pet.type", 7.0, false))

	_, ok := PetType.Get(s)
	assert.False(t, ok)
}

func TestKeySetStoresJSONShape(t *testing.T) {
	s := New(DefaultTree())

	require.NoError(t, FilePositions.Set(s, map[string]types.Position{"/docs/a.txt": {X: 5, Y: 6}}, false))
	raw, _ := s.Get("filePositions")
	assert.Equal(t, map[string]any{"/docs/a.txt": map[string]any{"x": 5.0, "y": 6.0}}, raw)

	require.NoError(t, Achievements.Set(s, []string{"a", "b"}, false))
	raw, _ = s.Get("achievements")
	assert.Equal(t, []any{"a", "b"}, raw)
}

func TestKeyWorksOnBatch(t *testing.T) {
	s := New(DefaultTree())
	b := s.Begin()

	require.NoError(t, SoundEnabled.Set(b, true, true))
	on, ok := SoundEnabled.Get(b)
	require.True(t, ok)
	assert.True(t, on)

	on, _ = SoundEnabled.Get(s)
	assert.False(t, on)
}

func TestKeyGetDoesNotAliasTree(t *testing.T) {
	s := New(DefaultTree())
	pet := Key[map[string]any]{Path: "settings.pet"}

	m, ok := pet.Get(s)
	require.True(t, ok)
	m["type"] = "dog"

	raw, _ := s.Get("settings.pet.type")
	assert.Equal(t, "cat", raw)
}

func TestKeyGetConcurrentWithPathWrites(t *testing.T) {
	s := New(DefaultTree())
	require.NoError(t, s.Set("icons", DefaultIcons(), false))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Set("icons.0.label", fmt.Sprint(i), false)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, _ = Icons.Get(s)
		}
	}()
	wg.Wait()

	icons, ok := Icons.Get(s)
	require.True(t, ok)
	assert.Equal(t, "499", icons[0].Label)
}

func TestNormalize(t *testing.T) {
	v, err := Normalize(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0}, v)

	v, err = Normalize("x")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}
