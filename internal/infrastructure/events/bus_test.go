package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitDeliversInOrder(t *testing.T) {
	bus := NewBus(nil)
	var got []string

	bus.Subscribe(TopicStateChange, func(topic string, payload any) {
		got = append(got, "first:"+payload.(StateChange).Path)
	})
	bus.Subscribe(TopicStateChange, func(topic string, payload any) {
		got = append(got, "second:"+payload.(StateChange).Path)
	})
	bus.Subscribe(TopicAchievementUnlock, func(topic string, payload any) {
		got = append(got, "unexpected")
	})

	bus.Emit(TopicStateChange, StateChange{Path: "settings.sound", Value: true})

	assert.Equal(t, []string{"first:settings.sound", "second:settings.sound"}, got)
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	bus := NewBus(nil)
	calls := map[string]int{}

	unsubA := bus.Subscribe("t", func(string, any) { calls["a"]++ })
	bus.Subscribe("t", func(string, any) { calls["b"]++ })

	unsubA()
	unsubA()
	bus.Emit("t", nil)

	assert.Equal(t, 0, calls["a"])
	assert.Equal(t, 1, calls["b"])
	assert.Equal(t, 1, bus.Count("t"))
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(nil)
	delivered := false

	bus.Subscribe("t", func(string, any) { panic("boom") })
	bus.Subscribe("t", func(string, any) { delivered = true })

	require.NotPanics(t, func() { bus.Emit("t", nil) })
	assert.True(t, delivered)
}

func TestEmitWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	assert.NotPanics(t, func() { bus.Emit(TopicStateReset, nil) })
	assert.Equal(t, 0, bus.Count(TopicStateReset))
}
