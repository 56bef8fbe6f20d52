package events

import (
	"sync"

	"go.uber.org/zap"
)

// Topics emitted by the state service.
const (
	TopicStateChange       = "state:change"
	TopicAchievementUnlock = "achievement:unlock"
	TopicStateReset        = "state:reset"
	TopicSnapshotImport    = "snapshot:import"
)

// StateChange is the payload of TopicStateChange.
type StateChange struct {
	Path     string `json:"path"`
	Value    any    `json:"value"`
	OldValue any    `json:"oldValue"`
}

// AchievementUnlock is the payload of TopicAchievementUnlock.
type AchievementUnlock struct {
	ID string `json:"id"`
}

// SnapshotImport is the payload of TopicSnapshotImport.
type SnapshotImport struct {
	Legacy   bool     `json:"legacy"`
	Warnings []string `json:"warnings,omitempty"`
}

// Handler receives an emitted payload.
type Handler func(topic string, payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe bus. Emit is fire-and-forget:
// handlers run synchronously in subscription order, a panicking handler is
// logged and skipped, and nothing is returned to the emitter.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]subscription
	nextID uint64
	logger *zap.Logger
}

// NewBus creates an event bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		topics: make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers handler for topic. The returned function removes it.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			subs := b.topics[topic]
			for i, s := range subs {
				if s.id == id {
					b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
		})
	}
}

// Emit delivers payload to every handler subscribed to topic.
func (b *Bus) Emit(topic string, payload any) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.topics[topic]...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, topic, payload)
	}
}

func (b *Bus) deliver(s subscription, topic string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", topic),
				zap.Any("panic", r),
			)
		}
	}()
	s.handler(topic, payload)
}

// Count returns the number of handlers registered for topic.
func (b *Bus) Count(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
