package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/domain/state"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/events"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
	"github.com/morroware/retrosv2-sub000/internal/shared/types"
	"github.com/morroware/retrosv2-sub000/internal/shared/utils"
)

// Defaults for Options.
const (
	DefaultSendBuffer   = 64
	DefaultReadLimit    = utils.MaxMessageSize
	DefaultPingInterval = 30 * time.Second
	DefaultWriteWait    = 10 * time.Second
)

// Topics forwarded to every client.
var Topics = []string{
	events.TopicStateChange,
	events.TopicAchievementUnlock,
	events.TopicStateReset,
	events.TopicSnapshotImport,
}

// Options tunes a Hub. Zero values take the defaults.
type Options struct {
	SendBuffer   int
	ReadLimit    int64
	PingInterval time.Duration
	WriteWait    time.Duration
	Logger       *zap.Logger
	Metrics      *monitoring.Metrics
}

// Hub tracks connected clients and fans bus events out to them.
type Hub struct {
	store   *state.Store
	opts    Options
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool

	unsubs []func()
}

// NewHub creates a hub and subscribes it to the bus topics.
func NewHub(store *state.Store, bus *events.Bus, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = DefaultReadLimit
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = DefaultWriteWait
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Hub{
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
		clients: make(map[string]*client),
	}
	if bus != nil {
		for _, topic := range Topics {
			h.unsubs = append(h.unsubs, bus.Subscribe(topic, h.forward))
		}
	}
	return h
}

// forward runs on the emitting goroutine, so the payload is encoded before
// the writer can touch the tree again.
func (h *Hub) forward(topic string, payload any) {
	h.Broadcast(types.WSMessage{Type: topic, Payload: payload})
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg types.WSMessage) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode broadcast", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.enqueue(msg.Type, data)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches the hub from the bus and disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	unsubs := h.unsubs
	h.unsubs = nil
	h.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	h.metrics.IncWSConnections()
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		h.metrics.DecWSConnections()
	}
}
