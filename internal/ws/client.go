package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/shared/types"
)

// client is one connection. send is never closed; done signals shutdown.
type client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger *zap.Logger

	mu   sync.Mutex
	subs map[string]func()

	closeOnce sync.Once
}

func newClient(id string, hub *Hub, conn *websocket.Conn) *client {
	return &client{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.opts.SendBuffer),
		done:   make(chan struct{}),
		logger: hub.logger.With(zap.String("client_id", id)),
		subs:   make(map[string]func()),
	}
}

// enqueue queues data without blocking; a full buffer drops the message.
func (c *client) enqueue(msgType string, data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		c.hub.metrics.RecordWSMessage("out", msgType)
		return true
	default:
		c.logger.Warn("send buffer full, dropping message", zap.String("type", msgType))
		return false
	}
}

func (c *client) reply(msg types.WSMessage) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to encode reply", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	c.enqueue(msg.Type, data)
}

func (c *client) replyError(message string) {
	c.reply(types.WSMessage{Type: "error", Message: message})
}

// subscribe registers a store subscription for path. Cascade values are
// encoded inside the callback, while the writer still owns the tree.
func (c *client) subscribe(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[path]; ok {
		return false
	}
	c.subs[path] = c.hub.store.Subscribe(path, func(value any, changed string) {
		c.reply(types.WSMessage{Type: "cascade", Path: path, Changed: changed, Value: value})
	})
	return true
}

func (c *client) unsubscribe(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	unsub, ok := c.subs[path]
	if !ok {
		return false
	}
	unsub()
	delete(c.subs, path)
	return true
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)

		c.mu.Lock()
		for path, unsub := range c.subs {
			unsub()
			delete(c.subs, path)
		}
		c.mu.Unlock()

		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) readPump() {
	defer c.close()

	pongWait := c.hub.opts.PingInterval * 2
	c.conn.SetReadLimit(c.hub.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.hub.metrics.RecordWSMessage("in", "invalid")
			c.replyError("invalid message")
			continue
		}
		c.hub.metrics.RecordWSMessage("in", msg.Type)
		c.hub.dispatch(c, msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.hub.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	wait := c.hub.opts.WriteWait
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wait))
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wait)); err != nil {
				return
			}
		}
	}
}
