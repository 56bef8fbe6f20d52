package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware owns origin policy
	},
}

// HandleConnection handles WebSocket upgrade and starts the client pumps
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(uuid.NewString(), h, conn)
	if !h.register(cl) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	cl.logger.Debug("websocket connected", zap.String("remote", c.ClientIP()))

	cl.reply(types.WSMessage{
		Type:    "welcome",
		Message: "Connected to RetrOS state stream",
		Payload: map[string]any{"id": cl.id, "topics": Topics},
	})

	go cl.writePump()
	cl.readPump()
}

func (h *Hub) dispatch(c *client, msg types.WSMessage) {
	switch msg.Type {
	case "subscribe":
		if msg.Path == "" {
			c.replyError("subscribe requires a path")
			return
		}
		c.subscribe(msg.Path)
		c.reply(types.WSMessage{Type: "subscribed", Path: msg.Path})
	case "unsubscribe":
		c.unsubscribe(msg.Path)
		c.reply(types.WSMessage{Type: "unsubscribed", Path: msg.Path})
	case "get":
		value, found := h.store.GetCopy(msg.Path)
		c.reply(types.WSMessage{
			Type:    "state",
			Path:    msg.Path,
			Payload: types.StateResponse{Path: msg.Path, Value: value, Found: found},
		})
	case "ping":
		c.reply(types.WSMessage{Type: "pong"})
	default:
		c.replyError("unknown message type")
	}
}
