// Package ws streams state changes to browser clients over WebSocket.
//
// Every connected client receives the event bus topics (state:change,
// achievement:unlock, state:reset, snapshot:import) as they are emitted, and
// may additionally subscribe to store paths to receive cascade notifications
// for them, the same way an in-process subscriber would.
//
// Message Types (Client → Server):
//   - subscribe: Start receiving cascade messages for path
//   - unsubscribe: Stop receiving cascade messages for path
//   - get: Read the value at path
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - welcome: Connection accepted, payload carries the client id
//   - subscribed / unsubscribed: Subscription acknowledged
//   - cascade: A subscribed path was notified; changed names the written path
//   - state: Reply to get
//   - <topic>: A bus event, payload is the event body
//   - pong, error
//
// Slow clients never block writers: outbound messages are queued without
// waiting and dropped when a client's buffer is full.
//
// Example Usage:
//
//	hub := ws.NewHub(store, bus, ws.Options{Logger: logger})
//	defer hub.Close()
//	router.GET("/stream", hub.HandleConnection)
package ws
