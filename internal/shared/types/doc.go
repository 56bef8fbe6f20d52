// Package types provides the shared records of the desktop state tree and
// the request and message shapes of the API.
//
// Core Types:
//   - Icon, Position: desktop icons and file icon layout
//   - Window: open window record (open-ended map with typed accessors)
//   - Settings, PetSettings: the fixed-shape settings slice
//
// Request Types:
//   - SetStateRequest, StateResponse: raw path access over HTTP
//   - MoveIconRequest, FilePositionRequest, ResetResponse: desktop endpoints
//   - WSMessage: WebSocket communication
package types
