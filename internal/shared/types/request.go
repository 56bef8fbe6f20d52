package types

// SetStateRequest is the body of PUT /state
type SetStateRequest struct {
	Path    string `json:"path" binding:"required"`
	Value   any    `json:"value"`
	Persist bool   `json:"persist"`
}

// StateResponse is returned by GET /state
type StateResponse struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
	Found bool   `json:"found"`
}

// MoveIconRequest is the body of POST /icons/:id/move
type MoveIconRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WSMessage represents a WebSocket message in either direction
type WSMessage struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Value   any    `json:"value,omitempty"`
	Changed string `json:"changed,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}

// FilePositionRequest is the body of PUT /file-positions
type FilePositionRequest struct {
	Path string  `json:"path" binding:"required"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ResetResponse is returned by POST /reset
type ResetResponse struct {
	Success bool `json:"success"`
}
