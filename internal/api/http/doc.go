// Package http exposes the state store, the desktop helpers and the snapshot
// service over a gin router.
//
// Mutating endpoints are serialized by one writer lock, so the store keeps a
// single logical writer however many requests arrive at once. Reads return
// deep copies of the requested subtree.
//
// Routes:
//
//	GET    /health
//	GET    /state?path=            PUT  /state
//	GET    /windows                POST /windows
//	PATCH  /windows/:id            DELETE /windows/:id
//	POST   /windows/:id/focus      POST /windows/:id/minimize   POST /windows/:id/maximize
//	GET    /icons                  POST /icons                  DELETE /icons/:id
//	POST   /icons/:id/move         POST /icons/:id/recycle
//	PUT    /file-positions
//	GET    /recycle                POST /recycle/:index/restore DELETE /recycle
//	GET    /achievements           POST /achievements/:id
//	GET    /snapshot               POST /snapshot
//	GET    /snapshot/legacy        POST /snapshot/legacy
//	POST   /reset
package http
