// Package persistence mirrors selected state paths to the durable key-value
// store.
//
// Only the paths in a fixed table are ever durable. A persisting write to
// any other path updates the tree and is otherwise a silent no-op. At boot
// the bridge overlays every stored key onto the default tree; icons fall
// back to the built-in set when nothing was stored.
//
//	store := state.New(bridge.Initial(), state.WithPersister(bridge))
//	store.Set("settings.sound", true, true) // durable key soundEnabled
//	store.Set("ui.activeWindow", "x", true) // memory only
package persistence
