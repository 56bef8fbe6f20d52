// Package desktop provides the typed desktop operations built on the state
// store: window stacking, icon moves between the desktop and the recycle
// bin, and achievement unlocks.
//
// Each helper reads the current slice, builds a new copy and writes it back
// through Store.Set, so subscribers and the durable mirror see ordinary
// writes. The helpers add the invariants raw writes do not enforce:
//   - z-indexes come only from the store's counter, so no two windows share one
//   - an icon lives in exactly one of icons and recycledItems
//   - an achievement id is unlocked at most once
//
// A raw Set on the same paths bypasses these guarantees.
package desktop
