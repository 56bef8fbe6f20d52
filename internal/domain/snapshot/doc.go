// Package snapshot exports and imports whole-desktop checkpoints.
//
// A complete snapshot carries the durable state slices plus the raw durable
// keys owned by other subsystems (file system blob, display settings,
// per-app save data, feature flags, admin password):
//
//	{
//	  "_meta": {"version": "2.0", "type": "complete-snapshot", "timestamp": ..., "exportedFrom": ..., "checksum": ...},
//	  "state": {...}, "fileSystem": ..., "displaySettings": {...},
//	  "appData": {...}, "features": {...}, "security": {...}
//	}
//
// Import is all-or-nothing. Subsections are applied to a state.Batch and the
// matching durable writes are collected; the durable batch is flushed and the
// live tree swapped in one commit. Anything that goes wrong before that
// leaves both untouched and is reported through ImportResult.
//
// Input without a complete-snapshot tag goes through the legacy adapter when
// it is tagged legacy-state or looks like the old export shape (top-level
// icons or settings). Everything else is rejected as an invalid format.
package snapshot
