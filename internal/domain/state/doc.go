/*
Package state holds the desktop's single source of truth: a nested tree of
JSON-shaped values addressed by dot paths.

A write goes through Store.Set, which assigns the value, runs the subscriber
cascade, emits one state:change event and, when asked, mirrors the write to
durable storage through a Persister.

Cascade:

	Set("settings.pet.enabled", true)
	  exact     settings.pet.enabled  cb(true, "settings.pet.enabled")
	  ancestor  settings.pet          cb(<live settings.pet>, "settings.pet.enabled")
	  ancestor  settings              cb(<live settings>, "settings.pet.enabled")

Ancestor callbacks receive the value re-read at their own path, while the
second argument names the leaf that changed. Top-level paths have no
ancestor phase. Callbacks run synchronously with no lock held, so they may
call Set; nesting is bounded by the configured maximum cascade depth.

Intermediate containers are created only where a segment is absent or nil.
A segment that exists as a scalar is never overwritten; Set returns
ErrNotContainer instead.

Batch builds a candidate tree off to the side and Commit swaps it in only
if nothing else wrote in the meantime. Key provides typed access to the
well-known slices.
*/
package state
