// Package navigator owns the expand state of the folder tree: which
// folders are currently shown open.
package navigator

import (
	"github.com/oakmere/arbor/internal/models"
	"github.com/oakmere/arbor/internal/tree"
)

// ExpandSet is the set of folder ids considered open. It stores ids
// only, never folder objects, so a refreshed snapshot cannot leave it
// holding stale pointers.
type ExpandSet map[int64]struct{}

// NewExpandSet returns an empty expand set.
func NewExpandSet() ExpandSet {
	return make(ExpandSet)
}

// Toggle flips membership of the folder id.
func (s ExpandSet) Toggle(id int64) {
	if _, ok := s[id]; ok {
		delete(s, id)
	} else {
		s[id] = struct{}{}
	}
}

// EnsureOpen adds the folder id if absent. Idempotent.
func (s ExpandSet) EnsureOpen(id int64) {
	s[id] = struct{}{}
}

// Contains reports whether the folder id is open.
func (s ExpandSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in unspecified order.
func (s ExpandSet) IDs() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Reconcile merges a new tree snapshot against the current expand set:
// ids that no longer exist in the snapshot are dropped, and the
// ancestors of the active note (0 = none) are forced open so a deep
// link lands with its path visible. A nil forest means the snapshot
// failed to load; the set is returned untouched so a transient fetch
// error does not collapse the user's navigation state.
func Reconcile(s ExpandSet, forest []*models.Folder, activeNoteID int64) ExpandSet {
	if forest == nil {
		return s
	}

	live := tree.FolderIDs(forest)
	next := make(ExpandSet, len(s))
	for id := range s {
		if _, ok := live[id]; ok {
			next[id] = struct{}{}
		}
	}

	if activeNoteID != 0 {
		for _, id := range tree.PathToNote(forest, activeNoteID) {
			next[id] = struct{}{}
		}
	}
	return next
}
