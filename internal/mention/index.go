// Package mention implements the cross-note reference engine: the
// flattened note index, the trigger-driven autocomplete session, and
// the link target resolver.
package mention

import (
	"strings"
	"sync/atomic"

	"github.com/oakmere/arbor/internal/tree"
)

// DefaultLimit caps the candidate list for responsiveness.
const DefaultLimit = 8

// Index holds the addressable snapshot of all notes. The snapshot is
// read-only and replaced wholesale on refresh; filtering never observes
// a partially updated list.
type Index struct {
	snapshot atomic.Pointer[[]tree.NoteRef]
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	ix := &Index{}
	empty := []tree.NoteRef{}
	ix.snapshot.Store(&empty)
	return ix
}

// Replace swaps in a new snapshot.
func (ix *Index) Replace(refs []tree.NoteRef) {
	cp := make([]tree.NoteRef, len(refs))
	copy(cp, refs)
	ix.snapshot.Store(&cp)
}

// Len returns the number of indexed notes.
func (ix *Index) Len() int {
	return len(*ix.snapshot.Load())
}

// Filter returns up to limit candidates whose title contains the query,
// case-insensitively, preserving index order. limit <= 0 applies
// DefaultLimit. An empty query matches everything.
func (ix *Index) Filter(query string, limit int) []tree.NoteRef {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := strings.ToLower(query)

	out := []tree.NoteRef{}
	for _, ref := range *ix.snapshot.Load() {
		if q != "" && !strings.Contains(strings.ToLower(ref.Title), q) {
			continue
		}
		out = append(out, ref)
		if len(out) == limit {
			break
		}
	}
	return out
}
