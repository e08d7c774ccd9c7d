package navigator

import (
	"testing"

	"github.com/oakmere/arbor/internal/models"
)

// A(1) > B(2) holds note X(10); E(5) is an unrelated root.
func fixture() []*models.Folder {
	b := &models.Folder{ID: 2, Name: "B", Notes: []*models.Note{{ID: 10, Title: "X"}}}
	a := &models.Folder{ID: 1, Name: "A", Children: []*models.Folder{b}}
	e := &models.Folder{ID: 5, Name: "E"}
	return []*models.Folder{a, e}
}

func TestToggle(t *testing.T) {
	s := NewExpandSet()
	s.Toggle(1)
	if !s.Contains(1) {
		t.Fatal("toggle should open a closed folder")
	}
	s.Toggle(1)
	if s.Contains(1) {
		t.Fatal("toggle should close an open folder")
	}
}

func TestEnsureOpenIdempotent(t *testing.T) {
	s := NewExpandSet()
	s.EnsureOpen(3)
	s.EnsureOpen(3)
	if got := len(s.IDs()); got != 1 {
		t.Errorf("len = %d, want 1", got)
	}
}

func TestReconcile_DropsStaleIDs(t *testing.T) {
	s := NewExpandSet()
	s.EnsureOpen(1)
	s.EnsureOpen(99) // no longer in the snapshot

	next := Reconcile(s, fixture(), 0)
	if !next.Contains(1) {
		t.Error("live id dropped")
	}
	if next.Contains(99) {
		t.Error("stale id survived reconcile")
	}
}

func TestReconcile_OpensActiveNoteAncestors(t *testing.T) {
	next := Reconcile(NewExpandSet(), fixture(), 10)
	if !next.Contains(1) || !next.Contains(2) {
		t.Errorf("ancestors of active note not open: %v", next.IDs())
	}
	if next.Contains(5) {
		t.Error("unrelated root opened")
	}
}

func TestReconcile_ActiveNoteMissing(t *testing.T) {
	s := NewExpandSet()
	s.EnsureOpen(5)
	next := Reconcile(s, fixture(), 404)
	if len(next.IDs()) != 1 || !next.Contains(5) {
		t.Errorf("missing active note should change nothing: %v", next.IDs())
	}
}

func TestReconcile_EmptyForestDropsAll(t *testing.T) {
	s := NewExpandSet()
	s.EnsureOpen(1)
	s.EnsureOpen(2)

	// An empty forest is a successful snapshot with no live folders,
	// not a failed load: every remembered id is now dangling.
	next := Reconcile(s, []*models.Folder{}, 0)
	if got := len(next.IDs()); got != 0 {
		t.Errorf("ids after empty snapshot = %v, want none", next.IDs())
	}
}

func TestReconcile_NilForestKeepsState(t *testing.T) {
	s := NewExpandSet()
	s.EnsureOpen(1)
	s.EnsureOpen(99)

	next := Reconcile(s, nil, 10)
	if len(next.IDs()) != 2 {
		t.Errorf("nil snapshot must leave the set untouched: %v", next.IDs())
	}
}

func TestReconcile_ResultIsSubsetOfLivePlusAncestors(t *testing.T) {
	s := NewExpandSet()
	for _, id := range []int64{1, 2, 5, 7, 8} {
		s.EnsureOpen(id)
	}
	next := Reconcile(s, fixture(), 10)
	for _, id := range next.IDs() {
		if id != 1 && id != 2 && id != 5 {
			t.Errorf("reconciled set contains non-live id %d", id)
		}
	}
}
