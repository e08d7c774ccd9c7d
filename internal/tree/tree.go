// Package tree provides pure traversal queries over a folder forest.
//
// All traversals are depth-first in declaration order so results are
// deterministic, and all of them carry a visited set so a malformed
// snapshot (duplicated folder, accidental cycle) degrades to skipped
// nodes instead of infinite recursion.
package tree

import "github.com/oakmere/arbor/internal/models"

// NoteRef is a lightweight entry in the flattened note index.
type NoteRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// PathToNote returns the ordered folder ids from a root down to the
// folder that owns the note, excluding the note's own id. The result
// is empty when the note is not present in the forest.
func PathToNote(forest []*models.Folder, noteID int64) []int64 {
	visited := make(map[int64]struct{})
	for _, root := range forest {
		if path := pathIn(root, noteID, nil, visited); path != nil {
			return path
		}
	}
	return nil
}

func pathIn(f *models.Folder, noteID int64, trail []int64, visited map[int64]struct{}) []int64 {
	if f == nil {
		return nil
	}
	if _, seen := visited[f.ID]; seen {
		return nil
	}
	visited[f.ID] = struct{}{}

	trail = append(trail, f.ID)
	for _, n := range f.Notes {
		if n != nil && n.ID == noteID {
			out := make([]int64, len(trail))
			copy(out, trail)
			return out
		}
	}
	for _, child := range f.Children {
		if path := pathIn(child, noteID, trail, visited); path != nil {
			return path
		}
	}
	return nil
}

// FlattenNotes collects every note in the forest exactly once,
// depth-first, de-duplicated by id.
func FlattenNotes(forest []*models.Folder) []NoteRef {
	var out []NoteRef
	seenNotes := make(map[int64]struct{})
	visited := make(map[int64]struct{})

	var walk func(f *models.Folder)
	walk = func(f *models.Folder) {
		if f == nil {
			return
		}
		if _, seen := visited[f.ID]; seen {
			return
		}
		visited[f.ID] = struct{}{}

		for _, n := range f.Notes {
			if n == nil {
				continue
			}
			if _, dup := seenNotes[n.ID]; dup {
				continue
			}
			seenNotes[n.ID] = struct{}{}
			out = append(out, NoteRef{ID: n.ID, Title: n.Title})
		}
		for _, child := range f.Children {
			walk(child)
		}
	}

	for _, root := range forest {
		walk(root)
	}
	return out
}

// FolderIDs returns the set of folder ids present in the forest.
func FolderIDs(forest []*models.Folder) map[int64]struct{} {
	ids := make(map[int64]struct{})

	var walk func(f *models.Folder)
	walk = func(f *models.Folder) {
		if f == nil {
			return
		}
		if _, seen := ids[f.ID]; seen {
			return
		}
		ids[f.ID] = struct{}{}
		for _, child := range f.Children {
			walk(child)
		}
	}

	for _, root := range forest {
		walk(root)
	}
	return ids
}
