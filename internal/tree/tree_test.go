package tree

import (
	"reflect"
	"testing"

	"github.com/oakmere/arbor/internal/models"
)

func note(id int64, title string) *models.Note {
	return &models.Note{ID: id, Title: title}
}

// forest layout used throughout:
//
//	A(1)
//	└── B(2)        note X(10)
//	    └── C(3)
//	D(4)            note Y(11)
func fixture() []*models.Folder {
	c := &models.Folder{ID: 3, Name: "C"}
	b := &models.Folder{ID: 2, Name: "B", Children: []*models.Folder{c}, Notes: []*models.Note{note(10, "X")}}
	a := &models.Folder{ID: 1, Name: "A", Children: []*models.Folder{b}}
	d := &models.Folder{ID: 4, Name: "D", Notes: []*models.Note{note(11, "Y")}}
	return []*models.Folder{a, d}
}

func TestPathToNote(t *testing.T) {
	forest := fixture()

	tests := []struct {
		name   string
		noteID int64
		want   []int64
	}{
		{"nested note", 10, []int64{1, 2}},
		{"root note", 11, []int64{4}},
		{"missing note", 99, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PathToNote(forest, tt.noteID)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PathToNote(%d) = %v, want %v", tt.noteID, got, tt.want)
			}
		})
	}
}

func TestPathToNote_ExcludesNoteID(t *testing.T) {
	got := PathToNote(fixture(), 10)
	for _, id := range got {
		if id == 10 {
			t.Errorf("path %v contains the note id itself", got)
		}
	}
}

func TestFlattenNotes(t *testing.T) {
	got := FlattenNotes(fixture())
	want := []NoteRef{{ID: 10, Title: "X"}, {ID: 11, Title: "Y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FlattenNotes = %v, want %v", got, want)
	}
}

func TestFlattenNotes_Dedupes(t *testing.T) {
	shared := note(10, "X")
	forest := []*models.Folder{
		{ID: 1, Name: "A", Notes: []*models.Note{shared}},
		{ID: 2, Name: "B", Notes: []*models.Note{shared}},
	}
	got := FlattenNotes(forest)
	if len(got) != 1 {
		t.Errorf("len = %d, want 1 (duplicate note ids collapse)", len(got))
	}
}

func TestFolderIDs(t *testing.T) {
	ids := FolderIDs(fixture())
	for _, want := range []int64{1, 2, 3, 4} {
		if _, ok := ids[want]; !ok {
			t.Errorf("FolderIDs missing %d", want)
		}
	}
	if len(ids) != 4 {
		t.Errorf("len = %d, want 4", len(ids))
	}
}

func TestTraversalSurvivesCycle(t *testing.T) {
	a := &models.Folder{ID: 1, Name: "A"}
	b := &models.Folder{ID: 2, Name: "B", Notes: []*models.Note{note(10, "X")}}
	a.Children = []*models.Folder{b}
	b.Children = []*models.Folder{a} // malformed snapshot

	if got := PathToNote([]*models.Folder{a}, 10); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("PathToNote with cycle = %v", got)
	}
	if got := FlattenNotes([]*models.Folder{a}); len(got) != 1 {
		t.Errorf("FlattenNotes with cycle = %v", got)
	}
	if got := FolderIDs([]*models.Folder{a}); len(got) != 2 {
		t.Errorf("FolderIDs with cycle = %v", got)
	}
}
