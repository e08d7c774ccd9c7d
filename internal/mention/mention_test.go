package mention

import (
	"testing"

	"github.com/oakmere/arbor/internal/tree"
)

func testIndex() *Index {
	ix := NewIndex()
	ix.Replace([]tree.NoteRef{
		{ID: 1, Title: "Dracula"},
		{ID: 2, Title: "Van Helsing"},
		{ID: 3, Title: "Mina Murray"},
		{ID: 4, Title: "Jonathan Harker"},
	})
	return ix
}

func TestFilter(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		query string
		want  []string
	}{
		{"dra", []string{"Dracula"}},
		{"HEL", []string{"Van Helsing"}},
		{"a", []string{"Dracula", "Van Helsing", "Mina Murray", "Jonathan Harker"}},
		{"zzz", nil},
		{"", []string{"Dracula", "Van Helsing", "Mina Murray", "Jonathan Harker"}},
	}
	for _, tt := range tests {
		got := ix.Filter(tt.query, 0)
		if len(got) != len(tt.want) {
			t.Errorf("Filter(%q) returned %d results, want %d", tt.query, len(got), len(tt.want))
			continue
		}
		for i, ref := range got {
			if ref.Title != tt.want[i] {
				t.Errorf("Filter(%q)[%d] = %q, want %q", tt.query, i, ref.Title, tt.want[i])
			}
		}
	}
}

func TestFilterCap(t *testing.T) {
	ix := NewIndex()
	refs := make([]tree.NoteRef, 20)
	for i := range refs {
		refs[i] = tree.NoteRef{ID: int64(i + 1), Title: "note"}
	}
	ix.Replace(refs)

	if got := len(ix.Filter("", 0)); got != DefaultLimit {
		t.Errorf("default cap = %d, want %d", got, DefaultLimit)
	}
	if got := len(ix.Filter("", 3)); got != 3 {
		t.Errorf("explicit cap = %d, want 3", got)
	}
}

func TestReplaceIsWholesale(t *testing.T) {
	ix := testIndex()
	ix.Replace([]tree.NoteRef{{ID: 9, Title: "Renfield"}})
	if ix.Len() != 1 {
		t.Errorf("Len = %d, want 1 after replace", ix.Len())
	}
	if got := ix.Filter("dracula", 0); len(got) != 0 {
		t.Errorf("old snapshot leaked: %v", got)
	}
}

func TestSessionTypingNarrows(t *testing.T) {
	s := testIndex().StartSession()

	for _, r := range "hel" {
		s.Insert(r)
	}
	cands := s.Candidates()
	if len(cands) != 1 || cands[0].Title != "Van Helsing" {
		t.Fatalf("candidates = %v, want only Van Helsing", cands)
	}
}

func TestSessionCommit(t *testing.T) {
	s := testIndex().StartSession()
	for _, r := range "dra" {
		s.Insert(r)
	}

	link, ok := s.Commit()
	if !ok {
		t.Fatal("commit failed with a highlighted candidate")
	}
	if link != "[Dracula](note:1)" {
		t.Errorf("link = %q, want [Dracula](note:1)", link)
	}
	if s.Active() {
		t.Error("session still active after commit")
	}
}

func TestSessionCommitWithoutMatches(t *testing.T) {
	s := testIndex().StartSession()
	for _, r := range "qqq" {
		s.Insert(r)
	}
	if _, ok := s.Commit(); ok {
		t.Error("commit should fail with no candidates")
	}
	if !s.Active() {
		t.Error("failed commit must keep the session open")
	}
}

func TestSessionHighlightWraps(t *testing.T) {
	s := testIndex().StartSession()

	// Four candidates on the empty filter; wrap both directions.
	s.MoveUp()
	if ref, _ := s.Highlighted(); ref.Title != "Jonathan Harker" {
		t.Errorf("MoveUp from top = %q, want wrap to last", ref.Title)
	}
	s.MoveDown()
	if ref, _ := s.Highlighted(); ref.Title != "Dracula" {
		t.Errorf("MoveDown wrap = %q, want first", ref.Title)
	}
}

func TestSessionWhitespaceCancels(t *testing.T) {
	s := testIndex().StartSession()
	s.Insert('q')
	s.Insert(' ') // "q " matches nothing: user is writing prose
	if s.Active() {
		t.Error("session should cancel on whitespace with zero matches")
	}
}

func TestSessionWhitespaceKeptWhileMatching(t *testing.T) {
	s := testIndex().StartSession()
	for _, r := range "van " {
		s.Insert(r)
	}
	if !s.Active() {
		t.Fatal("session cancelled although \"van \" still matches")
	}
	cands := s.Candidates()
	if len(cands) != 1 || cands[0].Title != "Van Helsing" {
		t.Errorf("candidates = %v", cands)
	}
}

func TestSessionBackspacePastTriggerCancels(t *testing.T) {
	s := testIndex().StartSession()
	s.Insert('d')
	s.Backspace()
	if !s.Active() {
		t.Fatal("deleting back to the trigger should keep the session")
	}
	s.Backspace()
	if s.Active() {
		t.Error("deleting past the trigger should cancel")
	}
}

func TestResolveHref(t *testing.T) {
	tests := []struct {
		href   string
		wantID int64
		wantOK bool
	}{
		{"note:6", 6, true},
		{"note://42", 42, true},
		{"/note/12", 12, true},
		{"/note/12?from=search", 12, true},
		{"  note:3  ", 3, true},
		{"note:0", 0, false},
		{"note:-1", 0, false},
		{"note:abc", 0, false},
		{"https://example.org/page", 0, false},
		{"/notes/12", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		id, ok := ResolveHref(tt.href)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ResolveHref(%q) = (%d, %v), want (%d, %v)", tt.href, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestFormatLink(t *testing.T) {
	got := FormatLink(tree.NoteRef{ID: 6, Title: "Dracula"})
	if got != "[Dracula](note:6)" {
		t.Errorf("FormatLink = %q", got)
	}
}
