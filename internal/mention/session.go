package mention

import (
	"fmt"
	"unicode"

	"github.com/oakmere/arbor/internal/tree"
)

// Trigger is the character that opens an autocomplete session in the
// editing surface.
const Trigger = '@'

// Session is one autocomplete interaction: from the trigger character
// until commit or cancel. It keeps only the filter text and the
// highlighted position; candidates are recomputed against the live
// index on every query so a refreshed snapshot is picked up mid-session.
type Session struct {
	index     *Index
	filter    []rune
	highlight int
	active    bool
}

// StartSession opens a new autocomplete session against the index.
func (ix *Index) StartSession() *Session {
	return &Session{index: ix, active: true}
}

// Active reports whether the session is still open.
func (s *Session) Active() bool { return s.active }

// Filter returns the text typed since the trigger.
func (s *Session) Filter() string { return string(s.filter) }

// Candidates returns the current filtered, capped candidate list.
func (s *Session) Candidates() []tree.NoteRef {
	if !s.active {
		return nil
	}
	return s.index.Filter(string(s.filter), DefaultLimit)
}

// Insert feeds one typed character into the session. Whitespace that
// would leave the filter without any match cancels the session (the
// user is just writing text); any other character extends the filter
// and resets the highlight.
func (s *Session) Insert(r rune) {
	if !s.active {
		return
	}
	if unicode.IsSpace(r) {
		next := append(append([]rune{}, s.filter...), r)
		if len(s.index.Filter(string(next), 1)) == 0 {
			s.Cancel()
			return
		}
	}
	s.filter = append(s.filter, r)
	s.highlight = 0
}

// Backspace removes the last filter character. Deleting past the
// trigger cancels the session.
func (s *Session) Backspace() {
	if !s.active {
		return
	}
	if len(s.filter) == 0 {
		s.Cancel()
		return
	}
	s.filter = s.filter[:len(s.filter)-1]
	s.highlight = 0
}

// MoveDown advances the highlight with wraparound.
func (s *Session) MoveDown() {
	if n := len(s.Candidates()); n > 0 {
		s.highlight = (s.highlight + 1) % n
	}
}

// MoveUp retreats the highlight with wraparound.
func (s *Session) MoveUp() {
	if n := len(s.Candidates()); n > 0 {
		s.highlight = (s.highlight - 1 + n) % n
	}
}

// Highlighted returns the currently highlighted candidate.
func (s *Session) Highlighted() (tree.NoteRef, bool) {
	cands := s.Candidates()
	if !s.active || len(cands) == 0 {
		return tree.NoteRef{}, false
	}
	if s.highlight >= len(cands) {
		s.highlight = 0
	}
	return cands[s.highlight], true
}

// Commit closes the session and returns the markdown reference for the
// highlighted candidate: the display text is the candidate's current
// title, the target is the typed note URI. Returns false when there is
// nothing to commit (the session stays open).
func (s *Session) Commit() (string, bool) {
	ref, ok := s.Highlighted()
	if !ok {
		return "", false
	}
	s.active = false
	return FormatLink(ref), true
}

// Cancel closes the session without inserting anything. Also used when
// the editing surface loses focus or the user hits Escape.
func (s *Session) Cancel() {
	s.active = false
	s.filter = nil
	s.highlight = 0
}

// FormatLink renders a note reference as a markdown link with a typed
// note URI target.
func FormatLink(ref tree.NoteRef) string {
	return fmt.Sprintf("[%s](%s%d)", ref.Title, Scheme, ref.ID)
}
