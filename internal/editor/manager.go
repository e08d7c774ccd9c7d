// Package editor manages one autosave controller per open note.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oakmere/arbor/internal/apperr"
	"github.com/oakmere/arbor/internal/autosave"
	"github.com/oakmere/arbor/internal/models"
)

// Backend is the slice of the service the editor needs.
type Backend interface {
	GetNote(ctx context.Context, id int64) (*models.NoteDetail, error)
	UpdateNote(ctx context.Context, id int64, title, content string) (*models.Note, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithDelay overrides the debounce delay of new sessions.
func WithDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

// Manager tracks open editing sessions. Each open note gets exactly
// one controller; draft edits route to it and persistence goes through
// the backend.
type Manager struct {
	backend Backend
	delay   time.Duration

	mu       sync.Mutex
	sessions map[int64]*autosave.Controller
}

// NewManager creates an empty session manager.
func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		delay:    autosave.DefaultDelay,
		sessions: make(map[int64]*autosave.Controller),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open loads the note and starts a session seeded with its persisted
// state. Reopening an already open note returns the fresh load without
// disturbing the running controller.
func (m *Manager) Open(ctx context.Context, id int64) (*models.NoteDetail, error) {
	detail, err := m.backend.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("editor: open note %d: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		m.sessions[id] = autosave.New(id,
			autosave.Snapshot{Title: detail.Title, Content: detail.Content},
			m.persist,
			autosave.WithDelay(m.delay),
			autosave.WithOnError(func(err error) {
				slog.Error("autosave failed",
					slog.Int64("note", id),
					slog.String("error", err.Error()))
			}),
		)
	}
	return detail, nil
}

// Draft records an edit against an open session. The session debounces
// and persists on its own schedule.
func (m *Manager) Draft(id int64, title, content string) error {
	c, ok := m.session(id)
	if !ok {
		return fmt.Errorf("editor: draft note %d: %w", id, apperr.ErrNotFound)
	}
	c.Update(title, content)
	return nil
}

// Flush requests an immediate save of an open session.
func (m *Manager) Flush(id int64) error {
	c, ok := m.session(id)
	if !ok {
		return fmt.Errorf("editor: flush note %d: %w", id, apperr.ErrNotFound)
	}
	c.SaveNow()
	return nil
}

// State reports a session's save state. Notes without a session read
// as clean.
func (m *Manager) State(id int64) autosave.State {
	c, ok := m.session(id)
	if !ok {
		return autosave.StateClean
	}
	return c.State()
}

// Close ends a session, discarding edits still inside the debounce
// window.
func (m *Manager) Close(id int64) {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		c.Close()
	}
}

// CloseAll ends every session. Used at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[int64]*autosave.Controller)
	m.mu.Unlock()
	for _, c := range sessions {
		c.Close()
	}
}

func (m *Manager) session(id int64) (*autosave.Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[id]
	return c, ok
}

func (m *Manager) persist(ctx context.Context, noteID int64, title, content string) error {
	_, err := m.backend.UpdateNote(ctx, noteID, title, content)
	return err
}
