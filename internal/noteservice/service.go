// Package noteservice coordinates the store, the navigator expand
// state, the mention index, and the notification bus.
package noteservice

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/oakmere/arbor/internal/apperr"
	"github.com/oakmere/arbor/internal/bus"
	"github.com/oakmere/arbor/internal/mention"
	"github.com/oakmere/arbor/internal/models"
	"github.com/oakmere/arbor/internal/navigator"
	"github.com/oakmere/arbor/internal/parser"
	"github.com/oakmere/arbor/internal/store"
	"github.com/oakmere/arbor/internal/tree"
)

// Service is the application core behind the API and MCP surfaces.
type Service struct {
	db  *store.DB
	idx *mention.Index
	bus *bus.Bus

	mu  sync.Mutex
	nav navigator.ExpandSet

	unsubs []func()
}

// NewService wires the service to the bus: it refreshes the mention
// index on tree refresh requests and honours create-requested events
// published by sibling UI branches.
func NewService(db *store.DB, idx *mention.Index, b *bus.Bus) *Service {
	s := &Service{db: db, idx: idx, bus: b, nav: navigator.NewExpandSet()}

	s.unsubs = append(s.unsubs,
		b.Subscribe(bus.TopicTreeRefresh, func(any) { s.refreshIndex() }),
		b.Subscribe(bus.TopicDocumentCreateRequested, func(payload any) {
			req, ok := payload.(bus.CreateRequest)
			if !ok {
				return
			}
			if _, err := s.CreateNote(context.Background(), req.Title, req.FolderID); err != nil {
				slog.Error("create-requested failed", slog.String("error", err.Error()))
			}
		}),
	)

	s.refreshIndex()
	return s
}

// Close drops the service's bus subscriptions.
func (s *Service) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}

// Index exposes the mention index for the editor and MCP surfaces.
func (s *Service) Index() *mention.Index { return s.idx }

// Tree returns the live forest together with the folder ids that must
// render open. Reconciliation runs on every fetch: stale ids are
// purged and the ancestors of the active note (0 = none) forced open.
// On retrieval failure the expand state is left untouched.
func (s *Service) Tree(_ context.Context, activeNoteID int64) ([]*models.Folder, []int64, error) {
	forest, err := s.db.Tree()
	if err != nil {
		return nil, nil, &apperr.RetrievalError{Op: "tree", Err: err}
	}

	s.idx.Replace(tree.FlattenNotes(forest))

	s.mu.Lock()
	s.nav = navigator.Reconcile(s.nav, forest, activeNoteID)
	expanded := s.nav.IDs()
	s.mu.Unlock()

	slices.Sort(expanded)
	return forest, expanded, nil
}

// ToggleFolder flips a folder's expand state and returns the new set.
func (s *Service) ToggleFolder(_ context.Context, folderID int64) []int64 {
	s.mu.Lock()
	s.nav.Toggle(folderID)
	expanded := s.nav.IDs()
	s.mu.Unlock()

	slices.Sort(expanded)
	return expanded
}

// CreateFolder creates a folder and signals tree consumers.
func (s *Service) CreateFolder(_ context.Context, name string, parentID *int64) (*models.Folder, error) {
	folder, err := s.db.CreateFolder(name, parentID)
	if err != nil {
		return nil, persistErr("create folder", err)
	}
	s.bus.Publish(bus.TopicFolderChanged, folder.ID)
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return folder, nil
}

// RenameFolder updates a folder's name and signals tree consumers.
func (s *Service) RenameFolder(_ context.Context, id int64, name string) (*models.Folder, error) {
	folder, err := s.db.RenameFolder(id, name)
	if err != nil {
		return nil, persistErr("rename folder", err)
	}
	s.bus.Publish(bus.TopicFolderChanged, folder.ID)
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return folder, nil
}

// DeleteFolder moves a folder (and implicitly its subtree) to the bin.
func (s *Service) DeleteFolder(_ context.Context, id int64) error {
	if err := s.db.SoftDeleteFolder(id); err != nil {
		return persistErr("delete folder", err)
	}
	s.bus.Publish(bus.TopicFolderChanged, id)
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return nil
}

// GetNote fetches a note with content and backlinks. A dangling
// reference lands here as ErrNotFound; the caller degrades the view
// instead of failing.
func (s *Service) GetNote(_ context.Context, id int64) (*models.NoteDetail, error) {
	detail, err := s.db.GetNote(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, &apperr.RetrievalError{Op: "get note", Err: err}
	}
	return detail, nil
}

// CreateNote creates an empty note and signals tree consumers.
func (s *Service) CreateNote(_ context.Context, title string, folderID *int64) (*models.Note, error) {
	note, err := s.db.CreateNote(title, folderID)
	if err != nil {
		return nil, persistErr("create note", err)
	}
	s.bus.Publish(bus.TopicDocumentCreated, note.ID)
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return note, nil
}

// UpdateNote persists title and content, re-extracts outgoing
// references, and publishes a rename event when the title changed.
// Reference labels in other notes are not rewritten; label drift is
// accepted.
func (s *Service) UpdateNote(_ context.Context, id int64, title, content string) (*models.Note, error) {
	current, err := s.db.GetNote(id)
	if err != nil {
		return nil, persistErr("update note", err)
	}

	note, err := s.db.UpdateNote(id, title, content, parser.ExtractReferences(content))
	if err != nil {
		return nil, persistErr("update note", err)
	}

	if current.Title != note.Title {
		s.bus.Publish(bus.TopicDocumentRenamed, bus.Renamed{ID: note.ID, Title: note.Title})
	}
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return note, nil
}

// DeleteNote moves a note to the bin.
func (s *Service) DeleteNote(_ context.Context, id int64) error {
	if err := s.db.SoftDeleteNote(id); err != nil {
		return persistErr("delete note", err)
	}
	s.bus.Publish(bus.TopicDocumentDeleted, id)
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return nil
}

// ImportNote ingests a note from a legacy export whose timestamps were
// normalized at the API boundary.
func (s *Service) ImportNote(_ context.Context, title, content string, folderID *int64, createdAt, updatedAt time.Time) (*models.Note, error) {
	note, err := s.db.ImportNote(title, content, folderID, createdAt, updatedAt, parser.ExtractReferences(content))
	if err != nil {
		return nil, persistErr("import note", err)
	}
	s.bus.Publish(bus.TopicDocumentCreated, note.ID)
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return note, nil
}

// Mentions filters the flattened note index.
func (s *Service) Mentions(_ context.Context, query string, limit int) []tree.NoteRef {
	return s.idx.Filter(query, limit)
}

// DeletedNotes lists the bin's notes.
func (s *Service) DeletedNotes(_ context.Context) ([]*models.Note, error) {
	notes, err := s.db.DeletedNotes()
	if err != nil {
		return nil, &apperr.RetrievalError{Op: "deleted notes", Err: err}
	}
	return notes, nil
}

// DeletedFolders lists the bin's folders.
func (s *Service) DeletedFolders(_ context.Context) ([]*models.Folder, error) {
	folders, err := s.db.DeletedFolders()
	if err != nil {
		return nil, &apperr.RetrievalError{Op: "deleted folders", Err: err}
	}
	return folders, nil
}

// RestoreNote brings a note back from the bin.
func (s *Service) RestoreNote(_ context.Context, id int64) error {
	if err := s.db.RestoreNote(id); err != nil {
		return persistErr("restore note", err)
	}
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return nil
}

// RestoreFolder brings a folder and its subtree back from the bin.
func (s *Service) RestoreFolder(_ context.Context, id int64) error {
	if err := s.db.RestoreFolder(id); err != nil {
		return persistErr("restore folder", err)
	}
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return nil
}

// PurgeNote permanently removes a binned note.
func (s *Service) PurgeNote(_ context.Context, id int64) error {
	if err := s.db.PurgeNote(id); err != nil {
		return persistErr("purge note", err)
	}
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return nil
}

// PurgeFolder permanently removes a binned folder subtree.
func (s *Service) PurgeFolder(_ context.Context, id int64) error {
	if err := s.db.PurgeFolder(id); err != nil {
		return persistErr("purge folder", err)
	}
	s.bus.Publish(bus.TopicTreeRefresh, nil)
	return nil
}

// refreshIndex rebuilds the flattened mention index from a fresh tree
// snapshot. The index is replaced wholesale; on retrieval failure the
// previous snapshot stays in place.
func (s *Service) refreshIndex() {
	forest, err := s.db.Tree()
	if err != nil {
		slog.Warn("mention index refresh failed", slog.String("error", err.Error()))
		return
	}
	s.idx.Replace(tree.FlattenNotes(forest))
}

// persistErr keeps not-found recognisable and wraps everything else as
// a persistence failure.
func persistErr(op string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return &apperr.PersistenceError{Op: op, Err: err}
}
