package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oakmere/arbor/internal/editor"
	"github.com/oakmere/arbor/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, ed *editor.Manager, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, ed)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Tree and expand state.
	r.Get("/tree", h.Tree)
	r.Post("/tree/toggle", h.ToggleFolder)

	// Folders.
	r.Post("/folders", h.CreateFolder)
	r.Put("/folders/{id}", h.RenameFolder)
	r.Delete("/folders/{id}", h.DeleteFolder)

	// Notes CRUD and import.
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/import", h.ImportNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Editor sessions (debounced autosave).
	r.Put("/notes/{id}/draft", h.Draft)
	r.Post("/notes/{id}/flush", h.Flush)
	r.Get("/notes/{id}/state", h.SaveState)

	// Mentions and href resolution.
	r.Get("/mentions", h.Mentions)
	r.Get("/resolve", h.Resolve)

	// Bin.
	r.Get("/bin/notes", h.DeletedNotes)
	r.Get("/bin/folders", h.DeletedFolders)
	r.Post("/bin/notes/{id}/restore", h.RestoreNote)
	r.Post("/bin/folders/{id}/restore", h.RestoreFolder)
	r.Delete("/bin/notes/{id}", h.PurgeNote)
	r.Delete("/bin/folders/{id}", h.PurgeFolder)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
