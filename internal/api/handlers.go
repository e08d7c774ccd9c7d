package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oakmere/arbor/internal/apperr"
	"github.com/oakmere/arbor/internal/editor"
	"github.com/oakmere/arbor/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
	ed  *editor.Manager
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, ed *editor.Manager) *Handler {
	return &Handler{svc: svc, ed: ed}
}

// idParam extracts the numeric {id} route parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface {
	Validate() error
}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := dst.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note with content and backlinks
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	models.NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get note failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create an empty note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.CreateNote(r.Context(), req.Title, req.FolderID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "folder not found")
		} else {
			slog.Error("create note failed", slog.String("title", req.Title), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Replace a note's title and content
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Note id"
//	@Param			body	body		UpdateNoteRequest	true	"Updated note"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.UpdateNote(r.Context(), id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("update note failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Draft handles PUT /api/notes/{id}/draft. Edits are debounced by the
// per-note autosave session; the response acknowledges receipt, not
// persistence.
//
//	@Summary		Record a draft edit on an open note
//	@Tags			editor
//	@Accept			json
//	@Param			id		path	int				true	"Note id"
//	@Param			body	body	DraftRequest	true	"Live title and content"
//	@Success		202		{object}	map[string]string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/draft [put]
func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	var req DraftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.ed.Draft(id, req.Title, req.Content); err != nil {
		// First edit opens the session implicitly.
		if _, openErr := h.ed.Open(r.Context(), id); openErr != nil {
			if errors.Is(openErr, apperr.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not found")
			} else {
				slog.Error("open note failed", slog.Int64("id", id), slog.String("error", openErr.Error()))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}
		if err := h.ed.Draft(id, req.Title, req.Content); err != nil {
			slog.Error("draft failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"state": h.ed.State(id).String()})
}

// Flush handles POST /api/notes/{id}/flush (manual save shortcut).
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	if err := h.ed.Flush(id); err != nil {
		writeError(w, http.StatusNotFound, "no open session")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"state": h.ed.State(id).String()})
}

// SaveState handles GET /api/notes/{id}/state.
func (h *Handler) SaveState(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": h.ed.State(id).String()})
}

// DeleteNote handles DELETE /api/notes/{id} (moves the note to the
// bin and closes any open editor session).
//
//	@Summary		Move a note to the bin
//	@Tags			notes
//	@Param			id	path	int	true	"Note id"
//	@Success		204	"Note binned"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	h.ed.Close(id)
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("delete note failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportNotes handles POST /api/notes/import. The body is an array of
// legacy export entries; import is best-effort per entry.
//
//	@Summary		Import notes from a legacy export
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/import [post]
func (h *Handler) ImportNotes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	var entries []ImportNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	imported := make([]int64, 0, len(entries))
	var failed int
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			failed++
			continue
		}
		note, err := h.svc.ImportNote(r.Context(), entry.Title, entry.Content, entry.FolderID, entry.CreatedAt, entry.UpdatedAt)
		if err != nil {
			slog.Error("import note failed", slog.String("title", entry.Title), slog.String("error", err.Error()))
			failed++
			continue
		}
		imported = append(imported, note.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": imported,
		"failed":   failed,
	})
}
