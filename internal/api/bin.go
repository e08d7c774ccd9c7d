package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oakmere/arbor/internal/apperr"
)

// DeletedNotes handles GET /api/bin/notes.
//
//	@Summary		List binned notes
//	@Tags			bin
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/bin/notes [get]
func (h *Handler) DeletedNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.DeletedNotes(r.Context())
	if err != nil {
		slog.Error("list binned notes failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// DeletedFolders handles GET /api/bin/folders.
func (h *Handler) DeletedFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.DeletedFolders(r.Context())
	if err != nil {
		slog.Error("list binned folders failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// RestoreNote handles POST /api/bin/notes/{id}/restore.
func (h *Handler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	h.binAction(w, r, "restore note", h.svc.RestoreNote)
}

// RestoreFolder handles POST /api/bin/folders/{id}/restore.
func (h *Handler) RestoreFolder(w http.ResponseWriter, r *http.Request) {
	h.binAction(w, r, "restore folder", h.svc.RestoreFolder)
}

// PurgeNote handles DELETE /api/bin/notes/{id}. Permanent.
func (h *Handler) PurgeNote(w http.ResponseWriter, r *http.Request) {
	h.binAction(w, r, "purge note", h.svc.PurgeNote)
}

// PurgeFolder handles DELETE /api/bin/folders/{id}. Permanent, takes
// the whole subtree.
func (h *Handler) PurgeFolder(w http.ResponseWriter, r *http.Request) {
	h.binAction(w, r, "purge folder", h.svc.PurgeFolder)
}

func (h *Handler) binAction(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id int64) error) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error(op+" failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
