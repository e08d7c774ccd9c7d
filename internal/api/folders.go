package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/oakmere/arbor/internal/apperr"
)

// Tree handles GET /api/tree. The optional active query parameter
// names the note whose ancestor folders must render open.
//
//	@Summary		Get the live folder tree with reconciled expand state
//	@Tags			tree
//	@Produce		json
//	@Param			active	query		int	false	"Active note id"
//	@Success		200		{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	var activeID int64
	if raw := r.URL.Query().Get("active"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid active note id")
			return
		}
		activeID = id
	}

	forest, expanded, err := h.svc.Tree(r.Context(), activeID)
	if err != nil {
		slog.Error("tree failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tree":     forest,
		"expanded": expanded,
	})
}

// ToggleFolder handles POST /api/tree/toggle.
func (h *Handler) ToggleFolder(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	expanded := h.svc.ToggleFolder(r.Context(), req.FolderID)
	writeJSON(w, http.StatusOK, map[string]any{"expanded": expanded})
}

// CreateFolder handles POST /api/folders.
//
//	@Summary		Create a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateFolderRequest	true	"Folder to create"
//	@Success		201		{object}	models.Folder
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	folder, err := h.svc.CreateFolder(r.Context(), req.Name, req.ParentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "parent folder not found")
		} else {
			slog.Error("create folder failed", slog.String("name", req.Name), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// RenameFolder handles PUT /api/folders/{id}.
func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}
	var req RenameFolderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	folder, err := h.svc.RenameFolder(r.Context(), id, req.Name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("rename folder failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// DeleteFolder handles DELETE /api/folders/{id} (moves the folder and
// its subtree to the bin).
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid folder id")
		return
	}
	if err := h.svc.DeleteFolder(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("delete folder failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
