package api

import (
	"net/http"
	"strconv"

	"github.com/oakmere/arbor/internal/mention"
)

// Mentions handles GET /api/mentions. An empty query matches every
// note; results are capped at the mention picker's limit.
//
//	@Summary		Suggest notes for an @-mention query
//	@Tags			mentions
//	@Produce		json
//	@Param			q		query		string	false	"Filter substring"
//	@Param			limit	query		int		false	"Max suggestions"
//	@Success		200		{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/mentions [get]
func (h *Handler) Mentions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	refs := h.svc.Mentions(r.Context(), q, limit)
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": refs})
}

// Resolve handles GET /api/resolve. It maps an href from rendered
// markdown back to a note id; foreign hrefs resolve as external so the
// client opens them normally.
//
//	@Summary		Resolve an href to an internal note
//	@Tags			mentions
//	@Produce		json
//	@Param			href	query		string	true	"Href to resolve"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	href := r.URL.Query().Get("href")
	if href == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'href' is required")
		return
	}
	id, ok := mention.ResolveHref(href)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"internal": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"internal": true, "id": id})
}
