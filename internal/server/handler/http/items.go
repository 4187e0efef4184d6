package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/catalog/internal/models"
	"github.com/atinyakov/catalog/internal/notifier"
)

var (
	itemsMessages    = messages{notFound: "Collection not found.", failed: "Error fetching items."}
	itemMessages     = messages{notFound: "Item not found.", failed: "Error fetching item."}
	commentsMessages = messages{notFound: "Item not found.", failed: "Error fetching comments."}
	addCommentMsg    = messages{notFound: "Item not found.", failed: "Error adding comment."}
)

// ListItems handles GET /items, optionally narrowed with ?collectionId=.
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.ListItems(r.Context(), r.URL.Query().Get("collectionId"))
	if err != nil {
		writeError(w, h.Logger, err, itemsMessages)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// LatestItems handles GET /items/latest?limit=N, newest items first.
func (h *CatalogHandler) LatestItems(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	items, err := h.Catalog.LatestItems(r.Context(), limit)
	if err != nil {
		writeError(w, h.Logger, err, itemsMessages)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /items/{id}.
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err, itemMessages)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ListComments handles GET /items/{id}/comments. The response carries the
// stream revision as ETag; a matching If-None-Match is answered with 304 and
// no body, so pollers only transfer comments after a change.
func (h *CatalogHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID := chi.URLParam(r, "id")

	// The revision is read before the list: a comment appended in between
	// is included in the body and seen again on the next poll, never missed.
	rev, err := h.Notifier.Revision(ctx, itemID)
	if err != nil {
		writeError(w, h.Logger, err, commentsMessages)
		return
	}
	w.Header().Set("ETag", rev.ETag())
	if matches(r.Header.Get("If-None-Match"), rev) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	comments, err := h.Catalog.ListComments(ctx, itemID)
	if err != nil {
		w.Header().Del("ETag")
		writeError(w, h.Logger, err, commentsMessages)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// matches reports whether an If-None-Match header names rev.
func matches(header string, rev notifier.Revision) bool {
	if header == "" {
		return false
	}
	for _, tag := range strings.Split(header, ",") {
		if strings.TrimSpace(tag) == "*" {
			return true
		}
		if got, ok := notifier.ParseETag(tag); ok && got == rev {
			return true
		}
	}
	return false
}

// AddComment handles POST /items/{id}/comments and answers 201 with the
// stored comment.
func (h *CatalogHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var in models.NewComment
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := h.Catalog.AddComment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err, addCommentMsg)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
