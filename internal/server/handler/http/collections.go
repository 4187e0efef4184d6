package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/catalog/internal/models"
	"github.com/atinyakov/catalog/internal/notifier"
)

// CatalogService defines the catalog operations required by the handlers.
type CatalogService interface {
	CreateCollection(ctx context.Context, in models.NewCollection) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	TopCollections(ctx context.Context, limit int) ([]models.Collection, error)
	GetCollection(ctx context.Context, id string) (*models.Collection, error)
	AddItem(ctx context.Context, collectionID string, in models.NewItem) (*models.Item, error)
	ListItems(ctx context.Context, collectionID string) ([]models.Item, error)
	LatestItems(ctx context.Context, limit int) ([]models.Item, error)
	GetItem(ctx context.Context, id string) (*models.Item, error)
	ListComments(ctx context.Context, itemID string) ([]models.Comment, error)
	AddComment(ctx context.Context, itemID string, in models.NewComment) (*models.Comment, error)
}

// ChangeNotifier reports the revision of an item's comment stream.
type ChangeNotifier interface {
	Revision(ctx context.Context, itemID string) (notifier.Revision, error)
}

// CatalogHandler handles HTTP requests for collections, items and comments.
type CatalogHandler struct {
	// Catalog performs the underlying catalog operations.
	Catalog CatalogService
	// Notifier supplies comment stream revisions for conditional polling.
	Notifier ChangeNotifier
	// Logger records server-side failures.
	Logger *zap.Logger
}

var (
	collectionMessages = messages{
		notFound:  "Collection not found.",
		duplicate: "Collection already exists.",
		failed:    "Error fetching collection.",
	}
	collectionsMessages = messages{failed: "Error fetching collections."}
	createCollectionMsg = messages{
		duplicate: "Collection already exists.",
		failed:    "Error adding collection.",
	}
	addItemMessages = messages{
		notFound:  "Collection not found.",
		duplicate: "Item already exists.",
		failed:    "Error adding item.",
	}
)

// ListCollections handles GET /collections.
func (h *CatalogHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.Catalog.ListCollections(r.Context())
	if err != nil {
		writeError(w, h.Logger, err, collectionsMessages)
		return
	}
	writeJSON(w, http.StatusOK, collections)
}

// parseLimit reads ?limit=N. A missing limit is 0, meaning the service
// default; a non-numeric or negative one is answered with 400.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeMessage(w, http.StatusBadRequest, "limit must be a non-negative integer.")
		return 0, false
	}
	return n, true
}

// TopCollections handles GET /collections/top?limit=N.
func (h *CatalogHandler) TopCollections(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	collections, err := h.Catalog.TopCollections(r.Context(), limit)
	if err != nil {
		writeError(w, h.Logger, err, collectionsMessages)
		return
	}
	writeJSON(w, http.StatusOK, collections)
}

// GetCollection handles GET /collections/{id}.
func (h *CatalogHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	c, err := h.Catalog.GetCollection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err, collectionMessages)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCollection handles POST /collections and answers 201 with the
// stored collection.
func (h *CatalogHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var in models.NewCollection
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := h.Catalog.CreateCollection(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err, createCollectionMsg)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// AddItem handles POST /collections/{id}/items and answers 201 with the new
// item.
func (h *CatalogHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in models.NewItem
	if !decodeBody(w, r, &in) {
		return
	}
	item, err := h.Catalog.AddItem(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err, addItemMessages)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}
