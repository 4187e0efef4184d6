package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/catalog/internal/docstore"
	"github.com/atinyakov/catalog/internal/models"
)

// collectionDoc is the stored shape of a collection. It has no size field:
// size is derived from len(Items) on every read.
type collectionDoc struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Author      string        `json:"author"`
	CreatedAt   time.Time     `json:"createdAt"`
	Image       string        `json:"image,omitempty"`
	Items       []models.CollectionItem `json:"items"`
}

func (d collectionDoc) model() models.Collection {
	c := models.Collection{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Tags:        d.Tags,
		Author:      d.Author,
		CreatedAt:   d.CreatedAt,
		Image:       d.Image,
		Items:       d.Items,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Items == nil {
		c.Items = []models.CollectionItem{}
	}
	for i := range c.Items {
		if c.Items[i].Tags == nil {
			c.Items[i].Tags = []string{}
		}
	}
	c.Size = len(c.Items)
	return c
}

// CollectionRepository implements collection operations on the collections
// partition of a DocumentStore.
type CollectionRepository struct {
	// Store is the shared document store.
	Store DocumentStore
	now   func() time.Time
}

// NewCollectionRepository creates a CollectionRepository over store that
// stamps new items with the system clock.
func NewCollectionRepository(store DocumentStore) *CollectionRepository {
	return &CollectionRepository{Store: store, now: time.Now}
}

// WithClock replaces the clock used to stamp new items.
func (r *CollectionRepository) WithClock(now func() time.Time) *CollectionRepository {
	r.now = now
	return r
}

// parseCreatedAt accepts an RFC 3339 timestamp or a bare date, which is taken
// as midnight UTC.
func parseCreatedAt(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

// CreateCollection validates in and persists a new, empty collection.
// Name, description, author and createdAt are required; createdAt must be an
// RFC 3339 timestamp or a YYYY-MM-DD date.
func (r *CollectionRepository) CreateCollection(ctx context.Context, in models.NewCollection) (*models.Collection, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	author := strings.TrimSpace(in.Author)
	rawCreatedAt := strings.TrimSpace(in.CreatedAt)

	switch {
	case name == "":
		return nil, docstore.Required("name")
	case description == "":
		return nil, docstore.Required("description")
	case author == "":
		return nil, docstore.Required("author")
	case rawCreatedAt == "":
		return nil, docstore.Required("createdAt")
	}
	createdAt, err := parseCreatedAt(rawCreatedAt)
	if err != nil {
		return nil, &docstore.ValidationError{Field: "createdAt", Reason: "must be an RFC 3339 timestamp or a YYYY-MM-DD date"}
	}

	doc := collectionDoc{
		Name:        name,
		Description: description,
		Tags:        ParseTags(in.Tags),
		Author:      author,
		CreatedAt:   createdAt.UTC(),
		Image:       strings.TrimSpace(in.Image),
		Items:       []models.CollectionItem{},
	}
	id, err := r.Store.Insert(ctx, CollectionsPartition, doc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	doc.ID = id

	c := doc.model()
	return &c, nil
}

// ListCollections returns every collection. The order is not stable across
// calls; callers that need a top-N must sort on an explicit field.
func (r *CollectionRepository) ListCollections(ctx context.Context) ([]models.Collection, error) {
	docs, err := r.Store.FindAll(ctx, CollectionsPartition, nil)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	stored, err := docstore.DecodeAll[collectionDoc](docs)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make([]models.Collection, 0, len(stored))
	for _, d := range stored {
		out = append(out, d.model())
	}
	return out, nil
}

// GetCollection returns the collection with id.
func (r *CollectionRepository) GetCollection(ctx context.Context, id string) (*models.Collection, error) {
	doc, err := r.Store.FindByID(ctx, CollectionsPartition, id)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	var stored collectionDoc
	if err := doc.Decode(&stored); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	c := stored.model()
	return &c, nil
}

// AddItemToCollection creates an item owned by the collection. The
// standalone item document and the append to the collection's items array
// commit together, so the item is listed everywhere or nowhere. No counter is
// written; the derived size grows by exactly one.
func (r *CollectionRepository) AddItemToCollection(ctx context.Context, collectionID string, in models.NewItem) (*models.Item, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	switch {
	case name == "":
		return nil, docstore.Required("name")
	case description == "":
		return nil, docstore.Required("description")
	}

	item := models.Item{
		ID:           docstore.NewID(),
		CollectionID: collectionID,
		Name:         name,
		Description:  description,
		Tags:         ParseTags(in.Tags),
		Image:        strings.TrimSpace(in.Image),
		CreatedAt:    r.now().UTC(),
		Comments:     []models.Comment{},
	}
	parent := docstore.Parent{Collection: CollectionsPartition, ID: collectionID, Field: itemsField}
	if err := r.Store.InsertWithParent(ctx, ItemsPartition, item.ID, item, parent, item.Embedded()); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return &item, nil
}
