package service

import (
	"context"
	"sort"

	"github.com/atinyakov/catalog/internal/models"
)

// DefaultTopLimit is the number of collections TopCollections returns when
// no positive limit is given.
const DefaultTopLimit = 5

// DefaultLatestLimit is the number of items LatestItems returns when no
// positive limit is given.
const DefaultLatestLimit = 6

// CollectionRepository defines the collection persistence operations needed
// by the CatalogService.
type CollectionRepository interface {
	CreateCollection(ctx context.Context, in models.NewCollection) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	GetCollection(ctx context.Context, id string) (*models.Collection, error)
	AddItemToCollection(ctx context.Context, collectionID string, in models.NewItem) (*models.Item, error)
}

// ItemRepository defines the item and comment persistence operations needed
// by the CatalogService.
type ItemRepository interface {
	GetItem(ctx context.Context, id string) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	ListItemsByCollection(ctx context.Context, collectionID string) ([]models.Item, error)
	ListComments(ctx context.Context, itemID string) ([]models.Comment, error)
	AddComment(ctx context.Context, itemID, author, text string) (*models.Comment, error)
}

// CatalogService implements the catalog operations exposed over HTTP.
type CatalogService struct {
	collections CollectionRepository
	items       ItemRepository
}

// NewCatalogService constructs a CatalogService over the given repositories.
func NewCatalogService(collections CollectionRepository, items ItemRepository) *CatalogService {
	return &CatalogService{collections: collections, items: items}
}

// CreateCollection stores a new empty collection.
func (s *CatalogService) CreateCollection(ctx context.Context, in models.NewCollection) (*models.Collection, error) {
	return s.collections.CreateCollection(ctx, in)
}

// ListCollections returns every collection.
func (s *CatalogService) ListCollections(ctx context.Context) ([]models.Collection, error) {
	return s.collections.ListCollections(ctx)
}

// TopCollections returns the limit largest collections, biggest first.
// Collections of equal size are ordered newest first, then by id, so the
// result is stable for an unchanged catalog.
func (s *CatalogService) TopCollections(ctx context.Context, limit int) ([]models.Collection, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	all, err := s.collections.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetCollection returns one collection with its embedded items.
func (s *CatalogService) GetCollection(ctx context.Context, id string) (*models.Collection, error) {
	return s.collections.GetCollection(ctx, id)
}

// AddItem adds an item to the collection with collectionID.
func (s *CatalogService) AddItem(ctx context.Context, collectionID string, in models.NewItem) (*models.Item, error) {
	return s.collections.AddItemToCollection(ctx, collectionID, in)
}

// ListItems returns every item, or only those of collectionID when it is
// not empty.
func (s *CatalogService) ListItems(ctx context.Context, collectionID string) ([]models.Item, error) {
	if collectionID == "" {
		return s.items.ListItems(ctx)
	}
	return s.items.ListItemsByCollection(ctx, collectionID)
}

// LatestItems returns the limit most recently added items, newest first.
// Items added at the same instant are ordered by id.
func (s *CatalogService) LatestItems(ctx context.Context, limit int) ([]models.Item, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	all, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetItem returns one item with its comments.
func (s *CatalogService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	return s.items.GetItem(ctx, id)
}

// ListComments returns the comments of itemID in append order.
func (s *CatalogService) ListComments(ctx context.Context, itemID string) ([]models.Comment, error) {
	return s.items.ListComments(ctx, itemID)
}

// AddComment appends a comment to itemID.
func (s *CatalogService) AddComment(ctx context.Context, itemID string, in models.NewComment) (*models.Comment, error) {
	return s.items.AddComment(ctx, itemID, in.Author, in.Text)
}
