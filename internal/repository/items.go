package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/atinyakov/catalog/internal/docstore"
	"github.com/atinyakov/catalog/internal/models"
)

// commentDoc is a comment as submitted for append; the store adds createdAt.
type commentDoc struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

func normalizeItem(it *models.Item) {
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if it.Comments == nil {
		it.Comments = []models.Comment{}
	}
}

// ItemRepository implements item and comment operations on the items
// partition of a DocumentStore.
type ItemRepository struct {
	// Store is the shared document store.
	Store DocumentStore
}

// NewItemRepository creates an ItemRepository over store.
func NewItemRepository(store DocumentStore) *ItemRepository {
	return &ItemRepository{Store: store}
}

// GetItem returns the standalone item with id, including its comments.
func (r *ItemRepository) GetItem(ctx context.Context, id string) (*models.Item, error) {
	doc, err := r.Store.FindByID(ctx, ItemsPartition, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	var item models.Item
	if err := doc.Decode(&item); err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	normalizeItem(&item)
	return &item, nil
}

// ListItems returns every standalone item.
func (r *ItemRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	return r.listItems(ctx, nil)
}

// ListItemsByCollection returns the standalone items owned by collectionID.
// An unknown collection yields ErrNotFound.
func (r *ItemRepository) ListItemsByCollection(ctx context.Context, collectionID string) ([]models.Item, error) {
	// ChildCount checks existence without transferring the items array.
	if _, err := r.Store.ChildCount(ctx, CollectionsPartition, collectionID, itemsField); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return r.listItems(ctx, docstore.Filter{"collectionId": collectionID})
}

func (r *ItemRepository) listItems(ctx context.Context, filter docstore.Filter) ([]models.Item, error) {
	docs, err := r.Store.FindAll(ctx, ItemsPartition, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items, err := docstore.DecodeAll[models.Item](docs)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	for i := range items {
		normalizeItem(&items[i])
	}
	return items, nil
}

// ListComments returns the comments of itemID in append order. An item
// without a comments field yields an empty slice.
func (r *ItemRepository) ListComments(ctx context.Context, itemID string) ([]models.Comment, error) {
	doc, err := r.Store.Children(ctx, ItemsPartition, itemID, commentsField)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	var comments []models.Comment
	if err := doc.Decode(&comments); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// CommentCount returns how many comments itemID has.
func (r *ItemRepository) CommentCount(ctx context.Context, itemID string) (int, error) {
	n, err := r.Store.ChildCount(ctx, ItemsPartition, itemID, commentsField)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

// AddComment appends a comment to itemID. CreatedAt is stamped by the store
// inside the append, so stamps follow comment order; the atomic append is the
// only mutation, so concurrent comments are never lost.
func (r *ItemRepository) AddComment(ctx context.Context, itemID, author, text string) (*models.Comment, error) {
	author = strings.TrimSpace(author)
	text = strings.TrimSpace(text)
	switch {
	case author == "":
		return nil, docstore.Required("author")
	case text == "":
		return nil, docstore.Required("text")
	}

	c := commentDoc{
		ID:     docstore.NewID(),
		Author: author,
		Text:   text,
	}
	doc, err := r.Store.AppendChildStamped(ctx, ItemsPartition, itemID, commentsField, createdAtField, c)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	var stored models.Comment
	if err := doc.Decode(&stored); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &stored, nil
}
