// Package repository provides typed views over the document store for
// collections, items with their comment streams, and users.
package repository

import (
	"context"

	"github.com/atinyakov/catalog/internal/docstore"
)

// Partition names in the document store.
const (
	CollectionsPartition = "collections"
	ItemsPartition       = "items"
	UsersPartition       = "users"
)

// Child array fields.
const (
	itemsField     = "items"
	commentsField  = "comments"
	createdAtField = "createdAt"
)

// DocumentStore defines the document operations the repositories need.
// *docstore.Store implements it.
type DocumentStore interface {
	// Insert persists doc under a fresh id and returns the id.
	Insert(ctx context.Context, collection string, doc any) (string, error)
	// FindByID loads one document.
	FindByID(ctx context.Context, collection, id string) (docstore.Document, error)
	// FindAll loads every document of a collection matching filter.
	FindAll(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error)
	// AppendChildStamped appends child with stampField set by the store's
	// clock and returns the stored element.
	AppendChildStamped(ctx context.Context, collection, parentID, field, stampField string, child any) (docstore.Document, error)
	// InsertWithParent persists doc and appends child to the parent's array
	// in one transaction.
	InsertWithParent(ctx context.Context, collection, id string, doc any, parent docstore.Parent, child any) error
	// Children loads only the array at field.
	Children(ctx context.Context, collection, parentID, field string) (docstore.Document, error)
	// ChildCount returns the length of the array at field.
	ChildCount(ctx context.Context, collection, parentID, field string) (int, error)
}

var _ DocumentStore = (*docstore.Store)(nil)
