// Package models defines the catalog entities: collections, their items,
// item comments and users.
package models

import "time"

// Collection is a named group of items owned by an author.
type Collection struct {
	// ID is the unique, immutable identifier of the collection.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Description is free text shown with the collection.
	Description string `json:"description"`
	// Tags is an ordered set of labels.
	Tags []string `json:"tags"`
	// Author names the creator of the collection.
	Author string `json:"author"`
	// CreatedAt is fixed at creation.
	CreatedAt time.Time `json:"createdAt"`
	// Image is an optional reference to a stored blob.
	Image string `json:"image,omitempty"`
	// Items are the embedded items in insertion order.
	Items []CollectionItem `json:"items"`
	// Size is always len(Items). It is derived on read and never persisted.
	Size int `json:"size"`
}

// Item is a catalogued object. It is embedded in exactly one collection and
// also kept as a standalone document carrying its comment stream.
type Item struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collectionId,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Comments     []Comment `json:"comments"`
}

// CollectionItem is the copy of an item embedded in its collection. Comments
// live only on the standalone item.
type CollectionItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Embedded returns the copy of it stored in its collection.
func (it Item) Embedded() CollectionItem {
	return CollectionItem{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Tags:        it.Tags,
		Image:       it.Image,
		CreatedAt:   it.CreatedAt,
	}
}

// Comment is one reader remark on an item. Comments are only ever appended.
type Comment struct {
	// ID is stable so clients can reconcile polled lists.
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	// CreatedAt is stamped by the server when the comment is appended.
	CreatedAt time.Time `json:"createdAt"`
}

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
