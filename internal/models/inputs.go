package models

// NewCollection holds the plain fields submitted to create a collection.
// Tags is comma separated and CreatedAt is an RFC 3339 timestamp.
type NewCollection struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Author      string `json:"author"`
	CreatedAt   string `json:"createdAt"`
	// Image is an already stored file reference.
	Image string `json:"image"`
}

// NewItem holds the plain fields submitted to add an item to a collection.
type NewItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Image       string `json:"image"`
}

// NewComment holds the fields submitted with a comment.
type NewComment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// NewUser holds the fields needed to store a user. The password is hashed
// before it reaches this type.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// Registration is the sign-up request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
