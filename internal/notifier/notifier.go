// Package notifier lets pollers detect new comments on an item without
// transferring the comment stream.
package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Revision identifies the state of an item's comment stream. Comments are
// append-only, so the revision grows by one with every append.
type Revision int

// ETag renders r as a strong HTTP entity tag.
func (r Revision) ETag() string {
	return `"c` + strconv.Itoa(int(r)) + `"`
}

// ParseETag reads an entity tag produced by Revision.ETag. Weak tags are
// accepted. ok is false for anything else.
func ParseETag(tag string) (r Revision, ok bool) {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
	if len(tag) < 4 || !strings.HasPrefix(tag, `"c`) || !strings.HasSuffix(tag, `"`) {
		return 0, false
	}
	n, err := strconv.Atoi(tag[2 : len(tag)-1])
	if err != nil || n < 0 {
		return 0, false
	}
	return Revision(n), true
}

// CommentCounter reports how many comments an item has.
type CommentCounter interface {
	CommentCount(ctx context.Context, itemID string) (int, error)
}

// Notifier answers change queries against the store on every call. Nothing
// is cached, so an append committed before the call is always observed.
type Notifier struct {
	counter CommentCounter
}

// New creates a Notifier reading from counter.
func New(counter CommentCounter) *Notifier {
	return &Notifier{counter: counter}
}

// Revision returns the current revision of itemID's comment stream.
func (n *Notifier) Revision(ctx context.Context, itemID string) (Revision, error) {
	count, err := n.counter.CommentCount(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("revision: %w", err)
	}
	return Revision(count), nil
}

// Changed reports whether itemID has comments newer than since, along with
// the current revision.
func (n *Notifier) Changed(ctx context.Context, itemID string, since Revision) (bool, Revision, error) {
	rev, err := n.Revision(ctx, itemID)
	if err != nil {
		return false, 0, err
	}
	return rev != since, rev, nil
}
