// Package client implements a polling client for item comment streams.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/catalog/internal/models"
)

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 5 * time.Second

// Poller fetches the comments of one item at a fixed interval. It sends the
// last ETag with every request, so an unchanged stream costs a 304, and it
// reports each comment id once.
type Poller struct {
	// Client is the HTTP client; http.DefaultClient if nil.
	Client *http.Client
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string
	// ItemID is the item whose comments are polled.
	ItemID string
	// Interval between polls; DefaultInterval if zero.
	Interval time.Duration
	// Logger records failed polls; the loop keeps running after them.
	Logger *zap.Logger

	mu   sync.Mutex
	etag string
	seen map[string]struct{}
}

func (p *Poller) httpClient() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func (p *Poller) commentsURL() string {
	return strings.TrimRight(p.BaseURL, "/") + "/items/" + p.ItemID + "/comments"
}

// Run polls until ctx is cancelled, calling onNew with the comments that
// were not seen before. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context, onNew func([]models.Comment)) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fresh, err := p.Poll(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("comment poll failed", zap.String("item_id", p.ItemID), zap.Error(err))
		case len(fresh) > 0:
			onNew(fresh)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll performs one conditional request and returns the comments not
// returned by an earlier Poll, in server order.
func (p *Poller) Poll(ctx context.Context) ([]models.Comment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.commentsURL(), nil)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	if p.etag != "" {
		req.Header.Set("If-None-Match", p.etag)
	}
	p.mu.Unlock()

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return nil, nil
	case http.StatusOK:
	default:
		return nil, serverError(resp)
	}

	var comments []models.Comment
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen == nil {
		p.seen = make(map[string]struct{})
	}
	var fresh []models.Comment
	for _, c := range comments {
		if _, ok := p.seen[c.ID]; ok {
			continue
		}
		p.seen[c.ID] = struct{}{}
		fresh = append(fresh, c)
	}
	p.etag = resp.Header.Get("ETag")
	return fresh, nil
}

// PostComment adds a comment to the poller's item and returns it as stored.
func (p *Poller) PostComment(ctx context.Context, author, text string) (*models.Comment, error) {
	body, err := json.Marshal(models.NewComment{Author: author, Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.commentsURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("post comment failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, serverError(resp)
	}
	var c models.Comment
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	return &c, nil
}

// serverError reads the {"message": ...} body of a failed response.
func serverError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		msg = body.Message
	}
	return fmt.Errorf("server error: %d %s", resp.StatusCode, msg)
}
