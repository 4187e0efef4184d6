package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/catalog/internal/models"
)

// roundTripperFunc allows mocking http.Client transports.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn, Timeout: time.Second}
}

// commentServer serves a comment stream with ETag support.
type commentServer struct {
	mu       sync.Mutex
	comments []models.Comment
	notMod   int
}

func (s *commentServer) add(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, models.Comment{ID: "c" + strconv.Itoa(len(s.comments)), Author: "bob", Text: text})
}

func (s *commentServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.URL.Path != "/items/i1/comments" {
		http.NotFound(w, r)
		return
	}
	if r.Method == http.MethodPost {
		var in models.NewComment
		_ = json.NewDecoder(r.Body).Decode(&in)
		c := models.Comment{ID: "c" + strconv.Itoa(len(s.comments)), Author: in.Author, Text: in.Text}
		s.comments = append(s.comments, c)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
		return
	}
	etag := `"c` + strconv.Itoa(len(s.comments)) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		s.notMod++
		w.WriteHeader(http.StatusNotModified)
		return
	}
	_ = json.NewEncoder(w).Encode(s.comments)
}

func TestPoll_ReportsOnlyNewComments(t *testing.T) {
	srv := &commentServer{}
	srv.add("first")
	ts := httptest.NewServer(srv)
	defer ts.Close()

	p := &Poller{Client: ts.Client(), BaseURL: ts.URL + "/", ItemID: "i1"}
	ctx := context.Background()

	fresh, err := p.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if len(fresh) != 1 || fresh[0].Text != "first" {
		t.Fatalf("first Poll = %+v; want [first]", fresh)
	}

	fresh, err = p.Poll(ctx)
	if err != nil || len(fresh) != 0 {
		t.Fatalf("unchanged Poll = %+v, %v; want nothing", fresh, err)
	}
	srv.mu.Lock()
	notMod := srv.notMod
	srv.mu.Unlock()
	if notMod != 1 {
		t.Errorf("304 responses = %d; want 1", notMod)
	}

	srv.add("second")
	srv.add("third")
	fresh, err = p.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if len(fresh) != 2 || fresh[0].Text != "second" || fresh[1].Text != "third" {
		t.Errorf("changed Poll = %+v; want [second third]", fresh)
	}
}

func TestPostComment(t *testing.T) {
	srv := &commentServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	p := &Poller{Client: ts.Client(), BaseURL: ts.URL, ItemID: "i1"}
	c, err := p.PostComment(context.Background(), "alice", "Nice find")
	if err != nil {
		t.Fatalf("PostComment returned error: %v", err)
	}
	if c.Author != "alice" || c.Text != "Nice find" || c.ID == "" {
		t.Errorf("PostComment = %+v", c)
	}
}

func TestPoll_NetworkError(t *testing.T) {
	p := &Poller{
		Client:  newTestClient(func(req *http.Request) (*http.Response, error) { return nil, errors.New("network down") }),
		BaseURL: "http://example.com",
		ItemID:  "i1",
	}
	_, err := p.Poll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "poll failed") {
		t.Errorf("expected network failure, got %v", err)
	}
}

func TestPoll_ServerError(t *testing.T) {
	p := &Poller{
		Client: newTestClient(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader(`{"message":"Item not found."}`)),
			}, nil
		}),
		BaseURL: "http://example.com",
		ItemID:  "i1",
	}
	_, err := p.Poll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "server error: 404 Item not found.") {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestPoll_InvalidJSON(t *testing.T) {
	p := &Poller{
		Client: newTestClient(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader("not-json")),
			}, nil
		}),
		BaseURL: "http://example.com",
		ItemID:  "i1",
	}
	_, err := p.Poll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid response") {
		t.Errorf("expected JSON decode error, got %v", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := &commentServer{}
	srv.add("hello")
	ts := httptest.NewServer(srv)
	defer ts.Close()

	p := &Poller{Client: ts.Client(), BaseURL: ts.URL, ItemID: "i1", Interval: 10 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan []models.Comment, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, func(c []models.Comment) { got <- c })
	}()

	select {
	case c := <-got:
		if len(c) != 1 || c[0].Text != "hello" {
			t.Errorf("Run delivered %+v; want [hello]", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not deliver comments")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
