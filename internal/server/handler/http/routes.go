// Package http provides HTTP routing and handlers for the catalog service.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/catalog/internal/metrics"
	"github.com/atinyakov/catalog/internal/middleware"
)

// Pinger checks that the backing medium is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthTimeout bounds a single /healthz probe.
const healthTimeout = 2 * time.Second

// NewRouter constructs and returns an HTTP handler that serves
// the catalog API.
//
// Routes:
//
//	GET  /                         → banner
//	GET  /healthz                  → store ping
//	GET  /metrics                  → prometheus scrape
//	GET  /collections              → catalog.ListCollections
//	GET  /collections/top          → catalog.TopCollections
//	POST /collections              → catalog.CreateCollection
//	GET  /collections/{id}         → catalog.GetCollection
//	POST /collections/{id}/items   → catalog.AddItem
//	GET  /items                    → catalog.ListItems
//	GET  /items/latest             → catalog.LatestItems
//	GET  /items/{id}               → catalog.GetItem
//	GET  /items/{id}/comments      → catalog.ListComments (ETag aware)
//	POST /items/{id}/comments      → catalog.AddComment
//	GET  /users, GET /users/{id}   → users.ListUsers, users.GetUser
//	POST /users                    → users.Register
//	POST /login                    → users.Login
//
// Middleware chain (applied in order):
//  1. Recoverer                           — turns panics into 500
//  2. AllowContentType("application/json") — rejects non-JSON bodies
//  3. WithRequestLogging(logger)          — logs served requests
//  4. WithMetrics                         — per-route counters and latency
func NewRouter(
	catalog *CatalogHandler,
	users *UserHandler,
	health Pinger,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithMetrics)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello Collection Worlds!"))
	})
	r.Get("/healthz", healthHandler(health))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", catalog.ListCollections)
		r.Post("/", catalog.CreateCollection)
		r.Get("/top", catalog.TopCollections)
		r.Get("/{id}", catalog.GetCollection)
		r.Post("/{id}/items", catalog.AddItem)
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", catalog.ListItems)
		r.Get("/latest", catalog.LatestItems)
		r.Get("/{id}", catalog.GetItem)
		r.Get("/{id}/comments", catalog.ListComments)
		r.Post("/{id}/comments", catalog.AddComment)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.ListUsers)
		r.Post("/", users.Register)
		r.Get("/{id}", users.GetUser)
	})
	r.Post("/login", users.Login)

	return r
}

func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			writeMessage(w, http.StatusServiceUnavailable, "Document store unreachable.")
			return
		}
		writeMessage(w, http.StatusOK, "ok")
	}
}
