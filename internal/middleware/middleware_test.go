package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atinyakov/catalog/internal/metrics"
)

func bufferLogger(buf *bytes.Buffer) *zap.Logger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(buf), zap.DebugLevel))
}

func TestWithRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	h := WithRequestLogging(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items/abc/comments", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	line := buf.String()
	assert.Contains(t, line, `"method":"POST"`)
	assert.Contains(t, line, `"path":"/items/abc/comments"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"bytes":5`)
}

func TestWithRequestLogging_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := WithRequestLogging(bufferLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestWithMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(WithMetrics)
	r.Get("/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/42", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.Contains(t, body, `route="/widgets/{id}"`)
	assert.Contains(t, body, `status="204"`)
	assert.NotContains(t, body, `route="/widgets/42"`)
}
