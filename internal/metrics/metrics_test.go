package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStoreOp_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(storeOperations.WithLabelValues("append_child", "items", "ok"))

	ObserveStoreOp("append_child", "items", "ok", time.Now())
	ObserveStoreOp("append_child", "items", "ok", time.Now())

	after := testutil.ToFloat64(storeOperations.WithLabelValues("append_child", "items", "ok"))
	assert.Equal(t, before+2, after)
}

func TestSetStoreUp(t *testing.T) {
	SetStoreUp(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(storeUp))

	SetStoreUp(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(storeUp))
}

func TestHandler_ExposesCatalogMetrics(t *testing.T) {
	ObserveHTTPRequest(http.MethodGet, "/items/{id}", http.StatusOK, time.Now())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_http_requests_total")
}
