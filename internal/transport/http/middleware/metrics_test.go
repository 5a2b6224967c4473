package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("failed to create http metrics: %v", err)
	}

	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/api/v1/resources/:kind", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	for _, path := range []string{"/api/v1/resources/users", "/api/v1/resources/kyc", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	templated := prometheus.Labels{"method": http.MethodGet, "route": "/api/v1/resources/:kind", "status": "202"}
	if got := testutil.ToFloat64(metrics.Requests.With(templated)); got != 2 {
		t.Fatalf("expected 2 templated requests, got %v", got)
	}
	unmatched := prometheus.Labels{"method": http.MethodGet, "route": "unmatched", "status": "404"}
	if got := testutil.ToFloat64(metrics.Requests.With(unmatched)); got != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.InFlight); got != 0 {
		t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
	}
}

func TestHTTPMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	second, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}
	if first.Requests != second.Requests {
		t.Fatal("expected the existing counter to be reused")
	}
}

func TestHTTPMetricsNilHandlerPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var metrics *HTTPMetrics
	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}
