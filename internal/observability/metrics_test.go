package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMetricsHandlerExposesCommissionCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCommission("direct", 40)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	metrics.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "inkwell_commissions_posted_total{tier=\"direct\"} 1") {
		t.Fatalf("expected body to contain the direct tier posting count, got: %s", body)
	}
	if !strings.Contains(body, "inkwell_commission_amount_bucket{tier=\"direct\"") {
		t.Fatalf("expected commission amount histogram to be present, got: %s", body)
	}
}

func TestObserveCommissionCountsPerTier(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCommission("direct", 40)
	metrics.ObserveCommission("direct", 15)
	metrics.ObserveCommission("indirect", 5)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rr.Body.String()
	if !strings.Contains(body, "inkwell_commissions_posted_total{tier=\"direct\"} 2") {
		t.Fatalf("expected two direct postings, got: %s", body)
	}
	if !strings.Contains(body, "inkwell_commissions_posted_total{tier=\"indirect\"} 1") {
		t.Fatalf("expected one indirect posting, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	metricsRR := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	metricsBody := metricsRR.Body.String()
	if !strings.Contains(metricsBody, "inkwell_http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", metricsBody)
	}
	if !strings.Contains(metricsBody, "inkwell_http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", metricsBody)
	}
}
