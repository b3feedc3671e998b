package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nirvista/leadcapture/internal/datastore"
	"github.com/nirvista/leadcapture/internal/leads"
	"github.com/nirvista/leadcapture/internal/observability/metrics"
	"github.com/nirvista/leadcapture/pkg/logging"
)

type testEnv struct {
	router  http.Handler
	repo    *leads.InMemoryRepository
	monitor *datastore.Monitor
	pingErr error
}

func newTestEnv(t *testing.T, connected bool) *testEnv {
	t.Helper()

	env := &testEnv{repo: leads.NewInMemoryRepository()}
	if !connected {
		env.pingErr = errors.New("connection refused")
	}

	logger := logging.New("error")
	env.monitor = datastore.NewMonitor("test", datastore.PingFunc(func(context.Context) error {
		return env.pingErr
	}), time.Second, time.Second, logger)
	env.monitor.Check(context.Background())

	reg := prometheus.NewRegistry()
	leadMetrics := metrics.NewLeadMetrics(reg)

	env.router = New(&Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(env.repo, env.monitor, leadMetrics, logger),
		Datastore:          env.monitor,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"*"},
	})
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestRouterLivenessEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(http.MethodGet, "/", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := rr.Body.String(); got != LivenessMessage {
		t.Errorf("expected body %q, got %q", LivenessMessage, got)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
}

func TestRouterReadinessEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(http.MethodGet, "/ready", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ready" || resp["state"] != "connected" {
		t.Errorf("unexpected readiness body %v", resp)
	}

	env.pingErr = errors.New("gone")
	env.monitor.Check(context.Background())

	rr = env.do(http.MethodGet, "/ready", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
	resp = map[string]string{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "not_ready" || resp["state"] != "disconnected" {
		t.Errorf("unexpected readiness body %v", resp)
	}
}

func TestRouterCreateLead(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(http.MethodPost, "/api/leads", `{"name":"Sarah Johnson","email":"sarah@company.com","phone":"+15551234567"}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var resp leads.CreateLeadResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data == nil || resp.Data.Name != "Sarah Johnson" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(env.repo.List()) != 1 {
		t.Errorf("expected one stored lead")
	}
}

func TestRouterCreateLeadWhileDisconnected(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(http.MethodPost, "/api/leads", `{"name":"Ann","email":"ann@example.com","phone":"1"}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["message"] != leads.MessageNotConnected {
		t.Errorf("unexpected message %v", resp["message"])
	}
	if len(env.repo.List()) != 0 {
		t.Errorf("expected nothing stored")
	}
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(http.MethodGet, "/api/leads", "")

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestRouterPreflight(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "https://landing.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://landing.example.com" {
		t.Errorf("unexpected allow origin %q", got)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	env.do(http.MethodPost, "/api/leads", `{"name":"","email":"a@b.com","phone":"1"}`)
	env.do(http.MethodPost, "/api/leads", `{"name":"Ann","email":"a@b.com","phone":"1"}`)

	rr := env.do(http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	text := string(body)
	for _, want := range []string{
		`leadcapture_leads_submissions_total{outcome="created"} 1`,
		`leadcapture_leads_submissions_total{outcome="invalid"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected metrics to contain %q", want)
		}
	}
}

func TestNewPanicsWithoutLeadsHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(&Config{})
}
