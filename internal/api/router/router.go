package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nirvista/leadcapture/internal/datastore"
	httpmiddleware "github.com/nirvista/leadcapture/internal/http/middleware"
	"github.com/nirvista/leadcapture/internal/leads"
	"github.com/nirvista/leadcapture/pkg/logging"
)

// LivenessMessage is the body of GET /.
const LivenessMessage = "API is running..."

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	Datastore          *datastore.Monitor
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg == nil || cfg.LeadsHandler == nil {
		panic("router: leads handler required")
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", liveness)
	r.Get("/ready", readiness(cfg.Datastore))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/leads", cfg.LeadsHandler.CreateLead)
	})

	return r
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(LivenessMessage))
}

// readiness reports the datastore connection state. Unlike GET / it fails
// while the datastore is unreachable.
func readiness(monitor *datastore.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		state := monitor.State()
		status := http.StatusOK
		body := map[string]string{"status": "ready", "state": state.String()}
		if state != datastore.StateConnected {
			status = http.StatusServiceUnavailable
			body["status"] = "not_ready"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
