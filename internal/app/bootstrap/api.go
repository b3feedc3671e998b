package bootstrap

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nirvista/leadcapture/internal/api/router"
	appconfig "github.com/nirvista/leadcapture/internal/config"
	"github.com/nirvista/leadcapture/internal/datastore"
	"github.com/nirvista/leadcapture/internal/leads"
	"github.com/nirvista/leadcapture/internal/observability/metrics"
	"github.com/nirvista/leadcapture/pkg/logging"
)

// API is the assembled HTTP surface plus the monitor the caller must run.
type API struct {
	Handler  http.Handler
	Monitor  *datastore.Monitor
	Registry *prometheus.Registry
}

// BuildAPI wires metrics, the datastore monitor and the router around store.
func BuildAPI(cfg *appconfig.Config, store *LeadStore, logger *logging.Logger) *API {
	if store == nil {
		panic("bootstrap: lead store required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	leadMetrics := metrics.NewLeadMetrics(reg)

	monitor := datastore.NewMonitor(store.Name, store.Pinger, cfg.DatastoreProbeInterval, cfg.DatastoreConnectTimeout, logger)
	monitor.OnChange(func(s datastore.State) {
		leadMetrics.SetDatastoreReady(s == datastore.StateConnected)
	})

	handler := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(store.Repo, monitor, leadMetrics, logger),
		Datastore:          monitor,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &API{
		Handler:  handler,
		Monitor:  monitor,
		Registry: reg,
	}
}
