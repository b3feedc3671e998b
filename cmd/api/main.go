package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nirvista/leadcapture/internal/app/bootstrap"
	appconfig "github.com/nirvista/leadcapture/internal/config"
	"github.com/nirvista/leadcapture/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadcapture API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.LeadStore,
	)

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		logger.Error("failed to listen", "port", cfg.Port, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, ln); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// run serves the API on ln until ctx is cancelled, then drains in-flight
// requests and releases the datastore.
func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, ln net.Listener) error {
	store, err := bootstrap.BuildLeadStore(ctx, cfg, logger)
	if err != nil {
		_ = ln.Close()
		return err
	}

	api := bootstrap.BuildAPI(cfg, store, logger)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		api.Monitor.Run(monitorCtx)
	}()

	srv := &http.Server{
		Handler:      api.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down server...")
	case err := <-serveErr:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		runErr = errors.Join(runErr, err)
	}

	api.Monitor.Close()
	stopMonitor()
	<-monitorDone

	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("failed to close lead store", "error", err)
		runErr = errors.Join(runErr, err)
	}
	return runErr
}
