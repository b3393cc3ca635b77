package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	api "github.com/mind-engage/gradecalc/internal/api/http"
	"github.com/mind-engage/gradecalc/internal/config"
	"github.com/mind-engage/gradecalc/internal/db"
	"github.com/mind-engage/gradecalc/internal/grading"
	"github.com/mind-engage/gradecalc/internal/logging"
	"github.com/mind-engage/gradecalc/internal/metrics"
	"github.com/mind-engage/gradecalc/internal/student"
	syncx "github.com/mind-engage/gradecalc/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	// --- Store ---
	store := student.NewInMemoryStore()
	var events api.EventLog
	if drv := db.Driver(cfg.StoreDriver); drv != db.DriverMemory {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		dbh, err := db.Open(ctx, drv, cfg.DBDSN)
		cancel()
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		defer dbh.Close()
		store = student.NewSQLStore(dbh, cfg.StoreDriver)
		events = syncx.NewEventRepo(dbh, cfg.SiteID)
	}

	// --- Metrics ---
	var (
		gatherer prometheus.Gatherer
		observer *metrics.CalculationObserver
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observer, err = metrics.NewCalculationObserver("gradecalc", reg)
		if err != nil {
			log.Fatalf("metrics: %v", err)
		}
		gatherer = reg
	}

	handler := api.NewRouter(api.RouterConfig{
		Students: api.StudentDeps{
			Store:      store,
			Calculator: grading.NewCalculator(),
			Events:     events,
			Metrics:    observer,
			Log:        logger,
		},
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Gatherer:       gatherer,
		StaticDir:      cfg.StaticDir,
	})

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "metrics", cfg.MetricsEnabled)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
