package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/config"
	"github.com/hunchagency/dotfile/internal/filing"
	"github.com/hunchagency/dotfile/internal/graph"
	"github.com/hunchagency/dotfile/internal/ledger"
	"github.com/hunchagency/dotfile/internal/records"
	"github.com/hunchagency/dotfile/internal/relay"
	"github.com/hunchagency/dotfile/internal/server"
)

// shutdownGrace bounds how long in-flight filings may finish after a
// termination signal.
const shutdownGrace = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the filing webhook service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg := resolvedCfg

	if err := config.ValidateServe(cfg); err != nil {
		return err
	}

	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("dotfile starting",
		slog.String("version", version),
		slog.String("listen", cfg.Service.ListenAddr),
		slog.String("resolver_mode", cfg.DocumentStore.ResolverMode),
		slog.String("mover", cfg.DocumentStore.Mover),
	)

	token := graph.NewClientCredentials(
		cfg.DocumentStore.TenantID,
		cfg.DocumentStore.ClientID,
		cfg.DocumentStore.ClientSecret,
		logger,
	)
	drive := graph.NewClient(graph.DefaultBaseURL, defaultHTTPClient(), token, logger)

	store := records.NewClient(
		cfg.RecordStore.BaseURL,
		cfg.RecordStore.APIKey,
		cfg.RecordStore.BaseID,
		cfg.RecordStore.ProjectsTable,
		cfg.RecordStore.ActivityTable,
		defaultHTTPClient(),
		logger,
	)

	oracle, err := classify.NewOracle(
		cfg.Classifier.Provider,
		cfg.Classifier.APIKey,
		cfg.Classifier.Model,
		cfg.Service.InternalDomain,
		logger,
	)
	if err != nil {
		return fmt.Errorf("building classifier: %w", err)
	}

	classifier := classify.New(
		oracle,
		cfg.Service.InternalDomain,
		time.Duration(cfg.Classifier.TimeoutSeconds)*time.Second,
		logger,
	)

	staging := filing.NewStaging(drive, cfg.DocumentStore.RootSiteURL, cfg.DocumentStore.StagingPath)

	var mover filing.Mover = filing.NewGraphMover(drive, staging, logger)
	if cfg.DocumentStore.Mover == "relay" {
		mover = relay.NewMover(
			cfg.Relay.URL,
			cfg.DocumentStore.RootSiteURL,
			cfg.DocumentStore.StagingPath,
			time.Duration(cfg.Relay.TimeoutSeconds)*time.Second,
			logger,
		)
	}

	engineCfg := &filing.EngineConfig{
		Resolver:   filing.NewResolver(drive, store, filing.ResolverMode(cfg.DocumentStore.ResolverMode), logger),
		Classifier: classifier,
		Rounds:     filing.NewRoundAllocator(drive, logger),
		Mover:      mover,
		Store:      store,
		Logger:     logger,
	}

	srvCfg := &server.Config{
		Classifier: classifier,
		Resolver:   engineCfg.Resolver,
		Staging:    staging,
		Version:    version,
		Logger:     logger,
	}

	// Assign the ledger only when one is open: a nil *ledger.Store
	// stored in the interface would defeat the nil checks downstream.
	if cfg.Ledger.Path != "" {
		led, err := ledger.Open(cfg.Ledger.Path, logger)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}
		defer led.Close()

		engineCfg.Ledger = led
		srvCfg.History = led
	}

	srvCfg.Engine = filing.NewEngine(engineCfg)

	srv := &http.Server{
		Addr:    cfg.Service.ListenAddr,
		Handler: server.New(srvCfg).Handler(),
		// A filing holds the handler for the full pipeline: oracle,
		// folder ops, and possibly a 120s relay call.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)

	g.Go(func() error {
		logger.Info("listening", slog.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		logger.Info("shutting down")

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
