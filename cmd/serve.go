package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhisek/parlo/internal/llm"
	"github.com/abhisek/parlo/internal/logging"
	"github.com/abhisek/parlo/internal/metrics"
	"github.com/abhisek/parlo/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tutor over a JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if env := os.Getenv("PARLO_ADDR"); env != "" && !cmd.Flags().Changed("addr") {
			addr = env
		}

		idle, _ := cmd.Flags().GetDuration("idle-timeout")
		maxSessions, _ := cmd.Flags().GetInt("max-sessions")

		level, _ := cmd.Flags().GetString("log-level")
		logFile, _ := cmd.Flags().GetString("log-file")
		opts := logging.Options{Level: level, File: logFile, JSON: true}
		if logFile == "" {
			opts.Writer = os.Stdout
		}
		logger, closeLog, err := logging.New(opts)
		if err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}
		defer closeLog()

		catalog, err := loadCatalog(cmd)
		if err != nil {
			return fmt.Errorf("load scenarios: %w", err)
		}

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		provider, cfg, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), logger)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		srv := server.New(server.Config{
			Provider: m.InstrumentProvider(provider),
			Sessions: st.SessionRepo(),
			Catalog:  catalog,
			Tutor:    tutorConfig(cmd),
			Metrics:  m,
			Gatherer: reg,
			Logger:   logger,

			IdleTimeout: idle,
			MaxSessions: maxSessions,
		})
		go sweep(ctx, srv, time.Minute)

		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", addr, "provider", cfg.Provider, "model", provider.ModelID())
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

// sweep prunes the session registry until ctx is done.
func sweep(ctx context.Context, srv *server.Server, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			srv.Prune(ctx)
		}
	}
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address (overrides PARLO_ADDR env var)")
	serveCmd.Flags().Duration("idle-timeout", server.DefaultIdleTimeout, "Drop live sessions idle for this long")
	serveCmd.Flags().Int("max-sessions", server.DefaultMaxSessions, "Maximum sessions held in memory")
}
