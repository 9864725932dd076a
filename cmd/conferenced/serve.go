package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"conferencereg/config"
	_ "conferencereg/docs"
	deliveryhttp "conferencereg/internal/delivery/http"
	"conferencereg/internal/delivery/http/controllers"
	"conferencereg/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// buildHandler wires every service behind the HTTP middleware chain.
func buildHandler(a *app) (http.Handler, error) {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}
	mailer, err := a.mailer()
	if err != nil {
		return nil, err
	}
	maxBytes := a.cfg.UploadMaxBytes()
	reg := controllers.NewRegistrationController(a.logger, a.registrations, a.export, a.cfg.App.Debug)
	docs := controllers.NewDocumentController(a.logger, a.documents(mailer), maxBytes, a.cfg.App.Debug)
	mux := deliveryhttp.NewRouter(reg, docs, promhttp.Handler())
	return deliveryhttp.NewHandler(mux, a.logger, a.cfg.Security.AllowedOrigins, a.cfg.App.Debug), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	handler, err := buildHandler(a)
	if err != nil {
		return err
	}
	if cfg.SMTP.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled. Use only in development.")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"mail_provider", cfg.SMTP.Provider,
			"registrations_file", cfg.Storage.RegistrationsFile,
			"config_sources", cfg.Sources,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
