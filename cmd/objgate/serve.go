package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/objgate"
	"github.com/dmitrymomot/objgate/internal/config"
	"github.com/dmitrymomot/objgate/internal/gateway"
	"github.com/dmitrymomot/objgate/middlewares"
	"github.com/dmitrymomot/objgate/pkg/logger"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	addConfigFlag(cmd.Flags(), &configPath)
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := config.ResolvePath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	log, flush, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		SentryDSN:   cfg.Logging.SentryDSN,
		Environment: cfg.Logging.Environment,
	}, middlewares.RequestIDExtractor(), gateway.TenantExtractor())
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	log.Info("configuration loaded", slog.String("path", path), slog.String("version", version))
	if !cfg.AuthType.IsSet() {
		log.Warn("auth-type is not set; every request is allowed")
	}

	svc, err := gateway.New(ctx, cfg, gateway.WithLogger(log))
	if err != nil {
		_ = flush(ctx)
		return err
	}

	app := objgate.New(svc.AppOptions()...)
	return app.Run(svc.Addr(), append(svc.RunOptions(),
		objgate.WithContext(ctx),
		objgate.ShutdownHook(flush),
	)...)
}
