package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/adapter/host"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/adapter/restapi"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/fallback"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/tracer"
	"go.uber.org/zap"
)

const usage = `usage: catalog <command> [flags]

commands:
  browse      list approved advertisements   [-search s] [-category c] [-city c]
  my-ads      list your advertisements        [-status s] [-search s] [-page n]
  sold        mark your advertisement as sold -id n
  favorites   show favorites                  [-remove id]
  sell        create an advertisement         -category n -brand n -model s -price n -description s -city s -phone s -photo path
  categories  list categories
  brands      list brands                     [-category n]
  validate    check the configured init data with the service
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	appLogger := logger.NewLogger(cfg.LoggerConfig())
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Catalog client starting",
		zap.String("service_name", cfg.ServiceName),
		zap.String("catalog_api_url", cfg.CatalogAPIURL),
		zap.String("command", args[0]),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp := tracer.InitTracer(ctx, cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)
	if cfg.PrometheusMetricsPort != "" {
		srv := metrics.NewMetricsServer(cfg.PrometheusMetricsPort, metricsManager.Registry)
		go func() {
			appLogger.Info("Starting Prometheus metrics server", zap.String("port", cfg.PrometheusMetricsPort))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctxShutdown); err != nil {
				appLogger.Error("Failed to shutdown metrics server", zap.Error(err))
			}
		}()
	}

	terminal := host.NewTerminal(os.Stdin, os.Stdout, host.TerminalConfig{
		InitData: cfg.HostInitData,
		UserID:   cfg.HostUserID,
		Username: cfg.HostUsername,
	}, appLogger)

	pipeline, err := restapi.NewPipeline(restapi.PipelineConfig{
		BaseURL:      cfg.CatalogAPIURL,
		Timeout:      cfg.RequestTimeout,
		AuthScheme:   cfg.AuthScheme,
		TunnelBypass: cfg.TunnelBypass,
	}, terminal, appLogger, metricsManager)
	if err != nil {
		appLogger.Error("Failed to initialize request pipeline", zap.Error(err))
		return 1
	}

	app := &app{
		cfg:      cfg,
		logger:   appLogger,
		metrics:  metricsManager,
		client:   restapi.NewClient(pipeline, appLogger),
		host:     terminal,
		static:   fallback.NewSource(),
		messages: usecase.DefaultMessages(cfg.Language),
		out:      os.Stdout,
	}

	if err := app.dispatch(ctx, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
