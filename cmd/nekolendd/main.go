package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/akintewe/Neko-Oracle-RWA/audit"
	"github.com/akintewe/Neko-Oracle-RWA/config"
	"github.com/akintewe/Neko-Oracle-RWA/core/events"
	"github.com/akintewe/Neko-Oracle-RWA/gateway/middleware"
	"github.com/akintewe/Neko-Oracle-RWA/gateway/routes"
	"github.com/akintewe/Neko-Oracle-RWA/native/lending"
	"github.com/akintewe/Neko-Oracle-RWA/native/token"
	"github.com/akintewe/Neko-Oracle-RWA/observability/logging"
	"github.com/akintewe/Neko-Oracle-RWA/observability"
	telemetry "github.com/akintewe/Neko-Oracle-RWA/observability/otel"
	"github.com/akintewe/Neko-Oracle-RWA/oracle"
	"github.com/akintewe/Neko-Oracle-RWA/storage"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.toml", "path to daemon configuration")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	slogger := logging.Setup("nekolendd", cfg.Environment)
	logger := log.New(os.Stdout, "nekolendd ", log.LstdFlags|log.Lmsgprefix)

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
			ServiceName: "nekolendd",
			Environment: cfg.Environment,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			Headers:     telemetry.ParseHeaders(cfg.Telemetry.HeadersLine),
			Metrics:     cfg.Telemetry.Metrics,
			Traces:      cfg.Telemetry.Traces,
		})
		if err != nil {
			slogger.Error("failed to initialise telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTelemetry(ctx)
		}()
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatalf("create data dir: %v", err)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		logger.Fatalf("open state db: %v", err)
	}
	defer db.Close()

	journal, err := audit.Open(cfg.AuditDBPath, logging.Component(slogger, "audit"))
	if err != nil {
		logger.Fatalf("open audit journal: %v", err)
	}

	prices := oracle.NewStatic(cfg.Oracle.Decimals)
	emitter := events.Multi(journal, observability.Lending())

	ledger := token.NewLedger()
	ledger.SetState(token.NewKVState(db))
	ledger.SetPauses(cfg.Pauses)
	ledger.SetEmitter(emitter)

	engine := lending.NewEngine(cfg.PoolAddr())
	engine.SetState(lending.NewKVState(db))
	engine.SetTokens(ledger)
	engine.SetRWAOracle(prices)
	engine.SetReflectorOracle(prices)
	engine.SetEmitter(emitter)

	obs := middleware.NewObservability(middleware.ObservabilityConfig{
		ServiceName:   "nekolendd",
		MetricsPrefix: "neko_gateway",
		LogRequests:   true,
		Enabled:       true,
	}, logger)

	var authenticator *middleware.Authenticator
	if cfg.Auth.Enabled {
		secret, err := cfg.Auth.HMACSecretValue()
		if err != nil {
			logger.Fatalf("resolve auth secret: %v", err)
		}
		authenticator = middleware.NewAuthenticator(middleware.AuthConfig{
			Enabled:    true,
			HMACSecret: secret,
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			ClockSkew:  time.Duration(cfg.Auth.ClockSkewSeconds) * time.Second,
		}, logger)
	}

	rateLimits := make(map[string]middleware.RateLimit, len(cfg.RateLimit))
	for name, limit := range cfg.RateLimit {
		if limit.RequestsPerMinute <= 0 {
			continue
		}
		rateLimits[name] = middleware.RateLimit{
			RequestsPerMinute: limit.RequestsPerMinute,
			Burst:             limit.Burst,
		}
	}
	limiter := middleware.NewRateLimiter(rateLimits, logger)

	handler, err := routes.New(routes.Config{
		Engine:        engine,
		Ledger:        ledger,
		Prices:        prices,
		Authenticator: authenticator,
		RateLimiter:   limiter,
		Observability: obs,
	})
	if err != nil {
		logger.Fatalf("build router: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slogger.Info("gateway listening",
			"address", cfg.ListenAddress,
			"env", cfg.Environment,
			"pool", strings.TrimSpace(cfg.PoolAddress),
		)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		slogger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slogger.Error("graceful shutdown failed", "error", err)
	}
}
