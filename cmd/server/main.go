package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/app"
	"github.com/kevin07696/ctechpay-connector/internal/config"
	checkoutHandler "github.com/kevin07696/ctechpay-connector/internal/handlers/checkout"
	"github.com/kevin07696/ctechpay-connector/pkg/middleware"
	"github.com/kevin07696/ctechpay-connector/pkg/observability"
	"github.com/kevin07696/ctechpay-connector/pkg/shutdown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ctechpay-connector: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(cfg.Logger, cfg.Server.Environment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting CTechPay connector",
		zap.String("environment", cfg.Server.Environment),
		zap.Strings("partitions", cfg.Database.Partitions),
		zap.String("default_partition", cfg.Database.DefaultPartition),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownMgr := shutdown.NewManager(logger, cfg.Server.ShutdownTimeout)

	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startCancel()

	partitions, err := app.OpenPartitions(startCtx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open database partitions: %w", err)
	}
	shutdownMgr.RegisterNoErr("database-partitions", partitions.Close)
	partitions.StartPoolMonitoring(ctx, 30*time.Second)

	// Metrics, health and gRPC health come up before bootstrap so probes see "starting"
	pingers := make(map[string]observability.Pinger)
	for name, p := range partitions.Pingers() {
		pingers[name] = p
	}
	healthChecker := observability.NewHealthChecker(pingers)

	metricsServer := observability.StartMetricsServer(cfg.Server.MetricsPort, healthChecker, logger)
	shutdownMgr.RegisterHTTPServer("metrics-server", metricsServer)

	grpcServer, err := observability.StartGRPCHealthServer(ctx, cfg.Server.GRPCHealthPort, healthChecker, logger)
	if err != nil {
		return fmt.Errorf("start gRPC health server: %w", err)
	}
	shutdownMgr.RegisterNoErr("grpc-health-server", grpcServer.GracefulStop)

	// Post-load hook: seed the provider token in every partition, never overwriting one
	bootstrapper, err := app.NewTokenBootstrapper(startCtx, cfg, partitions, logger)
	if err != nil {
		return err
	}
	if err := bootstrapper.ApplyAll(startCtx); err != nil {
		logger.Error("Token bootstrap failed for some partitions, continuing", zap.Error(err))
	}

	gateway := app.NewOrderGateway(cfg.Gateway, logger)
	service := app.NewCheckoutService(cfg, partitions, gateway, logger)
	handler := checkoutHandler.NewHandler(service, cfg.Server.StatusPagePath, cfg.Server.TrustProxy, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger)
	shutdownMgr.RegisterNoErr("rate-limiter", rateLimiter.Shutdown)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	if cfg.Server.TrustProxy {
		router.Use(chimw.RealIP)
	}
	router.Use(
		recoverer(logger),
		observability.HTTPMetrics,
		requestLogger(logger),
		rateLimiter.Middleware,
		middleware.NewSecurityHeaders(!cfg.Server.IsProduction()).Middleware,
	)
	handler.Routes(router)

	httpServer := &http.Server{
		Addr:              cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Two gateway attempts at most, each bounded by CTECHPAY_TIMEOUT
		WriteTimeout: 2*cfg.Gateway.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	shutdownMgr.RegisterHTTPServer("http-server", httpServer)

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			cancel()
		}
	}()

	healthChecker.SetReady(true)
	return shutdownMgr.WaitForShutdown(ctx)
}

// requestLogger logs one line per request; query strings are left out since they carry references
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// recoverer turns handler panics into a redirect-free 500 and an error log
func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
