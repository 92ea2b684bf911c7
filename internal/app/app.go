// Package app собирает back office: API дашборда, метрики, синхронизацию с хранилищем и Kafka.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/backoffice/internal/health"
	"github.com/vladislavdragonenkov/backoffice/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/backoffice/internal/version"
)

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close dependencies")
		}
	}()

	ready := healthcheck.NewFlag("initial-load")
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("order-store", healthcheck.NewPingChecker("order-store", deps.Store))
	healthHandler.RegisterChecker("initial-load", ready)
	if deps.storageChecker != nil {
		healthHandler.RegisterChecker("timeline-storage", deps.storageChecker)
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	kafkaRT := initKafka(ctx, cfg, deps.Bus, deps.Reconciler, logger.WithField("layer", "kafka"))

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(deps.Reconciler, deps.Recorder, httpapi.Options{
		AllowedOrigins: cfg.CORSOrigins,
		DeleteTimeout:  cfg.DeleteTimeout,
		Logger:         logger.WithField("layer", "http"),
	})
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		kafkaRT.close(logger)
		return err
	}

	// Первая загрузка не блокирует старт: при недоступном хранилище дашборд
	// работает с пустым кэшем до следующего Refresh.
	go func() {
		n, err := initialLoad(ctx, deps.Reconciler, cfg.InitialLoad, logger)
		if err != nil {
			logger.WithError(err).Warn("initial order load failed")
			return
		}
		ready.MarkReady()
		logger.WithField("orders", n).Info("initial order load complete")
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API дашборда слушает %s", lis.Addr())
		errCh <- apiSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API")
		shutdownHTTP(apiSrv, logger)
		drainSyncs(deps, cfg.ShutdownTimeout, logger)
		kafkaRT.close(logger)
		return ctx.Err()
	case err := <-errCh:
		drainSyncs(deps, cfg.ShutdownTimeout, logger)
		kafkaRT.close(logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// drainSyncs дожидается отправки уже поставленных в очередь PATCH/DELETE.
func drainSyncs(deps *Dependencies, timeout time.Duration, logger *log.Entry) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := deps.Reconciler.Wait(ctx); err != nil {
		logger.WithError(err).Warn("pending order syncs were not flushed before shutdown")
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
