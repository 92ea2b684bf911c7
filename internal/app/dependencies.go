package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/events"
	healthcheck "github.com/vladislavdragonenkov/backoffice/internal/health"
	"github.com/vladislavdragonenkov/backoffice/internal/metrics"
	"github.com/vladislavdragonenkov/backoffice/internal/notify"
	"github.com/vladislavdragonenkov/backoffice/internal/remote"
	"github.com/vladislavdragonenkov/backoffice/internal/service/reconcile"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/memory"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store      *remote.Client
	Cache      domain.OrderCache
	Timeline   domain.TimelineRepository
	Bus        *events.Bus
	Metrics    *metrics.ReconcileMetrics
	Recorder   *notify.Recorder
	Reconciler *reconcile.Reconciler
	Logger     *log.Entry

	// storageChecker != nil, когда журнал хранится в PostgreSQL.
	storageChecker healthcheck.Checker
	closeFn        func() error
}

// NewDependencies собирает зависимости. Подключение к PostgreSQL открывается
// только при заданном PostgresDSN.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	store, err := remote.NewClient(cfg.StoreURL,
		remote.WithTimeout(cfg.StoreTimeout),
		remote.WithLogger(logger.WithField("layer", "order-store")),
	)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Store:    store,
		Cache:    memory.NewOrderCache(),
		Recorder: notify.NewRecorder(cfg.NotificationHistory),
		Metrics:  metrics.NewReconcileMetrics(),
		Logger:   logger,
	}

	if err := deps.initTimeline(ctx, cfg.PostgresDSN); err != nil {
		return nil, err
	}

	dropped := deps.Metrics
	deps.Bus = events.NewBus(events.WithDropHandler(func(topic events.Topic) {
		dropped.RecordDroppedEvent()
		logger.WithField("topic", topic).Debug("event dropped for slow subscriber")
	}))

	notifier := notify.Multi{
		notify.NewLogNotifier(logger.WithField("layer", "notify")),
		deps.Recorder,
	}

	deps.Reconciler = reconcile.New(deps.Cache, deps.Store, notifier,
		reconcile.WithLogger(logger.WithField("layer", "reconcile")),
		reconcile.WithMetrics(deps.Metrics),
		reconcile.WithTimeline(deps.Timeline),
		reconcile.WithEventBus(deps.Bus),
		reconcile.WithSyncTimeout(cfg.SyncTimeout),
	)
	return deps, nil
}

func (d *Dependencies) initTimeline(ctx context.Context, dsn string) error {
	if dsn == "" {
		d.Timeline = memory.NewTimelineRepository()
		return nil
	}

	pg, err := postgres.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open timeline storage: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return fmt.Errorf("migrate timeline storage: %w", err)
	}

	d.Timeline = postgres.NewTimelineRepository(pg)
	d.storageChecker = healthcheck.NewPingChecker("timeline-postgres", pg)
	d.closeFn = pg.Close
	d.Logger.Info("timeline stored in postgres")
	return nil
}

// Close освобождает шину и подключение к БД.
func (d *Dependencies) Close() error {
	if d.Bus != nil {
		d.Bus.Close()
	}
	if d.closeFn != nil {
		return d.closeFn()
	}
	return nil
}
