// Package reconcile применяет изменения заказов локально (оптимистично) и
// распространяет их в удалённое хранилище.
package reconcile

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/events"
	"github.com/vladislavdragonenkov/backoffice/internal/lifecycle"
	"github.com/vladislavdragonenkov/backoffice/internal/metrics"
)

const defaultSyncTimeout = 10 * time.Second

// Имена операций для логов и метрик.
const (
	OpRefresh     = "refresh"
	OpAccept      = "accept"
	OpMarkReady   = "mark_ready"
	OpComplete    = "complete"
	OpTransition  = "transition"
	OpRejectOrder = "reject_order"
	OpRejectItem  = "reject_item"
	OpDelete      = "delete"
)

// Outcome — результат пользовательской операции.
type Outcome struct {
	Order        domain.Order        `json:"order"`
	Notification domain.Notification `json:"notification"`
	Changed      bool                `json:"changed"`
}

// Reconciler — единственный писатель локального кэша заказов.
//
// Изменения заказа применяются к кэшу сразу, затем в хранилище уходит PATCH с
// изменившимися полями. Ошибка PATCH только логируется: локальное состояние не
// откатывается и повторных попыток нет. Удаление исторических записей, наоборот,
// откатывается при ошибке.
type Reconciler struct {
	mu sync.Mutex

	cache    domain.OrderCache
	store    domain.RemoteOrderStore
	notifier domain.Notifier
	timeline domain.TimelineRepository
	bus      *events.Bus
	metrics  *metrics.ReconcileMetrics
	logger   *log.Entry

	syncTimeout time.Duration
	now         func() time.Time
	queue       *syncQueue

	local      map[domain.OrderID]*localState
	refreshSeq uint64
}

// Option настраивает Reconciler.
type Option func(*Reconciler)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics включает метрики (по умолчанию выключены).
func WithMetrics(m *metrics.ReconcileMetrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// WithTimeline включает запись событий жизненного цикла.
func WithTimeline(timeline domain.TimelineRepository) Option {
	return func(r *Reconciler) {
		r.timeline = timeline
	}
}

// WithEventBus включает публикацию событий в шину.
func WithEventBus(bus *events.Bus) Option {
	return func(r *Reconciler) {
		r.bus = bus
	}
}

// WithSyncTimeout ограничивает время одного запроса к хранилищу.
func WithSyncTimeout(timeout time.Duration) Option {
	return func(r *Reconciler) {
		if timeout > 0 {
			r.syncTimeout = timeout
		}
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// New создаёт Reconciler.
func New(cache domain.OrderCache, store domain.RemoteOrderStore, notifier domain.Notifier, options ...Option) *Reconciler {
	r := &Reconciler{
		cache:       cache,
		store:       store,
		notifier:    notifier,
		logger:      log.WithField("component", "reconcile"),
		syncTimeout: defaultSyncTimeout,
		now:         time.Now,
		local:       make(map[domain.OrderID]*localState),
	}
	for _, option := range options {
		option(r)
	}
	r.queue = newSyncQueue(r.execute)
	return r
}

// Refresh перезагружает кэш из хранилища (GET /orders). При ошибке кэш не меняется.
// Заказы с неотправленными или неудавшимися изменениями и удаляемые заказы
// сохраняют локальное состояние.
func (r *Reconciler) Refresh(ctx context.Context) (int, error) {
	r.mu.Lock()
	r.refreshSeq++
	seq := r.refreshSeq
	r.mu.Unlock()

	start := time.Now()
	orders, err := r.store.FetchAll(ctx)
	r.recordSync(http.MethodGet, err, time.Since(start))
	if err != nil {
		r.recordOperation(OpRefresh, metrics.ResultFailure)
		r.logger.WithError(err).Warn("failed to fetch orders, keeping cached state")
		return 0, fmt.Errorf("fetch orders: %w", err)
	}

	r.mu.Lock()
	merged, kept := r.mergeFetchedLocked(orders, seq)
	r.cache.Load(merged)
	count := r.cache.Len()
	r.mu.Unlock()

	if kept > 0 {
		r.logger.WithField("orders", kept).Debug("kept local state for orders with unsynced changes")
	}

	for _, order := range orders {
		if errs := order.ValidateInvariants(); len(errs) > 0 {
			r.logger.WithFields(log.Fields{
				"order_id": order.ID,
				"problems": errs,
			}).Warn("fetched order violates invariants")
		}
	}

	if r.metrics != nil {
		r.metrics.SetCachedOrders(count)
	}
	r.recordOperation(OpRefresh, metrics.ResultApplied)
	r.logger.WithField("orders", count).Info("order cache refreshed")
	return count, nil
}

// List возвращает снимок кэша.
func (r *Reconciler) List() []domain.Order {
	return r.cache.List()
}

// Get возвращает заказ из кэша.
func (r *Reconciler) Get(id domain.OrderID) (domain.Order, error) {
	return r.cache.Get(id)
}

// Timeline возвращает события заказа (пусто, если timeline не подключён).
func (r *Reconciler) Timeline(id domain.OrderID) ([]domain.TimelineEvent, error) {
	if r.timeline == nil {
		return nil, nil
	}
	return r.timeline.List(id)
}

// Accept переводит Pending → Preparing.
func (r *Reconciler) Accept(id domain.OrderID) (Outcome, error) {
	return r.transition(OpAccept, id, domain.OrderStatusPreparing)
}

// MarkReady переводит Preparing → Ready.
func (r *Reconciler) MarkReady(id domain.OrderID) (Outcome, error) {
	return r.transition(OpMarkReady, id, domain.OrderStatusReady)
}

// Complete переводит Ready → Delivered.
func (r *Reconciler) Complete(id domain.OrderID) (Outcome, error) {
	return r.transition(OpComplete, id, domain.OrderStatusDelivered)
}

// Transition запрашивает произвольный статус; недопустимый запрос — no-op.
func (r *Reconciler) Transition(id domain.OrderID, requested domain.OrderStatus) (Outcome, error) {
	return r.transition(OpTransition, id, requested)
}

func (r *Reconciler) transition(op string, id domain.OrderID, requested domain.OrderStatus) (Outcome, error) {
	return r.apply(op, id, "", func(order domain.Order) (lifecycle.Result, error) {
		return lifecycle.Transition(order, requested), nil
	})
}

// RejectOrder отклоняет заказ целиком с указанной причиной.
func (r *Reconciler) RejectOrder(id domain.OrderID, reason string) (Outcome, error) {
	return r.apply(OpRejectOrder, id, reason, func(order domain.Order) (lifecycle.Result, error) {
		return lifecycle.RejectOrder(order, reason)
	})
}

// RejectItem снимает позицию index с заказа.
func (r *Reconciler) RejectItem(id domain.OrderID, index int, reason string) (Outcome, error) {
	return r.apply(OpRejectItem, id, reason, func(order domain.Order) (lifecycle.Result, error) {
		if order.TotalDrifted() {
			// Сумма не исправляется: вычитание сохранит расхождение.
			r.logger.WithFields(log.Fields{
				"order_id":    order.ID,
				"total":       order.Total,
				"items_total": order.ItemsTotal(),
			}).Warn("order total drifted from items before rejection")
			if r.metrics != nil {
				r.metrics.RecordTotalDrift()
			}
		}
		return lifecycle.RejectItem(order, index, reason)
	})
}

// apply выполняет шаги оптимистичного обновления для одной операции.
func (r *Reconciler) apply(op string, id domain.OrderID, reason string, mutate func(domain.Order) (lifecycle.Result, error)) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := r.logger.WithFields(log.Fields{"order_id": id, "operation": op})

	var res lifecycle.Result
	before, after, err := r.cache.Update(id, func(order domain.Order) (domain.Order, error) {
		var mutateErr error
		res, mutateErr = mutate(order)
		if mutateErr != nil {
			return order, mutateErr
		}
		return res.Order, nil
	})
	if err != nil {
		if domain.IsInvalidArgument(err) {
			r.recordOperation(op, metrics.ResultInvalid)
			logger.WithError(err).Debug("operation rejected before mutation")
		}
		return Outcome{Order: before}, err
	}
	if !res.Changed {
		r.recordOperation(op, metrics.ResultNoop)
		logger.WithField("status", before.Status).Debug("operation is a no-op for current status")
		return Outcome{Order: after}, nil
	}

	r.enqueuePatch(id, domain.Diff(before, after))

	if res.Event == domain.EventOrderCancelledEmpty {
		reason = lifecycle.CascadeReason
	}
	r.appendTimeline(id, res.Event, reason)
	snapshot := after.Clone()
	r.publish(events.Event{Topic: events.TopicOrderUpdated, OrderID: id, Order: &snapshot, Type: res.Event, Reason: reason})

	if r.notifier != nil {
		r.notifier.Notify(res.Notification)
	}
	r.recordOperation(op, metrics.ResultApplied)
	logger.WithFields(log.Fields{
		"from": before.Status,
		"to":   after.Status,
	}).Info("order updated locally")

	return Outcome{Order: after, Notification: res.Notification, Changed: true}, nil
}

func (r *Reconciler) enqueuePatch(id domain.OrderID, patch domain.OrderPatch) {
	if patch.Empty() {
		return
	}
	if r.metrics != nil {
		r.metrics.SyncEnqueued()
	}
	r.trackLocked(id, false)
	r.queue.push(syncJob{
		orderID: id,
		method:  http.MethodPatch,
		fields:  patch.Fields(),
		run: func(ctx context.Context) error {
			return r.store.Patch(ctx, id, patch)
		},
		done: func(err error) {
			r.mu.Lock()
			r.settleLocked(id, err, false)
			r.mu.Unlock()
		},
	})
}

// DeleteHistorical удаляет заказ в терминальном статусе. Запись сразу убирается из
// кэша; если DELETE не удался, она возвращается на прежнее место.
// Метод ждёт ответа хранилища (или отмены ctx).
func (r *Reconciler) DeleteHistorical(ctx context.Context, id domain.OrderID) error {
	r.mu.Lock()
	order, err := r.cache.Get(id)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if !order.Status.Terminal() {
		r.mu.Unlock()
		r.recordOperation(OpDelete, metrics.ResultInvalid)
		return domain.ErrOrderNotHistorical
	}
	removed, pos, err := r.cache.Remove(id)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.trackLocked(id, true)
	r.mu.Unlock()

	result := make(chan error, 1)
	if r.metrics != nil {
		r.metrics.SyncEnqueued()
	}
	r.queue.push(syncJob{
		orderID: id,
		method:  http.MethodDelete,
		run: func(ctx context.Context) error {
			return r.store.Delete(ctx, id)
		},
		done: func(err error) {
			r.finishDelete(removed, pos, err)
			result <- err
		},
	})

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) finishDelete(removed domain.Order, pos int, err error) {
	r.mu.Lock()
	if err != nil {
		r.cache.Insert(pos, removed)
	}
	r.settleLocked(removed.ID, err, true)
	r.mu.Unlock()

	if err != nil {
		r.recordOperation(OpDelete, metrics.ResultFailure)
		if r.notifier != nil {
			r.notifier.Notify(domain.Notification{
				Message: fmt.Sprintf("Failed to delete order #%s", removed.ID),
				Kind:    domain.NotificationError,
			})
		}
		return
	}

	r.appendTimeline(removed.ID, domain.EventOrderDeleted, "")
	r.publish(events.Event{Topic: events.TopicOrderDeleted, OrderID: removed.ID, Type: domain.EventOrderDeleted})
	if r.notifier != nil {
		r.notifier.Notify(domain.Notification{
			Message: fmt.Sprintf("Order #%s Deleted", removed.ID),
			Kind:    domain.NotificationSuccess,
		})
	}
	r.recordOperation(OpDelete, metrics.ResultApplied)
	if r.metrics != nil {
		r.metrics.SetCachedOrders(r.cache.Len())
	}
}

// Wait ждёт отправки всех поставленных в очередь запросов.
func (r *Reconciler) Wait(ctx context.Context) error {
	return r.queue.wait(ctx)
}

// execute выполняет запрос к хранилищу вне контекста пользовательского запроса.
func (r *Reconciler) execute(job syncJob) {
	ctx, cancel := context.WithTimeout(context.Background(), r.syncTimeout)
	defer cancel()

	start := time.Now()
	err := job.run(ctx)
	duration := time.Since(start)

	if r.metrics != nil {
		r.metrics.SyncFinished()
	}
	r.recordSync(job.method, err, duration)

	logger := r.logger.WithFields(log.Fields{
		"order_id": job.orderID,
		"method":   job.method,
	})
	if err != nil {
		if job.method == http.MethodPatch {
			logger.WithError(err).WithField("fields", job.fields).Warn("order sync failed, keeping local state")
		} else {
			logger.WithError(err).Warn("order store request failed")
		}
	} else {
		logger.WithField("duration_ms", duration.Milliseconds()).Debug("order synced")
	}

	if job.done != nil {
		job.done(err)
	}
}

func (r *Reconciler) appendTimeline(id domain.OrderID, eventType, reason string) {
	if r.timeline == nil || eventType == "" {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  id,
		Type:     eventType,
		Reason:   reason,
		Occurred: r.now().UTC(),
	}
	if err := r.timeline.Append(event); err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"order_id": id,
			"event":    eventType,
		}).Warn("append timeline event failed")
	}
}

func (r *Reconciler) publish(event events.Event) {
	if r.bus == nil {
		return
	}
	if event.Occurred.IsZero() {
		event.Occurred = r.now().UTC()
	}
	r.bus.Publish(event)
}

func (r *Reconciler) recordOperation(op, result string) {
	if r.metrics != nil {
		r.metrics.RecordOperation(op, result)
	}
}

func (r *Reconciler) recordSync(method string, err error, duration time.Duration) {
	if r.metrics == nil {
		return
	}
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	r.metrics.RecordSync(method, result, duration)
}
