// Package lifecycle содержит чистые функции жизненного цикла заказа:
// переходы статусов, полный отказ и снятие отдельных позиций.
// Функции не обращаются к сети и не меняют входной заказ.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// CascadeReason записывается в заказ, когда с него сняли последнюю позицию.
const CascadeReason = "All items rejected"

// Result — итог применения движка к заказу.
type Result struct {
	// Order — новое состояние (при Changed == false совпадает со входным).
	Order domain.Order
	// Notification пустое, если изменений не было.
	Notification domain.Notification
	// Event — тип события для timeline.
	Event   string
	Changed bool
}

type step struct {
	to      domain.OrderStatus
	message string
	event   string
}

// forward — единственные допустимые переходы внутри активного цикла.
var forward = map[domain.OrderStatus]step{
	domain.OrderStatusPending:   {to: domain.OrderStatusPreparing, message: "Order #%s Accepted!", event: domain.EventOrderAccepted},
	domain.OrderStatusPreparing: {to: domain.OrderStatusReady, message: "Order #%s Marked Ready!", event: domain.EventOrderMarkedReady},
	domain.OrderStatusReady:     {to: domain.OrderStatusDelivered, message: "Order #%s Completed!", event: domain.EventOrderCompleted},
}

// Transition переводит заказ в requested, если это следующий шаг цикла.
// Любой другой запрос — no-op без уведомления.
func Transition(order domain.Order, requested domain.OrderStatus) Result {
	next, ok := forward[order.Status]
	if !ok || next.to != requested {
		return Result{Order: order}
	}

	updated := order.Clone()
	updated.Status = next.to
	return Result{
		Order: updated,
		Notification: domain.Notification{
			Message: fmt.Sprintf(next.message, order.ID),
			Kind:    domain.NotificationSuccess,
		},
		Event:   next.event,
		Changed: true,
	}
}

// NextStatus возвращает следующий статус цикла (false для терминальных).
func NextStatus(status domain.OrderStatus) (domain.OrderStatus, bool) {
	next, ok := forward[status]
	return next.to, ok
}

// RejectOrder отклоняет заказ целиком. Витрина предлагает это только для Pending и Preparing,
// но движок допускает любой активный статус. Терминальный заказ не меняется.
func RejectOrder(order domain.Order, reason string) (Result, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Result{Order: order}, domain.ErrReasonRequired
	}
	if !order.Status.Active() {
		return Result{Order: order}, nil
	}

	updated := order.Clone()
	updated.Status = domain.OrderStatusCancelled
	updated.RejectionReason = reason
	return Result{
		Order: updated,
		Notification: domain.Notification{
			Message: fmt.Sprintf("Order #%s Rejected", order.ID),
			Kind:    domain.NotificationError,
		},
		Event:   domain.EventOrderRejected,
		Changed: true,
	}, nil
}
