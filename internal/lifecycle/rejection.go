package lifecycle

import (
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// RejectItem снимает позицию index с заказа и переносит её в RemovedItems с причиной.
//
// Сумма уменьшается на цену позиции, а не пересчитывается заново: если сумма уже
// разошлась с позициями, расхождение сохраняется. Если позиций не осталось, заказ
// отменяется с причиной CascadeReason, даже если ранее была записана другая причина.
func RejectItem(order domain.Order, index int, reason string) (Result, error) {
	reason = strings.TrimSpace(reason)
	switch {
	case order.Status.Terminal():
		return Result{Order: order}, domain.ErrOrderTerminal
	case index < 0 || index >= len(order.Items):
		return Result{Order: order}, fmt.Errorf("%w: %d of %d", domain.ErrItemIndexOutOfRange, index, len(order.Items))
	case reason == "":
		return Result{Order: order}, domain.ErrReasonRequired
	}

	updated := order.Clone()
	item := updated.Items[index]

	updated.RemovedItems = append(updated.RemovedItems, domain.RemovedItem{LineItem: item, Reason: reason})
	updated.Items = append(updated.Items[:index:index], updated.Items[index+1:]...)
	updated.Total -= item.Price

	if len(updated.Items) == 0 {
		updated.Status = domain.OrderStatusCancelled
		updated.RejectionReason = CascadeReason
		return Result{
			Order: updated,
			Notification: domain.Notification{
				Message: fmt.Sprintf("Order #%s Cancelled (Empty)", order.ID),
				Kind:    domain.NotificationError,
			},
			Event:   domain.EventOrderCancelledEmpty,
			Changed: true,
		}, nil
	}

	return Result{
		Order: updated,
		Notification: domain.Notification{
			Message: "Item removed from order",
			Kind:    domain.NotificationSuccess,
		},
		Event:   domain.EventOrderItemRejected,
		Changed: true,
	}, nil
}
