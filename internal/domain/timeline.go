package domain

import "time"

// Типы событий жизненного цикла заказа.
const (
	EventOrderAccepted       = "OrderAccepted"
	EventOrderMarkedReady    = "OrderMarkedReady"
	EventOrderCompleted      = "OrderCompleted"
	EventOrderRejected       = "OrderRejected"
	EventOrderItemRejected   = "OrderItemRejected"
	EventOrderCancelledEmpty = "OrderCancelledEmpty"
	EventOrderDeleted        = "OrderDeleted"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  OrderID   `json:"orderId"`
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}
