package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	// События back office (после локального применения)
	EventTypeOrderUpdated EventType = "order.updated"
	EventTypeOrderDeleted EventType = "order.deleted"

	// События витрины, публикуемые хранилищем
	EventTypeStoreOrderCreated EventType = "store.order.created"
	EventTypeStoreOrderDeleted EventType = "store.order.deleted"
)

// Topics для Kafka
const (
	TopicOrderEvents  = "backoffice.order.events"
	TopicStoreChanges = "storefront.order.changes"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	ID        string             `json:"id"`
	EventType EventType          `json:"event_type"`
	OrderID   string             `json:"order_id"`
	Change    string             `json:"change,omitempty"`
	Status    domain.OrderStatus `json:"status,omitempty"`
	Total     int64              `json:"total,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID domain.OrderID) *OrderEvent {
	return &OrderEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		OrderID:   orderID.String(),
		Timestamp: time.Now().UTC(),
	}
}

// WithOrder дополняет событие текущим состоянием заказа.
func (e *OrderEvent) WithOrder(order domain.Order) *OrderEvent {
	e.Status = order.Status
	e.Total = order.Total
	return e
}
