package kafka

import (
	"fmt"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// ChangePublisher публикует изменения записей хранилища витрины,
// сделанные в обход back office.
type ChangePublisher struct {
	publisher Publisher
	topic     string
}

// NewChangePublisher создаёт паблишер изменений хранилища.
func NewChangePublisher(publisher Publisher, topic string) *ChangePublisher {
	if topic == "" {
		topic = TopicStoreChanges
	}
	return &ChangePublisher{
		publisher: publisher,
		topic:     topic,
	}
}

// OrderCreated сообщает о новом заказе витрины.
func (p *ChangePublisher) OrderCreated(order domain.Order) error {
	return p.publish(NewOrderEvent(EventTypeStoreOrderCreated, order.ID).WithOrder(order))
}

// OrderDeleted сообщает об удалении записи.
func (p *ChangePublisher) OrderDeleted(id domain.OrderID) error {
	return p.publish(NewOrderEvent(EventTypeStoreOrderDeleted, id))
}

func (p *ChangePublisher) publish(event *OrderEvent) error {
	if p == nil || p.publisher == nil {
		return fmt.Errorf("kafka change publisher is not initialized")
	}
	return p.publisher.PublishEvent(p.topic, event.OrderID, event)
}
