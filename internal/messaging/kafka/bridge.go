package kafka

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/events"
)

const bridgeBuffer = 256

// Bridge пересылает события шины в Kafka. Публикация best-effort:
// ошибки логируются и на локальное состояние не влияют.
type Bridge struct {
	bus       *events.Bus
	publisher Publisher
	topic     string
	logger    *log.Entry

	cancels []func()
	wg      sync.WaitGroup
	once    sync.Once
}

// NewBridge создаёт мост. Пустой topic заменяется на TopicOrderEvents.
func NewBridge(bus *events.Bus, publisher Publisher, topic string) *Bridge {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &Bridge{
		bus:       bus,
		publisher: publisher,
		topic:     topic,
		logger:    log.WithField("component", "kafka-bridge"),
	}
}

// Start подписывается на топики изменений заказов.
func (b *Bridge) Start() {
	for _, topic := range []events.Topic{events.TopicOrderUpdated, events.TopicOrderDeleted} {
		ch, cancel := b.bus.Subscribe(topic, bridgeBuffer)
		b.cancels = append(b.cancels, cancel)

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for ev := range ch {
				b.forward(ev)
			}
		}()
	}
	b.logger.WithField("topic", b.topic).Info("kafka bridge started")
}

// Stop отписывается от шины и дожидается отправки уже полученных событий.
func (b *Bridge) Stop() {
	b.once.Do(func() {
		for _, cancel := range b.cancels {
			cancel()
		}
		b.wg.Wait()
		b.logger.Info("kafka bridge stopped")
	})
}

func (b *Bridge) forward(ev events.Event) {
	msg := toOrderEvent(ev)
	if msg == nil {
		return
	}
	if err := b.publisher.PublishEvent(b.topic, msg.OrderID, msg); err != nil {
		b.logger.WithError(err).WithFields(log.Fields{
			"order_id": msg.OrderID,
			"event":    msg.Change,
		}).Warn("failed to forward order event")
	}
}

func toOrderEvent(ev events.Event) *OrderEvent {
	var msg *OrderEvent
	switch ev.Topic {
	case events.TopicOrderUpdated:
		msg = NewOrderEvent(EventTypeOrderUpdated, ev.OrderID)
		if ev.Order != nil {
			msg.WithOrder(*ev.Order)
		}
	case events.TopicOrderDeleted:
		msg = NewOrderEvent(EventTypeOrderDeleted, ev.OrderID)
	default:
		return nil
	}
	msg.Change = ev.Type
	msg.Reason = ev.Reason
	if !ev.Occurred.IsZero() {
		msg.Timestamp = ev.Occurred
	}
	return msg
}
