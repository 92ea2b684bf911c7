// Package events — типизированная шина событий с именованными топиками.
// Подписчики явно подписываются на топик и получают события через канал.
package events

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// Topic — имя топика шины.
type Topic string

const (
	// TopicOrderUpdated — заказ изменён локально (после оптимистичного обновления).
	TopicOrderUpdated Topic = "order.updated"
	// TopicOrderDeleted — историческая запись удалена.
	TopicOrderDeleted Topic = "order.deleted"
)

// Event — сообщение шины. Поля заполняются в зависимости от топика.
type Event struct {
	Topic    Topic
	OrderID  domain.OrderID
	Order    *domain.Order
	Type     string
	Reason   string
	Occurred time.Time
}

// Bus доставляет события подписчикам без блокировки издателя:
// если буфер подписчика заполнен, событие для него отбрасывается.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic]map[int]chan Event
	nextID int
	onDrop func(Topic)
	closed bool
}

// Option настраивает Bus.
type Option func(*Bus)

// WithDropHandler задаёт callback для отброшенных событий (например, метрику).
func WithDropHandler(fn func(Topic)) Option {
	return func(b *Bus) {
		b.onDrop = fn
	}
}

// NewBus создаёт пустую шину.
func NewBus(options ...Option) *Bus {
	b := &Bus{subs: make(map[Topic]map[int]chan Event)}
	for _, option := range options {
		option(b)
	}
	return b
}

// Subscribe подписывает на топик. cancel закрывает канал и снимает подписку.
func (b *Bus) Subscribe(topic Topic, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[topic][id]; ok {
				delete(b.subs[topic], id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish рассылает событие подписчикам топика event.Topic.
func (b *Bus) Publish(event Event) {
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[event.Topic] {
		select {
		case ch <- event:
		default:
			if b.onDrop != nil {
				b.onDrop(event.Topic)
			}
		}
	}
}

// Close закрывает все подписки; последующие Publish ничего не делают.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(b.subs, topic)
	}
}
