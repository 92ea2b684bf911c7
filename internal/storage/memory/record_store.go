package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// recordStoreInMemory — пассивное хранилище записей для стаба REST-ресурса /orders.
// Никаких бизнес-проверок: что прислали, то и сохранили.
type recordStoreInMemory struct {
	mu    sync.RWMutex
	order []domain.OrderID
	items map[domain.OrderID]domain.Order
}

// NewRecordStore возвращает in-memory хранилище записей заказов.
func NewRecordStore() domain.OrderRecordStore {
	return &recordStoreInMemory{items: make(map[domain.OrderID]domain.Order)}
}

// List возвращает записи в порядке создания.
func (s *recordStoreInMemory) List(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.items[id].Clone())
	}
	return result, nil
}

func (s *recordStoreInMemory) Get(_ context.Context, id domain.OrderID) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// Create сохраняет запись; пустой ID генерируется.
func (s *recordStoreInMemory) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = domain.OrderID(uuid.NewString()[:8])
	}
	if _, exists := s.items[order.ID]; exists {
		return domain.Order{}, domain.ErrOrderExists
	}
	s.items[order.ID] = order.Clone()
	s.order = append(s.order, order.ID)
	return order.Clone(), nil
}

// Patch накладывает частичное обновление на запись.
func (s *recordStoreInMemory) Patch(_ context.Context, id domain.OrderID, patch domain.OrderPatch) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	updated := domain.ApplyPatch(current, patch)
	s.items[id] = updated
	return updated.Clone(), nil
}

func (s *recordStoreInMemory) Delete(_ context.Context, id domain.OrderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ domain.OrderRecordStore = (*recordStoreInMemory)(nil)
