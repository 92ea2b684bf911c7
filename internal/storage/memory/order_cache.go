package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// orderCache — упорядоченный in-memory кэш заказов для витрины.
// Записи всегда заменяются целиком; наружу отдаются только копии.
type orderCache struct {
	mu     sync.RWMutex
	orders []domain.Order
	index  map[domain.OrderID]int
}

// NewOrderCache возвращает пустой локальный кэш заказов.
func NewOrderCache() domain.OrderCache {
	return &orderCache{index: make(map[domain.OrderID]int)}
}

// Load заменяет содержимое кэша, сохраняя порядок загрузки.
func (c *orderCache) Load(orders []domain.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.orders = make([]domain.Order, 0, len(orders))
	c.index = make(map[domain.OrderID]int, len(orders))
	for _, order := range orders {
		// Дубликаты идентификаторов: остаётся последняя версия на месте первой.
		if pos, ok := c.index[order.ID]; ok {
			c.orders[pos] = order.Clone()
			continue
		}
		c.index[order.ID] = len(c.orders)
		c.orders = append(c.orders, order.Clone())
	}
}

// List возвращает снимок всех заказов в порядке загрузки.
func (c *orderCache) List() []domain.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Order, len(c.orders))
	for i, order := range c.orders {
		result[i] = order.Clone()
	}
	return result
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (c *orderCache) Get(id domain.OrderID) (domain.Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pos, ok := c.index[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return c.orders[pos].Clone(), nil
}

// Update атомарно вычисляет новую запись через fn и заменяет ею текущую.
func (c *orderCache) Update(id domain.OrderID, fn func(domain.Order) (domain.Order, error)) (domain.Order, domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[id]
	if !ok {
		return domain.Order{}, domain.Order{}, domain.ErrOrderNotFound
	}

	before := c.orders[pos].Clone()
	after, err := fn(before.Clone())
	if err != nil {
		return before, before, err
	}
	// Идентификатор записи неизменен.
	after.ID = id
	c.orders[pos] = after.Clone()
	return before, after, nil
}

// Remove удаляет запись и возвращает её позицию для возможного отката.
func (c *orderCache) Remove(id domain.OrderID) (domain.Order, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[id]
	if !ok {
		return domain.Order{}, -1, domain.ErrOrderNotFound
	}
	removed := c.orders[pos]
	c.orders = append(c.orders[:pos], c.orders[pos+1:]...)
	c.reindex()
	return removed, pos, nil
}

// Insert вставляет запись на позицию index; существующая запись с тем же ID заменяется.
func (c *orderCache) Insert(index int, order domain.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.index[order.ID]; ok {
		c.orders[pos] = order.Clone()
		return
	}
	if index < 0 || index > len(c.orders) {
		index = len(c.orders)
	}
	c.orders = append(c.orders, domain.Order{})
	copy(c.orders[index+1:], c.orders[index:])
	c.orders[index] = order.Clone()
	c.reindex()
}

// Len возвращает количество заказов в кэше.
func (c *orderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orders)
}

func (c *orderCache) reindex() {
	c.index = make(map[domain.OrderID]int, len(c.orders))
	for i, order := range c.orders {
		c.index[order.ID] = i
	}
}

var _ domain.OrderCache = (*orderCache)(nil)
