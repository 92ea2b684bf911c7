package domain

import "context"

// RemoteOrderStore описывает удалённое REST-хранилище заказов.
// Хранилище пассивное: без транзакций и без токенов версий.
type RemoteOrderStore interface {
	// FetchAll возвращает все заказы (GET /orders).
	FetchAll(ctx context.Context) ([]Order, error)
	// Patch применяет частичное обновление (PATCH /orders/{id}).
	Patch(ctx context.Context, id OrderID, patch OrderPatch) error
	// Delete удаляет историческую запись (DELETE /orders/{id}).
	Delete(ctx context.Context, id OrderID) error
}

// OrderRecordStore — хранилище записей, стоящее за REST-ресурсом /orders (используется стабом).
type OrderRecordStore interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id OrderID) (Order, error)
	Create(ctx context.Context, order Order) (Order, error)
	Patch(ctx context.Context, id OrderID, patch OrderPatch) (Order, error)
	Delete(ctx context.Context, id OrderID) error
}

// OrderCache — локальный упорядоченный кэш заказов, источник истины для витрины между загрузками.
type OrderCache interface {
	// Load заменяет содержимое кэша результатом полной загрузки.
	Load(orders []Order)
	List() []Order
	Get(id OrderID) (Order, error)
	// Update атомарно читает запись, вычисляет новую и заменяет её целиком.
	// Если fn возвращает ошибку, кэш не меняется.
	Update(id OrderID, fn func(Order) (Order, error)) (before, after Order, err error)
	// Remove удаляет запись и возвращает её прежнюю позицию.
	Remove(id OrderID) (Order, int, error)
	// Insert возвращает запись на позицию index (для отката удаления).
	Insert(index int, order Order)
	Len() int
}

// Notifier отображает всплывающие уведомления; ядро вызывает его не более одного раза на операцию.
type Notifier interface {
	Notify(n Notification)
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID OrderID) ([]TimelineEvent, error)
}
