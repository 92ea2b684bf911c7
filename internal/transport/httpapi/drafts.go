package httpapi

import (
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// RejectDraft — тело запросов на отказ (заказа целиком или позиции).
type RejectDraft struct {
	Reason string `json:"reason" binding:"required"`
}

// Validate нормализует причину; пустая причина после trim недопустима.
func (d *RejectDraft) Validate() error {
	d.Reason = strings.TrimSpace(d.Reason)
	if d.Reason == "" {
		return domain.ErrReasonRequired
	}
	return nil
}

// TransitionDraft — запрос произвольного перехода статуса.
type TransitionDraft struct {
	Status string `json:"status" binding:"required"`

	parsed domain.OrderStatus
}

func (d *TransitionDraft) Validate() error {
	status, err := domain.ParseOrderStatus(d.Status)
	if err != nil {
		return err
	}
	d.parsed = status
	return nil
}

// Target возвращает статус, разобранный в Validate.
func (d *TransitionDraft) Target() domain.OrderStatus {
	return d.parsed
}

// parseItemIndex разбирает индекс позиции из пути.
func parseItemIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, domain.ErrItemIndexOutOfRange
	}
	return index, nil
}

// ListFilter — параметры GET /api/orders.
type ListFilter struct {
	Status string `form:"status"`
	Query  string `form:"q"`
}

// Apply фильтрует заказы по статусу и подстроке имени клиента (без учёта регистра).
func (f ListFilter) Apply(orders []domain.Order) ([]domain.Order, error) {
	var status domain.OrderStatus
	if f.Status != "" {
		parsed, err := domain.ParseOrderStatus(f.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if status != "" && order.Status != status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(order.Customer), query) {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

// Stats — сводка для дашборда.
type Stats struct {
	Total    int                        `json:"total"`
	ByStatus map[domain.OrderStatus]int `json:"byStatus"`
	Active   int                        `json:"active"`
	Revenue  int64                      `json:"revenue"`
	Drifted  int                        `json:"drifted"`
}

// Summarize считает заказы по статусам; выручка — сумма Total выданных заказов.
func Summarize(orders []domain.Order) Stats {
	stats := Stats{
		Total:    len(orders),
		ByStatus: make(map[domain.OrderStatus]int),
	}
	for _, order := range orders {
		stats.ByStatus[order.Status]++
		if order.Status.Active() {
			stats.Active++
		}
		if order.Status == domain.OrderStatusDelivered {
			stats.Revenue += order.Total
		}
		if order.TotalDrifted() {
			stats.Drifted++
		}
	}
	return stats
}
