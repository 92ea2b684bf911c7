package domain

import "reflect"

// OrderPatch — частичное обновление записи для PATCH /orders/{id}.
// nil-поле означает «не менялось»; указатель на пустой слайс сериализуется как [].
type OrderPatch struct {
	Status          *OrderStatus   `json:"status,omitempty"`
	Items           *[]LineItem    `json:"items,omitempty"`
	Total           *int64         `json:"total,omitempty"`
	RemovedItems    *[]RemovedItem `json:"removedItems,omitempty"`
	RejectionReason *string        `json:"rejectionReason,omitempty"`
}

// Empty сообщает, что патч ничего не меняет.
func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.Items == nil && p.Total == nil && p.RemovedItems == nil && p.RejectionReason == nil
}

// Fields возвращает имена изменённых полей в JSON-нотации (для логов).
func (p OrderPatch) Fields() []string {
	var fields []string
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Items != nil {
		fields = append(fields, "items")
	}
	if p.Total != nil {
		fields = append(fields, "total")
	}
	if p.RemovedItems != nil {
		fields = append(fields, "removedItems")
	}
	if p.RejectionReason != nil {
		fields = append(fields, "rejectionReason")
	}
	return fields
}

// Diff строит патч из полей, которые изменяет движок. Payment и описательные поля
// не входят в патч никогда.
func Diff(before, after Order) OrderPatch {
	var p OrderPatch
	if before.Status != after.Status {
		status := after.Status
		p.Status = &status
	}
	if !reflect.DeepEqual(normalizeItems(before.Items), normalizeItems(after.Items)) {
		items := normalizeItems(after.Items)
		p.Items = &items
	}
	if before.Total != after.Total {
		total := after.Total
		p.Total = &total
	}
	if !reflect.DeepEqual(normalizeRemoved(before.RemovedItems), normalizeRemoved(after.RemovedItems)) {
		removed := normalizeRemoved(after.RemovedItems)
		p.RemovedItems = &removed
	}
	if before.RejectionReason != after.RejectionReason {
		reason := after.RejectionReason
		p.RejectionReason = &reason
	}
	return p
}

// ApplyPatch накладывает патч на запись так же, как это делает пассивное хранилище.
func ApplyPatch(order Order, p OrderPatch) Order {
	out := order.Clone()
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Items != nil {
		out.Items = append([]LineItem{}, (*p.Items)...)
	}
	if p.Total != nil {
		out.Total = *p.Total
	}
	if p.RemovedItems != nil {
		out.RemovedItems = append([]RemovedItem{}, (*p.RemovedItems)...)
	}
	if p.RejectionReason != nil {
		out.RejectionReason = *p.RejectionReason
	}
	return out
}

func normalizeItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func normalizeRemoved(items []RemovedItem) []RemovedItem {
	if items == nil {
		return []RemovedItem{}
	}
	out := make([]RemovedItem, len(items))
	copy(out, items)
	return out
}
