package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderID — непрозрачный идентификатор заказа, стабильный на всё время жизни записи.
type OrderID string

// UnmarshalJSON принимает как строковые, так и числовые идентификаторы:
// пассивное REST-хранилище может генерировать любой из вариантов.
func (id *OrderID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OrderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("order id must be a string or a number: %w", err)
	}
	*id = OrderID(n.String())
	return nil
}

func (id OrderID) String() string {
	return string(id)
}

// OrderStatus описывает жизненный цикл заказа на кухне.
type OrderStatus string

const (
	// OrderStatusPending — заказ поступил и ждёт подтверждения.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusPreparing — заказ принят и готовится.
	OrderStatusPreparing OrderStatus = "Preparing"
	// OrderStatusReady — заказ готов к выдаче.
	OrderStatusReady OrderStatus = "Ready"
	// OrderStatusDelivered — заказ выдан клиенту (терминальный статус).
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled — заказ отклонён или опустел (терминальный статус).
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Active сообщает, находится ли заказ в рабочем цикле кухни.
func (s OrderStatus) Active() bool {
	return s == OrderStatusPending || s == OrderStatusPreparing || s == OrderStatusReady
}

// Terminal сообщает, что из статуса нет переходов.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ParseOrderStatus разбирает статус без учёта регистра.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled,
	} {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidArgument, raw)
}

// PaymentMethod — способ оплаты, задаётся при создании заказа и больше не меняется.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentCard   PaymentMethod = "Card"
	PaymentUPI    PaymentMethod = "UPI"
	PaymentOnline PaymentMethod = "Online"
)

// Valid проверяет, что способ оплаты известен.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentOnline:
		return true
	default:
		return false
	}
}

// LineItem представляет одну позицию заказа.
type LineItem struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
	// Price — стоимость всей строки (а не единицы товара), в целых единицах валюты магазина.
	Price int64 `json:"price"`
}

// RemovedItem — позиция, снятая с заказа кухней, вместе с причиной.
type RemovedItem struct {
	LineItem
	Reason string `json:"reason"`
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID              OrderID       `json:"id"`
	Customer        string        `json:"customer"`
	Location        string        `json:"location,omitempty"`
	TimeAgo         string        `json:"timeAgo,omitempty"`
	Status          OrderStatus   `json:"status"`
	Payment         PaymentMethod `json:"payment,omitempty"`
	Items           []LineItem    `json:"items"`
	RemovedItems    []RemovedItem `json:"removedItems,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	Total           int64         `json:"total"`
}

// Clone возвращает копию заказа, не разделяющую слайсы с оригиналом.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = make([]LineItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	if o.RemovedItems != nil {
		out.RemovedItems = make([]RemovedItem, len(o.RemovedItems))
		copy(out.RemovedItems, o.RemovedItems)
	}
	return out
}

// ItemsTotal пересчитывает сумму по оставшимся позициям.
func (o Order) ItemsTotal() int64 {
	var sum int64
	for _, item := range o.Items {
		sum += item.Price
	}
	return sum
}

// TotalDrifted сообщает, что сохранённая сумма разошлась с суммой позиций.
func (o Order) TotalDrifted() bool {
	return o.Total != o.ItemsTotal()
}

// ValidateInvariants проверяет инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.ID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrStatusInvalid)
	}
	if o.Payment != "" && !o.Payment.Valid() {
		errs = append(errs, ErrPaymentInvalid)
	}
	if len(o.Items) == 0 && o.Status != OrderStatusCancelled {
		errs = append(errs, ErrEmptyOrderActive)
	}
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}
	if o.TotalDrifted() {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
