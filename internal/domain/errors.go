package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument — общий класс ошибок входных данных; операции возвращают заказ без изменений.
	ErrInvalidArgument = errors.New("invalid argument")
	// Ошибка пустой причины отказа.
	ErrReasonRequired = fmt.Errorf("%w: rejection reason is required", ErrInvalidArgument)
	// Ошибка индекса позиции за пределами заказа.
	ErrItemIndexOutOfRange = fmt.Errorf("%w: item index out of range", ErrInvalidArgument)
	// Ошибка изменения позиций в заказе с терминальным статусом.
	ErrOrderTerminal = fmt.Errorf("%w: order is in a terminal status", ErrInvalidArgument)

	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// Ошибка неизвестного статуса заказа.
	ErrStatusInvalid = errors.New("order status is invalid")
	// Ошибка неизвестного способа оплаты.
	ErrPaymentInvalid = errors.New("payment method is invalid")
	// Ошибка активного заказа без позиций.
	ErrEmptyOrderActive = errors.New("order without items must be cancelled")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")

	// ErrOrderNotFound возвращается, если заказа нет в кэше или в удалённом хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotHistorical — удалять можно только заказы в терминальном статусе.
	ErrOrderNotHistorical = errors.New("only delivered or cancelled orders can be deleted")
	// ErrOrderExists — запись с таким идентификатором уже есть в хранилище.
	ErrOrderExists = errors.New("order already exists")
	// ErrRemoteStore — ошибка обращения к удалённому хранилищу заказов.
	ErrRemoteStore = errors.New("remote order store failed")
)

// IsInvalidArgument проверяет, относится ли ошибка к ошибкам входных данных.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound проверяет, является ли ошибка отсутствием заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
