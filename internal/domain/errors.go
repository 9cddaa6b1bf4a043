package domain

import "errors"

var (
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отсутствующего складского кода.
	ErrProductSKURequired = errors.New("product sku is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного остатка на складе.
	ErrStockNegative = errors.New("product stock must be non-negative")
	// Ошибка отсутствующего внешнего идентификатора звонка.
	ErrCallIDRequired = errors.New("vapi_call_id is required")
	// Ошибка отрицательной стоимости звонка.
	ErrCostNegative = errors.New("call cost must be non-negative")
	// Ошибка отсутствующего времени записи.
	ErrScheduleTimeRequired = errors.New("scheduled time is required")
	// Ошибка некорректной длительности записи (< 0 минут).
	ErrDurationInvalid = errors.New("duration must be non-negative")
	// Ошибка пустого поискового запроса.
	ErrQueryRequired = errors.New("search query is required")
	// ErrProductNotFound возвращается, если товар не найден ни по коду, ни по названию.
	ErrProductNotFound = errors.New("product not found")
	// ErrCustomerNotFound возвращается, если клиент с таким телефоном неизвестен.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrConversationNotFound возвращается живым бэкендом при обновлении несуществующей беседы.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrSlotUnavailable — запрошенное время уже занято другой записью.
	ErrSlotUnavailable = errors.New("time slot unavailable")
)

// IsNotFound проверяет, относится ли ошибка к классу "запись не найдена".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrConversationNotFound)
}
