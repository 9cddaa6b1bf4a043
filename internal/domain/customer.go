package domain

import "time"

// Customer агрегирует данные о клиенте магазина. Ключом выступает номер
// телефона — это то, что ассистент знает о звонящем. Со стороны этого
// слоя данные только читаются.
type Customer struct {
	Phone string
	Name  string
	Email string
	// OrderCount — количество заказов клиента за всю историю.
	OrderCount int
	// TotalSpentMinor — суммарные траты в минимальных денежных единицах.
	TotalSpentMinor int64
	// AvgOrderMinor — средний чек.
	AvgOrderMinor int64
	LastOrderAt   time.Time
}

// OrderSummary — краткая сводка заказа для истории покупок клиента.
type OrderSummary struct {
	ID          string
	AmountMinor int64
	Currency    string
	ItemCount   int
	Status      string
	PlacedAt    time.Time
}
