package domain

import "strings"

// Product описывает товарную позицию каталога магазина.
type Product struct {
	// ID — внутренний идентификатор записи.
	ID string
	// Name — отображаемое название товара.
	Name string
	// Brand — производитель.
	Brand string
	// Category — товарная категория (gpu, cpu, storage и т.д.).
	Category string
	// PriceMinor — цена в минимальных денежных единицах (центы).
	PriceMinor int64
	// Stock — остаток на складе, никогда не отрицательный.
	Stock int32
	// SKU — уникальный складской код; поиск по нему регистронезависимый.
	SKU string
	// Description — свободное описание для голосового ассистента.
	Description string
}

// MatchesQuery проверяет регистронезависимое вхождение запроса
// в название, бренд или категорию товара.
func (p Product) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Brand), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

// MatchesSKU сравнивает складской код без учёта регистра.
func (p Product) MatchesSKU(sku string) bool {
	return strings.EqualFold(p.SKU, strings.TrimSpace(sku))
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.SKU == "" {
		errs = append(errs, ErrProductSKURequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
