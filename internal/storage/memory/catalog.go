package memory

import (
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

// demoCatalog возвращает неизменяемый демонстрационный каталог для fallback-режима.
// Порядок записей определяет порядок выдачи поиска (ранжирования нет).
func demoCatalog() []domain.Product {
	return []domain.Product{
		{
			ID:          "demo-gpu-4090",
			Name:        "NVIDIA GeForce RTX 4090",
			Brand:       "NVIDIA",
			Category:    "gpu",
			PriceMinor:  189999,
			Stock:       3,
			SKU:         "GPU-RTX4090",
			Description: "24GB GDDR6X flagship graphics card",
		},
		{
			ID:          "demo-cpu-13900k",
			Name:        "Intel Core i9-13900K",
			Brand:       "Intel",
			Category:    "cpu",
			PriceMinor:  58999,
			Stock:       7,
			SKU:         "CPU-I9-13900K",
			Description: "24-core Raptor Lake desktop processor",
		},
		{
			ID:          "demo-ssd-990pro",
			Name:        "Samsung 990 PRO 2TB",
			Brand:       "Samsung",
			Category:    "storage",
			PriceMinor:  17999,
			Stock:       12,
			SKU:         "SSD-990PRO-2TB",
			Description: "PCIe 4.0 NVMe M.2 solid state drive",
		},
	}
}

// demoCustomers — фиксированные демонстрационные клиенты. В fallback-режиме
// вызывающая сторона не должна принимать эти данные за настоящие.
func demoCustomers() []domain.Customer {
	lastOrder := time.Date(2025, 1, 18, 14, 30, 0, 0, time.UTC)
	return []domain.Customer{
		{
			Phone:           "+306912345678",
			Name:            "Giorgos Papadopoulos",
			Email:           "g.papadopoulos@example.com",
			OrderCount:      4,
			TotalSpentMinor: 312496,
			AvgOrderMinor:   78124,
			LastOrderAt:     lastOrder,
		},
		{
			Phone:           "+306998765432",
			Name:            "Eleni Nikolaou",
			Email:           "e.nikolaou@example.com",
			OrderCount:      1,
			TotalSpentMinor: 58999,
			AvgOrderMinor:   58999,
			LastOrderAt:     lastOrder.AddDate(0, -2, 0),
		},
	}
}

// demoOrderHistory — демонстрационная история покупок для GetCustomerOrderHistory.
func demoOrderHistory(phone string) []domain.OrderSummary {
	placed := time.Date(2025, 1, 18, 14, 30, 0, 0, time.UTC)
	return []domain.OrderSummary{
		{
			ID:          "demo-order-2",
			AmountMinor: 189999,
			Currency:    "EUR",
			ItemCount:   1,
			Status:      "delivered",
			PlacedAt:    placed,
		},
		{
			ID:          "demo-order-1",
			AmountMinor: 58999,
			Currency:    "EUR",
			ItemCount:   1,
			Status:      "delivered",
			PlacedAt:    placed.AddDate(0, -3, 0),
		},
	}
}
