package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

// GetCustomerByPhone возвращает клиента с агрегированной статистикой заказов.
func (g *Gateway) GetCustomerByPhone(ctx context.Context, phone string) (domain.Customer, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		c         domain.Customer
		lastOrder sql.NullTime
	)
	err := g.db.QueryRowContext(queryCtx, `
		SELECT c.phone, c.name, c.email,
		       COUNT(o.id),
		       COALESCE(SUM(o.amount_minor), 0),
		       COALESCE(AVG(o.amount_minor), 0)::BIGINT,
		       MAX(o.placed_at)
		FROM customers c
		LEFT JOIN customer_orders o ON o.customer_phone = c.phone
		WHERE c.phone = $1
		GROUP BY c.phone, c.name, c.email
	`, strings.TrimSpace(phone)).Scan(
		&c.Phone, &c.Name, &c.Email,
		&c.OrderCount, &c.TotalSpentMinor, &c.AvgOrderMinor, &lastOrder,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	if lastOrder.Valid {
		c.LastOrderAt = lastOrder.Time
	}

	return c, nil
}

// GetCustomerOrderHistory возвращает сводки заказов клиента, новые первыми.
func (g *Gateway) GetCustomerOrderHistory(ctx context.Context, phone string, limit int) ([]domain.OrderSummary, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	rows, err := g.db.QueryContext(queryCtx, `
		SELECT id, amount_minor, currency, item_count, status, placed_at
		FROM customer_orders
		WHERE customer_phone = $1
		ORDER BY placed_at DESC, id DESC
		LIMIT $2
	`, strings.TrimSpace(phone), limit)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.OrderSummary, 0)
	for rows.Next() {
		var o domain.OrderSummary
		if err := rows.Scan(&o.ID, &o.AmountMinor, &o.Currency, &o.ItemCount, &o.Status, &o.PlacedAt); err != nil {
			return nil, fmt.Errorf("scan customer order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer orders: %w", err)
	}

	return orders, nil
}

// SearchCustomersByName ищет клиентов по вхождению в имя.
func (g *Gateway) SearchCustomersByName(ctx context.Context, name string, limit int) ([]domain.Customer, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	rows, err := g.db.QueryContext(queryCtx, `
		SELECT phone, name, email
		FROM customers
		WHERE name ILIKE $1
		ORDER BY name ASC
		LIMIT $2
	`, "%"+strings.TrimSpace(name)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.Phone, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}
