package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

const productColumns = `id, name, brand, category, price_minor, stock, sku, description`

// SearchProducts ищет товары по регистронезависимому вхождению запроса
// в название, бренд или категорию. Порядок выдачи стабилен (по id).
func (g *Gateway) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	pattern := "%" + strings.TrimSpace(query) + "%"

	rows, err := g.db.QueryContext(queryCtx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE $1 OR brand ILIKE $1 OR category ILIKE $1
		ORDER BY id ASC
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SearchProductsFTS использует полнотекстовый индекс с ранжированием.
func (g *Gateway) SearchProductsFTS(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	rows, err := g.db.QueryContext(queryCtx, `
		SELECT `+productColumns+`
		FROM products
		WHERE to_tsvector('simple', name || ' ' || brand || ' ' || category || ' ' || description)
		      @@ websearch_to_tsquery('simple', $1)
		ORDER BY ts_rank(
			to_tsvector('simple', name || ' ' || brand || ' ' || category || ' ' || description),
			websearch_to_tsquery('simple', $1)
		) DESC, id ASC
		LIMIT $2
	`, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, fmt.Errorf("fts search products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetProductBySKUOrName возвращает товар по складскому коду либо названию.
// Точное регистронезависимое совпадение кода имеет приоритет.
func (g *Gateway) GetProductBySKUOrName(ctx context.Context, ident string) (domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ident = strings.TrimSpace(ident)
	if ident == "" {
		return domain.Product{}, domain.ErrProductNotFound
	}

	product, err := g.scanOneProduct(queryCtx, `
		SELECT `+productColumns+`
		FROM products
		WHERE LOWER(sku) = LOWER($1)
	`, ident)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		return domain.Product{}, err
	}

	return g.scanOneProduct(queryCtx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE $1
		ORDER BY id ASC
		LIMIT 1
	`, "%"+ident+"%")
}

func (g *Gateway) scanOneProduct(ctx context.Context, query string, arg any) (domain.Product, error) {
	var p domain.Product
	err := g.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.Name, &p.Brand, &p.Category, &p.PriceMinor, &p.Stock, &p.SKU, &p.Description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Category, &p.PriceMinor, &p.Stock, &p.SKU, &p.Description,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}
