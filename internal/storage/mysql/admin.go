package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"printshop/internal/storage"
	"strconv"
)

const markupKey = "markup"

// GetMarkup возвращает наценку из ps_settings; 0, если она не задана.
func (s *Storage) GetMarkup(ctx context.Context) (float64, error) {
	const op = "storage.mysql.GetMarkup"

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM ps_settings WHERE name = ?`, markupKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	markup, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: наценка %q не число: %w", op, raw, err)
	}

	return markup, nil
}

func (s *Storage) UpdateMarkup(ctx context.Context, markup float64) error {
	const op = "storage.mysql.UpdateMarkup"

	stmt := `
		INSERT INTO ps_settings (name, value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)
	`

	if _, err := s.db.ExecContext(ctx, stmt, markupKey, strconv.FormatFloat(markup, 'f', -1, 64)); err != nil {
		return fmt.Errorf("%s: ошибка сохранения наценки: %w", op, err)
	}

	return nil
}

func (s *Storage) GetQuantityDiscounts(ctx context.Context, productType string) ([]storage.DiscountTier, error) {
	const op = "storage.mysql.GetQuantityDiscounts"

	return s.queryDiscounts(ctx, op, `
		SELECT id, product_type, min_qty, max_qty, percent
		FROM ps_quantity_discounts
		WHERE product_type = ?
		ORDER BY min_qty
	`, productType)
}

func (s *Storage) GetPricingSettings(ctx context.Context) (*storage.PricingSettings, error) {
	const op = "storage.mysql.GetPricingSettings"

	markup, err := s.GetMarkup(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	discounts, err := s.queryDiscounts(ctx, op, `
		SELECT id, product_type, min_qty, max_qty, percent
		FROM ps_quantity_discounts
		ORDER BY product_type, min_qty
	`)
	if err != nil {
		return nil, err
	}

	settings := &storage.PricingSettings{
		Markup:    markup,
		Discounts: make(map[string][]storage.DiscountTier),
	}
	for _, d := range discounts {
		settings.Discounts[d.ProductType] = append(settings.Discounts[d.ProductType], d)
	}

	return settings, nil
}

func (s *Storage) queryDiscounts(ctx context.Context, op, query string, args ...any) ([]storage.DiscountTier, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения скидок: %w", op, err)
	}
	defer rows.Close()

	var list []storage.DiscountTier

	for rows.Next() {
		var (
			d      storage.DiscountTier
			maxQty sql.NullInt64
		)

		if err := rows.Scan(&d.ID, &d.ProductType, &d.MinQty, &maxQty, &d.Percent); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		d.MaxQty = nullableInt(maxQty)

		list = append(list, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return list, nil
}
