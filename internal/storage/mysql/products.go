package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"printshop/internal/storage"
)

func (s *Storage) GetProduct(ctx context.Context, id int64) (*storage.Product, error) {
	const op = "storage.mysql.GetProduct"

	query := `
		SELECT id, name, type, calculator_type, is_active
		FROM ps_products
		WHERE id = ?
	`

	p := &storage.Product{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Type, &p.CalculatorType, &p.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: изделие id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	return p, nil
}

func (s *Storage) GetProductTemplate(ctx context.Context, productID int64) (*storage.ProductTemplate, error) {
	const op = "storage.mysql.GetProductTemplate"

	query := `
		SELECT id, product_id, trim_width, trim_height, pages, material_ids, options, simplified
		FROM ps_product_templates
		WHERE product_id = ?
	`

	t := &storage.ProductTemplate{}

	// JSON-колонки сканируем как строки
	var (
		materialsJSON  sql.NullString
		optionsJSON    sql.NullString
		simplifiedJSON sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, productID).Scan(
		&t.ID,
		&t.ProductID,
		&t.TrimWidth,
		&t.TrimHeight,
		&t.Pages,
		&materialsJSON,
		&optionsJSON,
		&simplifiedJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: шаблон изделия id=%d: %w", op, productID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	if materialsJSON.Valid && materialsJSON.String != "" {
		if err := json.Unmarshal([]byte(materialsJSON.String), &t.MaterialIDs); err != nil {
			return nil, fmt.Errorf("%s: ошибка парсинга JSON материалов: %w", op, err)
		}
	}

	if optionsJSON.Valid && optionsJSON.String != "" {
		if err := json.Unmarshal([]byte(optionsJSON.String), &t.Options); err != nil {
			return nil, fmt.Errorf("%s: ошибка парсинга JSON опций: %w", op, err)
		}
	}

	if simplifiedJSON.Valid && simplifiedJSON.String != "" {
		t.Simplified = &storage.SimplifiedTable{}
		if err := json.Unmarshal([]byte(simplifiedJSON.String), t.Simplified); err != nil {
			return nil, fmt.Errorf("%s: ошибка парсинга JSON таблицы размеров: %w", op, err)
		}
	}

	return t, nil
}
