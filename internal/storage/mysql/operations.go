package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"printshop/internal/storage"
)

const operationColumns = `o.id, o.name, o.type, o.pricing_unit, o.base_price, o.setup_cost, o.min_quantity`

func scanOperation(row interface{ Scan(...any) error }, o *storage.Operation) error {
	var unit string
	if err := row.Scan(&o.ID, &o.Name, &o.Type, &unit, &o.BasePrice, &o.SetupCost, &o.MinQuantity); err != nil {
		return err
	}

	pu, err := storage.ParsePricingUnit(unit)
	if err != nil {
		return fmt.Errorf("операция id=%d: %w", o.ID, err)
	}
	o.PricingUnit = pu

	return nil
}

func (s *Storage) GetOperation(ctx context.Context, id int64) (*storage.Operation, error) {
	const op = "storage.mysql.GetOperation"

	query := `SELECT ` + operationColumns + ` FROM ps_operations o WHERE o.id = ? AND o.is_active = TRUE`

	o := &storage.Operation{}
	if err := scanOperation(s.db.QueryRowContext(ctx, query, id), o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: операция id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return o, nil
}

func (s *Storage) GetProductOperations(ctx context.Context, productID int64) ([]storage.Operation, error) {
	const op = "storage.mysql.GetProductOperations"

	query := `
		SELECT ` + operationColumns + `
		FROM ps_product_operations po
		JOIN ps_operations o ON o.id = po.operation_id
		WHERE po.product_id = ? AND o.is_active = TRUE
		ORDER BY po.sort_order, o.id
	`

	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения операций изделия: %w", op, err)
	}
	defer rows.Close()

	var ops []storage.Operation

	for rows.Next() {
		var o storage.Operation
		if err := scanOperation(rows, &o); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		ops = append(ops, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return ops, nil
}

// GetOperationTiers возвращает ступени для режима печати, а если их нет —
// общие ступени операции (color_mode = '').
func (s *Storage) GetOperationTiers(ctx context.Context, operationID int64, mode storage.ColorMode, duplex bool) ([]storage.QuantityTier, error) {
	const op = "storage.mysql.GetOperationTiers"

	query := `
		SELECT tiers
		FROM ps_operation_tiers
		WHERE operation_id = ?
		  AND ((color_mode = ? AND duplex = ?) OR color_mode = '')
		ORDER BY color_mode = ''
		LIMIT 1
	`

	var tiersJSON string
	err := s.db.QueryRowContext(ctx, query, operationID, string(mode), duplex).Scan(&tiersJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	var tiers []storage.QuantityTier
	if err := json.Unmarshal([]byte(tiersJSON), &tiers); err != nil {
		return nil, fmt.Errorf("%s: ошибка парсинга JSON ступеней: %w", op, err)
	}

	return tiers, nil
}

func (s *Storage) GetPricingRules(ctx context.Context, operationID int64) ([]storage.PricingRule, error) {
	const op = "storage.mysql.GetPricingRules"

	query := `
		SELECT id, operation_id, name, type, value, min_quantity, max_quantity, min_sheets, rush_only, sort_order
		FROM ps_pricing_rules
		WHERE operation_id = ? AND is_active = TRUE
		ORDER BY sort_order, id
	`

	rows, err := s.db.QueryContext(ctx, query, operationID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения правил: %w", op, err)
	}
	defer rows.Close()

	var rules []storage.PricingRule

	for rows.Next() {
		var (
			r                  storage.PricingRule
			minQty, maxQty, ms sql.NullInt64
		)

		err := rows.Scan(&r.ID, &r.OperationID, &r.Name, &r.Type, &r.Value, &minQty, &maxQty, &ms, &r.RushOnly, &r.SortOrder)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}

		r.MinQuantity = nullableInt(minQty)
		r.MaxQuantity = nullableInt(maxQty)
		r.MinSheets = nullableInt(ms)

		rules = append(rules, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return rules, nil
}

func (s *Storage) GetTechnologyPrice(ctx context.Context, code string) (*storage.TechnologyPrice, error) {
	const op = "storage.mysql.GetTechnologyPrice"

	query := `
		SELECT code, name, counter_unit, price_bw_single, price_bw_duplex, price_color_single, price_color_duplex
		FROM ps_print_technologies
		WHERE code = ?
	`

	t := &storage.TechnologyPrice{}
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&t.Code,
		&t.Name,
		&t.CounterUnit,
		&t.PriceBWSingle,
		&t.PriceBWDuplex,
		&t.PriceColorSingle,
		&t.PriceColorDuplex,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: технология %q: %w", op, code, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	return t, nil
}
