package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"printshop/internal/storage"
)

func (s *Storage) GetMaterial(ctx context.Context, id int64) (*storage.Material, error) {
	const op = "storage.mysql.GetMaterial"

	query := `SELECT id, name, unit, price_per_sheet, in_stock FROM ps_materials WHERE id = ?`

	m := &storage.Material{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Name, &m.Unit, &m.PricePerSheet, &m.InStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: материал id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	return m, nil
}

func (s *Storage) GetMaterials(ctx context.Context) ([]storage.Material, error) {
	const op = "storage.mysql.GetMaterials"

	return s.queryMaterials(ctx, op, `SELECT id, name, unit, price_per_sheet, in_stock FROM ps_materials ORDER BY name`)
}

func (s *Storage) GetInStockMaterials(ctx context.Context, limit int) ([]storage.Material, error) {
	const op = "storage.mysql.GetInStockMaterials"

	return s.queryMaterials(ctx, op, `
		SELECT id, name, unit, price_per_sheet, in_stock
		FROM ps_materials
		WHERE in_stock = TRUE
		ORDER BY id
		LIMIT ?
	`, limit)
}

func (s *Storage) queryMaterials(ctx context.Context, op, query string, args ...any) ([]storage.Material, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения материалов: %w", op, err)
	}
	defer rows.Close()

	var list []storage.Material

	for rows.Next() {
		var m storage.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.PricePerSheet, &m.InStock); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		list = append(list, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return list, nil
}

func (s *Storage) GetProductMaterials(ctx context.Context, productID int64) ([]storage.ProductMaterial, error) {
	const op = "storage.mysql.GetProductMaterials"

	query := `
		SELECT pm.material_id, pm.qty_per_sheet, m.id, m.name, m.unit, m.price_per_sheet, m.in_stock
		FROM ps_product_materials pm
		JOIN ps_materials m ON m.id = pm.material_id
		WHERE pm.product_id = ?
		ORDER BY pm.material_id
	`

	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения материалов изделия: %w", op, err)
	}
	defer rows.Close()

	var list []storage.ProductMaterial

	for rows.Next() {
		var pm storage.ProductMaterial
		m := &pm.Material

		err := rows.Scan(&pm.MaterialID, &pm.QtyPerSheet, &m.ID, &m.Name, &m.Unit, &m.PricePerSheet, &m.InStock)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}

		list = append(list, pm)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return list, nil
}

// GetMaterialRules: правила для типа изделия; пустое product_name подходит любому названию.
func (s *Storage) GetMaterialRules(ctx context.Context, productType, productName string) ([]storage.MaterialRule, error) {
	const op = "storage.mysql.GetMaterialRules"

	query := `
		SELECT r.id, r.product_type, r.product_name, r.material_id, r.qty_per_unit, r.calculation_basis,
		       m.id, m.name, m.unit, m.price_per_sheet, m.in_stock
		FROM ps_material_rules r
		JOIN ps_materials m ON m.id = r.material_id
		WHERE r.product_type = ? AND (r.product_name = '' OR LOWER(r.product_name) = LOWER(?))
		ORDER BY r.id
	`

	rows, err := s.db.QueryContext(ctx, query, productType, productName)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения правил материалов: %w", op, err)
	}
	defer rows.Close()

	var list []storage.MaterialRule

	for rows.Next() {
		var (
			r     storage.MaterialRule
			basis string
		)
		m := &r.Material

		err := rows.Scan(&r.ID, &r.ProductType, &r.ProductName, &r.MaterialID, &r.QtyPerUnit, &basis,
			&m.ID, &m.Name, &m.Unit, &m.PricePerSheet, &m.InStock)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}

		r.Basis, err = storage.ParseCalculationBasis(basis)
		if err != nil {
			return nil, fmt.Errorf("%s: правило id=%d: %w", op, r.ID, err)
		}

		list = append(list, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return list, nil
}
