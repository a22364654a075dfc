package mysql

import (
	"context"
	"errors"
	"fmt"
	"printshop/internal/storage"

	"github.com/go-sql-driver/mysql"
)

// Коды ошибок MySQL.
const (
	errDuplicateEntry = 1062
	errForeignKey     = 1452
)

func (s *Storage) GetOperationNorms(ctx context.Context, productType string) ([]storage.OperationNorm, error) {
	const op = "storage.mysql.GetOperationNorms"

	query := `
		SELECT product_type, operation_id, sort_order
		FROM ps_operation_norms
		WHERE product_type = ?
		ORDER BY sort_order, operation_id
	`

	rows, err := s.db.QueryContext(ctx, query, productType)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения норм: %w", op, err)
	}
	defer rows.Close()

	var norms []storage.OperationNorm

	for rows.Next() {
		var n storage.OperationNorm
		if err := rows.Scan(&n.ProductType, &n.OperationID, &n.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		norms = append(norms, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return norms, nil
}

// LinkProductOperations привязывает операции к изделию в одной транзакции.
// Уже привязанные операции пропускаются.
func (s *Storage) LinkProductOperations(ctx context.Context, productID int64, operationIDs []int64) error {
	const op = "storage.mysql.LinkProductOperations"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: не удалось начать транзакцию: %w", op, err)
	}

	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ps_product_operations (product_id, operation_id, sort_order)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: не удалось подготовить запрос: %w", op, err)
	}
	defer stmt.Close()

	for i, id := range operationIDs {
		if _, err := stmt.ExecContext(ctx, productID, id, i+1); err != nil {
			var mysqlErr *mysql.MySQLError
			if errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry {
				continue
			}
			if errors.As(err, &mysqlErr) && mysqlErr.Number == errForeignKey {
				return fmt.Errorf("%s: изделие %d или операция %d: %w", op, productID, id, storage.ErrNotFound)
			}
			return fmt.Errorf("%s: ошибка привязки операции %d: %w", op, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: ошибка коммита транзакции: %w", op, err)
	}

	return nil
}
