// Package provision доукомплектовывает изделие операциями по нормам для его типа.
// Расчёт цены сам ничего не дописывает в каталог: это отдельный шаг оператора.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"printshop/internal/lib/errs"
	"printshop/internal/storage"
)

type Storage interface {
	GetProduct(ctx context.Context, id int64) (*storage.Product, error)
	GetProductOperations(ctx context.Context, productID int64) ([]storage.Operation, error)
	GetOperationNorms(ctx context.Context, productType string) ([]storage.OperationNorm, error)
	LinkProductOperations(ctx context.Context, productID int64, operationIDs []int64) error
}

type Result struct {
	ProductID int64   `json:"product_id"`
	Linked    []int64 `json:"linked"`
	// AlreadyConfigured: у изделия уже были операции, ничего не менялось.
	AlreadyConfigured bool `json:"already_configured"`
}

type Service struct {
	storage Storage
	log     *slog.Logger
}

func NewService(storage Storage, log *slog.Logger) *Service {
	return &Service{storage: storage, log: log}
}

// ProvisionMissingOperations привязывает к изделию типовые операции,
// если у него нет ни одной. Повторный вызов ничего не меняет.
func (s *Service) ProvisionMissingOperations(ctx context.Context, productID int64) (Result, error) {
	const op = "service.provision.ProvisionMissingOperations"

	res := Result{ProductID: productID, Linked: []int64{}}

	product, err := s.storage.GetProduct(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && product == nil) {
		return res, errs.New(errs.KindProductNotFound, "изделие не найдено").With("product_id", productID)
	}
	if err != nil {
		return res, fmt.Errorf("%s: ошибка получения изделия: %w", op, err)
	}

	existing, err := s.storage.GetProductOperations(ctx, productID)
	if err != nil {
		return res, fmt.Errorf("%s: ошибка получения операций изделия: %w", op, err)
	}
	if len(existing) > 0 {
		for _, o := range existing {
			res.Linked = append(res.Linked, o.ID)
		}
		res.AlreadyConfigured = true
		return res, nil
	}

	norms, err := s.storage.GetOperationNorms(ctx, product.Type)
	if err != nil {
		return res, fmt.Errorf("%s: ошибка получения норм для %q: %w", op, product.Type, err)
	}
	if len(norms) == 0 {
		s.log.Warn("для типа изделия нет типовых операций",
			slog.String("op", op),
			slog.Int64("product_id", productID),
			slog.String("product_type", product.Type),
		)
		return res, nil
	}

	ids := make([]int64, 0, len(norms))
	for _, n := range norms {
		ids = append(ids, n.OperationID)
	}

	if err := s.storage.LinkProductOperations(ctx, productID, ids); err != nil {
		return res, fmt.Errorf("%s: ошибка привязки операций: %w", op, err)
	}

	s.log.Info("изделие доукомплектовано операциями",
		slog.String("op", op),
		slog.Int64("product_id", productID),
		slog.Int("count", len(ids)),
	)

	res.Linked = ids
	return res, nil
}
