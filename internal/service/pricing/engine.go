// Package pricing собирает цену заказа: раскладка, операции, материалы,
// наценка и тиражная скидка. Стратегия (по операциям или по таблице)
// выбирается по типу калькулятора изделия.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"printshop/internal/lib/errs"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/service/pricing/material"
	"printshop/internal/service/pricing/operation"
	"printshop/internal/storage"
)

const DefaultMarkup = 2.2

type Storage interface {
	material.Storage
	operation.Storage

	GetProduct(ctx context.Context, id int64) (*storage.Product, error)
	GetProductTemplate(ctx context.Context, productID int64) (*storage.ProductTemplate, error)
	GetProductOperations(ctx context.Context, productID int64) ([]storage.Operation, error)
	GetOperation(ctx context.Context, id int64) (*storage.Operation, error)
	GetMarkup(ctx context.Context) (float64, error)
	GetQuantityDiscounts(ctx context.Context, productType string) ([]storage.DiscountTier, error)
}

type Settings struct {
	// DefaultMarkup применяется, когда наценка в настройках не задана (<= 0).
	DefaultMarkup float64
	Optimizer     layout.Optimizer
	Sheets        []layout.SheetCandidate
}

func DefaultSettings() Settings {
	return Settings{
		DefaultMarkup: DefaultMarkup,
		Optimizer:     layout.Default(),
		Sheets:        layout.StandardSheets,
	}
}

type Engine struct {
	storage    Storage
	log        *slog.Logger
	settings   Settings
	materials  *material.Resolver
	operations *operation.Calculator
}

func NewEngine(storage Storage, log *slog.Logger, settings Settings) *Engine {
	if settings.DefaultMarkup <= 0 {
		settings.DefaultMarkup = DefaultMarkup
	}
	if len(settings.Sheets) == 0 {
		settings.Sheets = layout.StandardSheets
	}

	return &Engine{
		storage:    storage,
		log:        log,
		settings:   settings,
		materials:  material.NewResolver(storage),
		operations: operation.NewCalculator(storage),
	}
}

// Calculate считает цену заказа. Ошибки предметной области имеют тип *errs.Error.
func (e *Engine) Calculate(ctx context.Context, req Request) (*Breakdown, error) {
	const op = "service.pricing.Calculate"

	if req.Quantity <= 0 {
		return nil, errs.New(errs.KindInvalidConfiguration, "тираж должен быть больше нуля").
			With("quantity", req.Quantity)
	}

	product, err := e.storage.GetProduct(ctx, req.ProductID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && product == nil) {
		return nil, errs.New(errs.KindProductNotFound, "изделие не найдено").
			With("product_id", req.ProductID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения изделия: %w", op, err)
	}

	want := product.CalculatorType
	if want == "" {
		want = storage.CalculatorFlexible
	}

	if req.Config == nil || req.Config.calculator() != want {
		return nil, errs.New(errs.KindInvalidConfiguration, "конфигурация не подходит к калькулятору изделия").
			With("product_id", product.ID).
			With("calculator", string(want))
	}

	switch cfg := req.Config.(type) {
	case FlexibleConfig:
		return e.flexible(ctx, *product, req.Quantity, cfg)
	case SimplifiedConfig:
		return e.simplified(ctx, *product, req.Quantity, cfg)
	default:
		return nil, errs.New(errs.KindInvalidConfiguration, "неизвестная конфигурация %T", req.Config)
	}
}

func (e *Engine) template(ctx context.Context, productID int64) (*storage.ProductTemplate, error) {
	tpl, err := e.storage.GetProductTemplate(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return tpl, err
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
