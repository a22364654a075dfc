package material

import (
	"context"
	"errors"
	"fmt"
	"math"
	"printshop/internal/lib/money"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/storage"
	"strings"
)

// fallbackLimit: сколько материалов со склада берём, если ничего не настроено.
const fallbackLimit = 5

type Storage interface {
	GetMaterial(ctx context.Context, id int64) (*storage.Material, error)
	GetProductMaterials(ctx context.Context, productID int64) ([]storage.ProductMaterial, error)
	GetMaterialRules(ctx context.Context, productType, productName string) ([]storage.MaterialRule, error)
	GetInStockMaterials(ctx context.Context, limit int) ([]storage.Material, error)
}

type Source string

const (
	SourceExplicit Source = "explicit"
	SourceProduct  Source = "product"
	SourceRule     Source = "rule"
	SourceTemplate Source = "template"
	SourceFallback Source = "fallback"
	// SourceTable: цена из таблицы упрощённого калькулятора.
	SourceTable Source = "table"
)

type Input struct {
	Product      storage.Product
	Template     *storage.ProductTemplate
	Size         layout.Dimensions
	Layout       layout.Result
	MaterialID   *int64
	Quantity     int
	SheetsNeeded int
}

type Line struct {
	MaterialID int64                    `json:"material_id"`
	Name       string                   `json:"name"`
	Unit       string                   `json:"unit"`
	Quantity   int                      `json:"quantity"`
	UnitPrice  float64                  `json:"unit_price"`
	Total      float64                  `json:"total"`
	Source     Source                   `json:"source"`
	Basis      storage.CalculationBasis `json:"basis,omitempty"`
}

type Result struct {
	Lines  []Line `json:"lines"`
	Source Source `json:"source,omitempty"`
	// Estimated: материалы подобраны со склада наугад, цену нужно проверить.
	Estimated bool `json:"estimated"`
	// ExplicitMissing: заказчик выбрал материал, которого нет в каталоге,
	// строки взяты из следующих источников цепочки.
	ExplicitMissing bool `json:"explicit_missing"`
}

type Resolver struct {
	storage Storage
}

func NewResolver(storage Storage) *Resolver {
	return &Resolver{storage: storage}
}

// Resolve подбирает материалы по цепочке: явный выбор, материалы изделия,
// правила по типу изделия (плюс материалы шаблона), склад. Побеждает первый
// непустой источник.
func (r *Resolver) Resolve(ctx context.Context, in Input) (Result, error) {
	const op = "service.material.Resolve"

	if in.MaterialID == nil {
		return r.resolveConfigured(ctx, in)
	}

	m, err := r.storage.GetMaterial(ctx, *in.MaterialID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Result{}, fmt.Errorf("%s: ошибка получения материала %d: %w", op, *in.MaterialID, err)
	}
	if m != nil {
		line := newLine(*m, in.SheetsNeeded, SourceExplicit)
		return Result{Lines: []Line{line}, Source: SourceExplicit}, nil
	}

	res, err := r.resolveConfigured(ctx, in)
	if err != nil {
		return Result{}, err
	}
	res.ExplicitMissing = true

	return res, nil
}

// resolveConfigured: цепочка без явного выбора.
func (r *Resolver) resolveConfigured(ctx context.Context, in Input) (Result, error) {
	const op = "service.material.Resolve"

	linked, err := r.storage.GetProductMaterials(ctx, in.Product.ID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: ошибка получения материалов изделия: %w", op, err)
	}
	if len(linked) > 0 {
		lines := make([]Line, 0, len(linked))
		for _, pm := range linked {
			qty := ceil(pm.QtyPerSheet * float64(in.SheetsNeeded))
			lines = append(lines, newLine(pm.Material, qty, SourceProduct))
		}
		return Result{Lines: lines, Source: SourceProduct}, nil
	}

	lines, err := r.byRules(ctx, in)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(lines) > 0 {
		return Result{Lines: lines, Source: lines[0].Source}, nil
	}

	stock, err := r.storage.GetInStockMaterials(ctx, fallbackLimit)
	if err != nil {
		return Result{}, fmt.Errorf("%s: ошибка получения материалов со склада: %w", op, err)
	}
	if len(stock) == 0 {
		return Result{}, nil
	}

	qty := in.SheetsNeeded
	if qty <= 0 {
		qty = in.Quantity
	}

	lines = make([]Line, 0, len(stock))
	for i, m := range stock {
		if i == fallbackLimit {
			break
		}
		lines = append(lines, newLine(m, qty, SourceFallback))
	}

	return Result{Lines: lines, Source: SourceFallback, Estimated: true}, nil
}

func (r *Resolver) byRules(ctx context.Context, in Input) ([]Line, error) {
	rules, err := r.storage.GetMaterialRules(ctx, in.Product.Type, in.Product.Name)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения правил материалов: %w", err)
	}

	var (
		lines   []Line
		covered = make(map[int64]bool)
	)

	for _, rule := range rules {
		if rule.ProductName != "" && !strings.EqualFold(rule.ProductName, in.Product.Name) {
			continue
		}

		qty, err := ruleQuantity(rule, in)
		if err != nil {
			return nil, err
		}

		line := newLine(rule.Material, qty, SourceRule)
		line.Basis = rule.Basis
		lines = append(lines, line)
		covered[rule.MaterialID] = true
	}

	if in.Template == nil {
		return lines, nil
	}

	for _, id := range in.Template.MaterialIDs {
		if covered[id] {
			continue
		}

		m, err := r.storage.GetMaterial(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка получения материала шаблона %d: %w", id, err)
		}

		lines = append(lines, newLine(*m, templateQuantity(in), SourceTemplate))
		covered[id] = true
	}

	return lines, nil
}

func ruleQuantity(rule storage.MaterialRule, in Input) (int, error) {
	switch rule.Basis {
	case storage.BasisPerItem:
		return ceil(rule.QtyPerUnit * float64(in.Quantity)), nil
	case storage.BasisPerSheet:
		return ceil(rule.QtyPerUnit * float64(in.SheetsNeeded)), nil
	case storage.BasisPerSquareMeter:
		return ceil(rule.QtyPerUnit * float64(in.Quantity) * in.Size.AreaM2()), nil
	case storage.BasisFixed:
		return ceil(rule.QtyPerUnit), nil
	default:
		return 0, fmt.Errorf("правило %d: неизвестная база расчёта %q", rule.ID, rule.Basis)
	}
}

func templateQuantity(in Input) int {
	if in.SheetsNeeded > 0 {
		return in.SheetsNeeded
	}
	if in.Layout.ItemsPerSheet > 0 {
		return ceil(float64(in.Quantity) / float64(in.Layout.ItemsPerSheet))
	}
	return in.Quantity
}

func newLine(m storage.Material, qty int, src Source) Line {
	return Line{
		MaterialID: m.ID,
		Name:       m.Name,
		Unit:       m.Unit,
		Quantity:   qty,
		UnitPrice:  m.PricePerSheet,
		Total:      money.Round(m.PricePerSheet * float64(qty)),
		Source:     src,
	}
}

// ceil округляет вверх, не превращая 3.0000000001 (ошибку float) в 4.
func ceil(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(v - 1e-9))
}
