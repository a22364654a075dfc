// Package operation считает стоимость одной производственной операции.
//
// Цена складывается из эффективного количества (зависит от единицы тарификации),
// цены за единицу (тиражная ступень, базовая цена или прайс технологии печати)
// и цепочки правил, которые применяются по порядку и накапливаются.
package operation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"printshop/internal/lib/errs"
	"printshop/internal/lib/money"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/service/pricing/tier"
	"printshop/internal/storage"
)

// ItemsPerHour: производительность, по которой переводим тираж в часы для per_hour.
const ItemsPerHour = 100

type Storage interface {
	GetTechnologyPrice(ctx context.Context, code string) (*storage.TechnologyPrice, error)
	GetPricingRules(ctx context.Context, operationID int64) ([]storage.PricingRule, error)
	GetOperationTiers(ctx context.Context, operationID int64, mode storage.ColorMode, duplex bool) ([]storage.QuantityTier, error)
}

type Print struct {
	Technology string            `json:"technology"`
	ColorMode  storage.ColorMode `json:"color_mode"`
	Duplex     bool              `json:"duplex"`
}

type Input struct {
	Operation    storage.Operation
	Print        Print
	Urgent       bool
	Quantity     int
	SheetsNeeded int
	Size         layout.Dimensions
	Layout       layout.Result
	// OrderQuantity: заказанный тираж, если Quantity считается на один экземпляр
	// (многостраничные изделия). Ноль означает, что они совпадают.
	OrderQuantity int
}

type PriceSource string

const (
	SourceBase       PriceSource = "base"
	SourceTier       PriceSource = "tier"
	SourceTechnology PriceSource = "technology"
)

type Line struct {
	OperationID       int64               `json:"operation_id"`
	Name              string              `json:"name"`
	Type              string              `json:"type"`
	PricingUnit       storage.PricingUnit `json:"pricing_unit"`
	UnitPrice         float64             `json:"unit_price"`
	EffectiveQuantity float64             `json:"effective_quantity"`
	SetupCost         float64             `json:"setup_cost"`
	TotalCost         float64             `json:"total_cost"`
	AppliedRules      []string            `json:"applied_rules,omitempty"`
	// SkippedRules: правила, подошедшие по условиям, но не меняющие цену.
	SkippedRules []string    `json:"skipped_rules,omitempty"`
	PriceSource  PriceSource `json:"price_source"`
	TierFallback bool        `json:"tier_fallback,omitempty"`
}

type Calculator struct {
	storage Storage
}

func NewCalculator(storage Storage) *Calculator {
	return &Calculator{storage: storage}
}

func (c *Calculator) Price(ctx context.Context, in Input) (Line, error) {
	const op = "service.operation.Price"

	o := in.Operation

	ordered := in.Quantity
	if in.OrderQuantity > 0 {
		ordered = in.OrderQuantity
	}

	if o.MinQuantity > 0 && ordered < o.MinQuantity {
		return Line{}, errs.New(errs.KindQuantityOutOfRange,
			"операция %q требует тираж не меньше %d", o.Name, o.MinQuantity).
			With("operation_id", o.ID).
			With("min", o.MinQuantity).
			With("quantity", ordered)
	}

	line := Line{
		OperationID: o.ID,
		Name:        o.Name,
		Type:        o.Type,
		PricingUnit: o.PricingUnit,
		SetupCost:   o.SetupCost,
	}

	if o.IsPrint() {
		unit, err := c.technologyPrice(ctx, in)
		if err != nil {
			return Line{}, err
		}

		line.UnitPrice = unit
		line.EffectiveQuantity = float64(in.SheetsNeeded)
		line.PriceSource = SourceTechnology
	} else {
		qty, err := EffectiveQuantity(o.PricingUnit, in.Quantity, in.SheetsNeeded, in.Size)
		if err != nil {
			return Line{}, fmt.Errorf("%s: операция %d: %w", op, o.ID, err)
		}
		line.EffectiveQuantity = qty

		tiers, err := c.storage.GetOperationTiers(ctx, o.ID, in.Print.ColorMode, in.Print.Duplex)
		if err != nil {
			return Line{}, fmt.Errorf("%s: ошибка получения ступеней операции %d: %w", op, o.ID, err)
		}

		if res, ok := tier.Resolve(tiers, int(math.Ceil(qty))); ok {
			line.UnitPrice = res.Tier.UnitPrice
			line.PriceSource = SourceTier
			line.TierFallback = res.Fallback
		} else {
			line.UnitPrice = o.BasePrice
			line.PriceSource = SourceBase
		}
	}

	rules, err := c.storage.GetPricingRules(ctx, o.ID)
	if err != nil {
		return Line{}, fmt.Errorf("%s: ошибка получения правил операции %d: %w", op, o.ID, err)
	}

	line.UnitPrice, line.AppliedRules, line.SkippedRules = applyRules(line.UnitPrice, rules, in, ordered)
	line.TotalCost = money.Round(line.UnitPrice * line.EffectiveQuantity)

	return line, nil
}

func (c *Calculator) technologyPrice(ctx context.Context, in Input) (float64, error) {
	const op = "service.operation.technologyPrice"

	code := in.Print.Technology
	if code == "" {
		return 0, errs.New(errs.KindTechnologyPriceMissing, "не указана технология печати").
			With("operation_id", in.Operation.ID)
	}

	tech, err := c.storage.GetTechnologyPrice(ctx, code)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && tech == nil) {
		return 0, errs.New(errs.KindTechnologyPriceMissing, "нет прайса для технологии %q", code).
			With("technology", code)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	price, ok := tech.Price(in.Print.ColorMode, in.Print.Duplex)
	if !ok || price <= 0 {
		return 0, errs.New(errs.KindTechnologyColorPriceMissing,
			"нет цены для технологии %q в режиме %q", code, in.Print.ColorMode).
			With("technology", code).
			With("color_mode", string(in.Print.ColorMode)).
			With("duplex", in.Print.Duplex)
	}

	if tech.CounterUnit == storage.CounterLinearMeters {
		price *= in.Layout.SheetUsed.Width / 1000
	}

	return price, nil
}

// EffectiveQuantity переводит тираж в количество единиц тарификации.
// per_cut считается по листам: резы на лист уже заложены в цену реза.
func EffectiveQuantity(unit storage.PricingUnit, quantity, sheets int, size layout.Dimensions) (float64, error) {
	switch unit {
	case storage.PerSheet, storage.PerCut:
		return float64(sheets), nil
	case storage.PerItem:
		return float64(quantity), nil
	case storage.PerSquareMeter:
		return float64(quantity) * size.AreaM2(), nil
	case storage.PerHour:
		return math.Ceil(float64(quantity) / ItemsPerHour), nil
	case storage.Fixed, storage.PerOrder:
		return 1, nil
	default:
		return 0, fmt.Errorf("неизвестная единица тарификации %q", unit)
	}
}

// ordered: тираж заказа, для многостраничных изделий он больше in.Quantity.
func applyRules(price float64, rules []storage.PricingRule, in Input, ordered int) (float64, []string, []string) {
	var applied, skipped []string

	for _, r := range rules {
		if !ruleMatches(r, in, ordered) {
			continue
		}

		switch r.Type {
		case storage.RuleQuantityDiscount:
			price *= 1 - r.Value/100
		case storage.RuleRush, storage.RuleComplexity:
			price *= r.Value
		case storage.RuleSizeBased:
			price = r.Value
		default:
			skipped = append(skipped, r.Name)
			continue
		}

		applied = append(applied, r.Name)
	}

	return price, applied, skipped
}

func ruleMatches(r storage.PricingRule, in Input, ordered int) bool {
	if r.MinQuantity != nil && ordered < *r.MinQuantity {
		return false
	}
	if r.MaxQuantity != nil && ordered > *r.MaxQuantity {
		return false
	}
	if r.MinSheets != nil && in.SheetsNeeded < *r.MinSheets {
		return false
	}
	// срочная наценка без срочного заказа не применяется, даже если флаг не стоит
	if (r.RushOnly || r.Type == storage.RuleRush) && !in.Urgent {
		return false
	}
	return true
}
