package storage

import "fmt"

// ProductTemplate хранит формат изделия, опции и таблицы упрощённого калькулятора.
type ProductTemplate struct {
	ID          int64            `json:"id"`
	ProductID   int64            `json:"product_id"`
	TrimWidth   float64          `json:"trim_width"`
	TrimHeight  float64          `json:"trim_height"`
	Pages       int              `json:"pages"`
	MaterialIDs []int64          `json:"material_ids"`
	Options     []TemplateOption `json:"options"`
	Simplified  *SimplifiedTable `json:"simplified,omitempty"`
}

// TemplateOption: галочка в конфигураторе, которая может тянуть за собой операцию.
type TemplateOption struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	OperationID *int64 `json:"operation_id,omitempty"`
}

type SimplifiedTable struct {
	Sizes []SimplifiedSize `json:"sizes"`
}

type SimplifiedSize struct {
	Code           string         `json:"code"`
	Name           string         `json:"name"`
	Width          float64        `json:"width"`
	Height         float64        `json:"height"`
	MaxQuantity    int            `json:"max_quantity"`
	PrinterClass   string         `json:"printer_class"`
	PrintTiers     []PrintTierSet `json:"print_tiers"`
	MaterialTiers  []NamedTiers   `json:"material_tiers"`
	FinishingTiers []NamedTiers   `json:"finishing_tiers"`
}

const PrinterClassOffice = "office"

type PrintTierSet struct {
	ColorMode ColorMode      `json:"color_mode"`
	Duplex    bool           `json:"duplex"`
	Tiers     []QuantityTier `json:"tiers"`
}

type NamedTiers struct {
	Code  string         `json:"code"`
	Name  string         `json:"name"`
	Tiers []QuantityTier `json:"tiers"`
}

// Operation: производственная операция (печать, резка, ламинация, ...).
type Operation struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	PricingUnit PricingUnit `json:"pricing_unit"`
	BasePrice   float64     `json:"base_price"`
	SetupCost   float64     `json:"setup_cost"`
	MinQuantity int         `json:"min_quantity"`
}

const OperationTypePrint = "print"

func (o Operation) IsPrint() bool {
	return o.Type == OperationTypePrint
}

type PricingUnit string

const (
	PerSheet       PricingUnit = "per_sheet"
	PerItem        PricingUnit = "per_item"
	PerSquareMeter PricingUnit = "per_sqm"
	PerHour        PricingUnit = "per_hour"
	PerCut         PricingUnit = "per_cut"
	Fixed          PricingUnit = "fixed"
	PerOrder       PricingUnit = "per_order"
)

func ParsePricingUnit(s string) (PricingUnit, error) {
	switch u := PricingUnit(s); u {
	case PerSheet, PerItem, PerSquareMeter, PerHour, PerCut, Fixed, PerOrder:
		return u, nil
	default:
		return "", fmt.Errorf("неизвестная единица тарификации: %q", s)
	}
}

// QuantityTier: ступень тиражной цены. MaxQty == nil означает "без верхней границы".
type QuantityTier struct {
	MinQty    int     `json:"min_qty"`
	MaxQty    *int    `json:"max_qty,omitempty"`
	UnitPrice float64 `json:"unit_price"`
}

func (t QuantityTier) Range() (int, *int) {
	return t.MinQty, t.MaxQty
}

type RuleType string

const (
	RuleQuantityDiscount RuleType = "quantity_discount"
	RuleRush             RuleType = "rush"
	RuleSizeBased        RuleType = "size_based"
	RuleComplexity       RuleType = "complexity"
	RuleMaterialBased    RuleType = "material_based"
)

// PricingRule: условное правило поверх базовой цены операции. Применяются по порядку.
type PricingRule struct {
	ID          int64    `json:"id"`
	OperationID int64    `json:"operation_id"`
	Name        string   `json:"name"`
	Type        RuleType `json:"type"`
	Value       float64  `json:"value"`
	MinQuantity *int     `json:"min_quantity,omitempty"`
	MaxQuantity *int     `json:"max_quantity,omitempty"`
	MinSheets   *int     `json:"min_sheets,omitempty"`
	RushOnly    bool     `json:"rush_only"`
	SortOrder   int      `json:"sort_order"`
}
