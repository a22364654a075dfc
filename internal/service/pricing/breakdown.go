package pricing

import (
	"fmt"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/service/pricing/material"
	"printshop/internal/service/pricing/operation"
	"printshop/internal/storage"
)

// Breakdown: полный разбор цены заказа.
type Breakdown struct {
	ProductID   int64                  `json:"product_id"`
	ProductName string                 `json:"product_name"`
	ProductType string                 `json:"product_type"`
	Strategy    storage.CalculatorType `json:"strategy"`
	Quantity    int                    `json:"quantity"`

	Size         layout.Dimensions `json:"size"`
	Layout       layout.Result     `json:"layout"`
	SheetsNeeded int               `json:"sheets_needed"`

	// CopyMultiplier > 1: листы, себестоимость и скидка посчитаны на один
	// экземпляр, FinalPrice = цена экземпляра × CopyMultiplier.
	CopyMultiplier int `json:"copy_multiplier"`

	Operations         []operation.Line `json:"operations"`
	Materials          []material.Line  `json:"materials"`
	MaterialsEstimated bool             `json:"materials_estimated"`

	OperationsTotal float64 `json:"operations_total"`
	MaterialsTotal  float64 `json:"materials_total"`
	SetupTotal      float64 `json:"setup_total"`
	Subtotal        float64 `json:"subtotal"`
	Markup          float64 `json:"markup"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	FinalPrice      float64 `json:"final_price"`
	PricePerUnit    float64 `json:"price_per_unit"`

	Trace []Decision `json:"trace"`
}

// Decision: одна запись журнала решений, принятых при расчёте.
type Decision struct {
	Step   string `json:"step"`
	Detail string `json:"detail"`
}

func newBreakdown(p storage.Product, quantity int, strategy storage.CalculatorType) *Breakdown {
	return &Breakdown{
		ProductID:      p.ID,
		ProductName:    p.Name,
		ProductType:    p.Type,
		Strategy:       strategy,
		Quantity:       quantity,
		CopyMultiplier: 1,
		Operations:     []operation.Line{},
		Materials:      []material.Line{},
	}
}

func (b *Breakdown) note(step, format string, args ...any) {
	b.Trace = append(b.Trace, Decision{Step: step, Detail: fmt.Sprintf(format, args...)})
}

// costs раскладывает строки разбора по колонкам для сложения.
func (b *Breakdown) costs() (ops, setup, mats []float64) {
	for _, l := range b.Operations {
		ops = append(ops, l.TotalCost)
		setup = append(setup, l.SetupCost)
	}
	for _, l := range b.Materials {
		mats = append(mats, l.Total)
	}
	return ops, setup, mats
}
