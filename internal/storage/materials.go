package storage

import "fmt"

type Material struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	PricePerSheet float64 `json:"price_per_sheet"`
	InStock       bool    `json:"in_stock"`
}

// ProductMaterial: материал, жёстко привязанный к изделию.
type ProductMaterial struct {
	MaterialID  int64    `json:"material_id"`
	QtyPerSheet float64  `json:"qty_per_sheet"`
	Material    Material `json:"material"`
}

// MaterialRule: правило подбора материала по типу и названию изделия.
// Пустой ProductName подходит любому изделию этого типа.
type MaterialRule struct {
	ID          int64            `json:"id"`
	ProductType string           `json:"product_type"`
	ProductName string           `json:"product_name"`
	MaterialID  int64            `json:"material_id"`
	QtyPerUnit  float64          `json:"qty_per_unit"`
	Basis       CalculationBasis `json:"calculation_basis"`
	Material    Material         `json:"material"`
}

type CalculationBasis string

const (
	BasisPerItem        CalculationBasis = "per_item"
	BasisPerSheet       CalculationBasis = "per_sheet"
	BasisPerSquareMeter CalculationBasis = "per_sqm"
	BasisFixed          CalculationBasis = "fixed"
)

func ParseCalculationBasis(s string) (CalculationBasis, error) {
	switch b := CalculationBasis(s); b {
	case BasisPerItem, BasisPerSheet, BasisPerSquareMeter, BasisFixed:
		return b, nil
	default:
		return "", fmt.Errorf("неизвестная база расчёта материала: %q", s)
	}
}
