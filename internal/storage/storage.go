package storage

import "errors"

// ErrNotFound возвращается хранилищем, когда запись отсутствует.
var ErrNotFound = errors.New("record not found")

// Product: изделие из каталога типографии.
type Product struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	CalculatorType CalculatorType `json:"calculator_type"`
	IsActive       bool           `json:"is_active"`
}

type CalculatorType string

const (
	CalculatorFlexible   CalculatorType = "flexible"
	CalculatorSimplified CalculatorType = "simplified"
)
