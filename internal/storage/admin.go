package storage

// PricingSettings: то, что видит администратор: наценка и тиражные скидки.
type PricingSettings struct {
	Markup    float64                   `json:"markup"`
	Discounts map[string][]DiscountTier `json:"discounts"`
}

// DiscountTier: процент скидки для диапазона тиража (или листов).
type DiscountTier struct {
	ID          int64   `json:"id"`
	ProductType string  `json:"product_type"`
	MinQty      int     `json:"min_qty"`
	MaxQty      *int    `json:"max_qty,omitempty"`
	Percent     float64 `json:"percent"`
}

func (t DiscountTier) Range() (int, *int) {
	return t.MinQty, t.MaxQty
}

// OperationNorm: типовая операция для типа изделия, используется при доукомплектовании.
type OperationNorm struct {
	ProductType string `json:"product_type"`
	OperationID int64  `json:"operation_id"`
	SortOrder   int    `json:"sort_order"`
}
