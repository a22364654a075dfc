package pricing

import (
	"printshop/internal/lib/errs"
	"printshop/internal/service/pricing/operation"
	"printshop/internal/storage"
)

// Configuration: выбор клиента. Реализуется только FlexibleConfig и SimplifiedConfig.
type Configuration interface {
	calculator() storage.CalculatorType
}

// FlexibleConfig: конфигурация для калькулятора по операциям.
type FlexibleConfig struct {
	Width      float64           `json:"width,omitempty"`
	Height     float64           `json:"height,omitempty"`
	MaterialID *int64            `json:"material_id,omitempty"`
	Technology string            `json:"technology,omitempty"`
	ColorMode  storage.ColorMode `json:"color_mode,omitempty"`
	Duplex     bool              `json:"duplex"`
	Urgent     bool              `json:"urgent"`
	Pages      int               `json:"pages,omitempty"`
	Options    map[string]bool   `json:"options,omitempty"`
}

func (FlexibleConfig) calculator() storage.CalculatorType { return storage.CalculatorFlexible }

func (c FlexibleConfig) print() operation.Print {
	return operation.Print{Technology: c.Technology, ColorMode: c.ColorMode, Duplex: c.Duplex}
}

// SimplifiedConfig: выбор из готовой таблицы размеров.
type SimplifiedConfig struct {
	SizeCode     string            `json:"size_code"`
	ColorMode    storage.ColorMode `json:"color_mode"`
	Duplex       bool              `json:"duplex"`
	Pages        int               `json:"pages,omitempty"`
	MaterialCode string            `json:"material_code,omitempty"`
	Finishing    []string          `json:"finishing,omitempty"`
}

func (SimplifiedConfig) calculator() storage.CalculatorType { return storage.CalculatorSimplified }

type Request struct {
	ProductID int64
	Quantity  int
	Config    Configuration
}

// RawRequest: запрос в виде JSON (HTTP, CLI). Заполняется ровно одна из конфигураций.
type RawRequest struct {
	ProductID  int64             `json:"product_id"`
	Quantity   int               `json:"quantity"`
	Flexible   *FlexibleConfig   `json:"flexible,omitempty"`
	Simplified *SimplifiedConfig `json:"simplified,omitempty"`
}

func (r RawRequest) Request() (Request, error) {
	req := Request{ProductID: r.ProductID, Quantity: r.Quantity}

	switch {
	case r.Flexible != nil && r.Simplified != nil:
		return Request{}, errs.New(errs.KindInvalidConfiguration, "нужна одна конфигурация, а не обе")
	case r.Flexible != nil:
		req.Config = *r.Flexible
	case r.Simplified != nil:
		req.Config = *r.Simplified
	default:
		return Request{}, errs.New(errs.KindInvalidConfiguration, "конфигурация не задана")
	}

	return req, nil
}
