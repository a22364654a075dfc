package storage

type ColorMode string

const (
	ColorModeBW    ColorMode = "bw"
	ColorModeColor ColorMode = "color"
)

type CounterUnit string

const (
	CounterSheets       CounterUnit = "sheets"
	CounterLinearMeters CounterUnit = "linear_meters"
)

// TechnologyPrice: прайс печатной технологии (цифра, офсет, широкий формат).
type TechnologyPrice struct {
	Code             string      `json:"code"`
	Name             string      `json:"name"`
	CounterUnit      CounterUnit `json:"counter_unit"`
	PriceBWSingle    float64     `json:"price_bw_single"`
	PriceBWDuplex    float64     `json:"price_bw_duplex"`
	PriceColorSingle float64     `json:"price_color_single"`
	PriceColorDuplex float64     `json:"price_color_duplex"`
}

// Price возвращает цену для режима цветности; ok=false для неизвестного режима.
func (t TechnologyPrice) Price(mode ColorMode, duplex bool) (float64, bool) {
	switch mode {
	case ColorModeBW:
		if duplex {
			return t.PriceBWDuplex, true
		}
		return t.PriceBWSingle, true
	case ColorModeColor:
		if duplex {
			return t.PriceColorDuplex, true
		}
		return t.PriceColorSingle, true
	default:
		return 0, false
	}
}
