package money

import "github.com/shopspring/decimal"

// Round округляет денежную сумму до копеек.
func Round(v float64) float64 {
	return RoundTo(v, 2)
}

func RoundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func D(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Sum складывает суммы без накопления погрешности float64.
func Sum(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}
