// Package layout раскладывает прямоугольное изделие на печатном листе.
//
// Раскладка сеточная: изделия стоят рядами и колонками с одинаковым зазором,
// допускается только поворот на 90°. Из двух ориентаций выбирается та,
// у которой меньше процент отхода.
package layout

import "math"

const (
	DefaultMargin = 5.0 // технологическое поле принтера с каждой стороны, мм
	DefaultGap    = 2.0 // зазор между изделиями под резку, мм
)

// Dimensions: размеры в миллиметрах.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (d Dimensions) Rotated() Dimensions {
	return Dimensions{Width: d.Height, Height: d.Width}
}

// AreaM2: площадь в квадратных метрах.
func (d Dimensions) AreaM2() float64 {
	return (d.Width / 1000) * (d.Height / 1000)
}

type SheetCandidate struct {
	Name string     `json:"name"`
	Size Dimensions `json:"size"`
}

// StandardSheets: стандартные форматы листа производства. Только для чтения.
var StandardSheets = []SheetCandidate{
	{Name: "SRA3", Size: Dimensions{Width: 320, Height: 450}},
	{Name: "SRA3+", Size: Dimensions{Width: 330, Height: 488}},
	{Name: "A3", Size: Dimensions{Width: 297, Height: 420}},
}

type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type Result struct {
	FitsOnSheet     bool       `json:"fits_on_sheet"`
	ItemsPerSheet   int        `json:"items_per_sheet"`
	WastePercentage float64    `json:"waste_percentage"`
	SheetUsed       Dimensions `json:"sheet_used"`
	SheetName       string     `json:"sheet_name,omitempty"`
	Grid            Grid       `json:"grid"`
	CutsPerSheet    int        `json:"cuts_per_sheet"`
	Rotated         bool       `json:"rotated"`
}

type Optimizer struct {
	Margin float64
	Gap    float64
}

func New(margin, gap float64) Optimizer {
	return Optimizer{Margin: margin, Gap: gap}
}

func Default() Optimizer {
	return New(DefaultMargin, DefaultGap)
}

// businessCardOverride: визитка 55×85 всегда кладётся повёрнутой,
// независимо от посчитанного отхода, если повёрнутая сетка влезает на лист.
// Так исторически настроены ножи.
func businessCardOverride(item Dimensions) bool {
	return item.Width == 55 && item.Height == 85
}

// Layout считает раскладку в обеих ориентациях и возвращает лучшую.
func (o Optimizer) Layout(item, sheet Dimensions) Result {
	asGiven := o.grid(item, sheet)
	rotated := o.grid(item.Rotated(), sheet)
	rotated.Rotated = true

	if businessCardOverride(item) && rotated.FitsOnSheet {
		return rotated
	}

	if rotated.WastePercentage < asGiven.WastePercentage {
		return rotated
	}

	return asGiven
}

func (o Optimizer) grid(item, sheet Dimensions) Result {
	res := Result{SheetUsed: sheet, WastePercentage: 100}

	usableW := sheet.Width - 2*o.Margin
	usableH := sheet.Height - 2*o.Margin
	if usableW <= 0 || usableH <= 0 || item.Width <= 0 || item.Height <= 0 {
		return res
	}

	cols := int(math.Floor(usableW / (item.Width + o.Gap)))
	rows := int(math.Floor(usableH / (item.Height + o.Gap)))
	if cols <= 0 || rows <= 0 {
		return res
	}

	usedW := float64(cols)*(item.Width+o.Gap) - o.Gap
	usedH := float64(rows)*(item.Height+o.Gap) - o.Gap
	usable := usableW * usableH

	waste := (usable - usedW*usedH) / usable * 100
	waste = math.Max(0, math.Min(100, waste))

	res.FitsOnSheet = true
	res.ItemsPerSheet = rows * cols
	res.WastePercentage = waste
	res.Grid = Grid{Rows: rows, Cols: cols}
	res.CutsPerSheet = cols + rows + 2

	return res
}

// FindBestSheet выбирает лист с максимальной эффективностью items/(waste+1).
// Если изделие не влезает ни на один лист, возвращает пустой результат
// с первым кандидатом в SheetUsed.
func (o Optimizer) FindBestSheet(item Dimensions, candidates []SheetCandidate) Result {
	if len(candidates) == 0 {
		return Result{WastePercentage: 100}
	}

	var (
		best      Result
		bestScore = -1.0
	)

	for _, c := range candidates {
		res := o.Layout(item, c.Size)
		if !res.FitsOnSheet {
			continue
		}

		score := float64(res.ItemsPerSheet) / (res.WastePercentage + 1)
		if score > bestScore {
			res.SheetName = c.Name
			best = res
			bestScore = score
		}
	}

	if bestScore < 0 {
		return Result{
			SheetUsed:       candidates[0].Size,
			SheetName:       candidates[0].Name,
			WastePercentage: 100,
		}
	}

	return best
}
