package generate_excel

import (
	"context"
	"fmt"
	"printshop/internal/service/pricing"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Расчёт"

type QuoteCalculator interface {
	Calculate(ctx context.Context, req pricing.Request) (*pricing.Breakdown, error)
}

type GenerateExcelService struct {
	calc QuoteCalculator
}

func NewGenerateService(calc QuoteCalculator) *GenerateExcelService {
	return &GenerateExcelService{calc: calc}
}

// GenerateQuote считает заказ и выгружает разбор цены в xlsx.
func (g *GenerateExcelService) GenerateQuote(ctx context.Context, quoteID string, req pricing.Request) ([]byte, error) {
	b, err := g.calc.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	return QuoteWorkbook(quoteID, b)
}

// QuoteWorkbook собирает книгу: шапка, операции, материалы, итоги и журнал решений.
func QuoteWorkbook(quoteID string, b *pricing.Breakdown) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	// --- СТИЛИ ---
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	w := &rowWriter{f: f, row: 1}

	// 1. Шапка заказа
	w.write("Расчёт", quoteID)
	w.write("Изделие", b.ProductName)
	w.write("Калькулятор", string(b.Strategy))
	w.write("Тираж", b.Quantity)
	w.write("Формат, мм", fmt.Sprintf("%.0f×%.0f", b.Size.Width, b.Size.Height))
	if b.Layout.FitsOnSheet {
		w.write("Лист", fmt.Sprintf("%s, %d шт. на листе", b.Layout.SheetName, b.Layout.ItemsPerSheet))
	}
	w.write("Листов", b.SheetsNeeded)
	w.skip()

	// 2. Операции
	w.header(headerStyle, "Операция", "Единица", "Кол-во", "Цена", "Приладка", "Сумма", "Правила")
	for _, op := range b.Operations {
		w.write(op.Name, string(op.PricingUnit), op.EffectiveQuantity, op.UnitPrice, op.SetupCost, op.TotalCost,
			strings.Join(op.AppliedRules, ", "))
	}
	w.skip()

	// 3. Материалы
	w.header(headerStyle, "Материал", "Ед.", "Кол-во", "Цена", "Сумма", "Источник")
	for _, m := range b.Materials {
		w.write(m.Name, m.Unit, m.Quantity, m.UnitPrice, m.Total, string(m.Source))
	}
	if b.MaterialsEstimated {
		w.write("Материалы не настроены, цена оценочная")
	}
	w.skip()

	// 4. Итоги
	totalsStart := w.row
	w.write("Операции", b.OperationsTotal)
	w.write("Материалы", b.MaterialsTotal)
	w.write("Приладка", b.SetupTotal)
	w.write("Себестоимость", b.Subtotal)
	w.write("Наценка", b.Markup)
	w.write("Скидка, %", b.DiscountPercent)
	w.write("Скидка", b.DiscountAmount)
	w.write("Итого", b.FinalPrice)
	w.write("За штуку", b.PricePerUnit)
	_ = f.SetCellStyle(sheetName, cellName(1, totalsStart), cellName(1, w.row-1), boldStyle)
	w.skip()

	// 5. Журнал решений
	w.header(headerStyle, "Шаг", "Решение")
	for _, d := range b.Trace {
		w.write(d.Step, d.Detail)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "G", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

type rowWriter struct {
	f   *excelize.File
	row int
}

func (w *rowWriter) write(values ...any) {
	for i, v := range values {
		_ = w.f.SetCellValue(sheetName, cellName(i+1, w.row), v)
	}
	w.row++
}

func (w *rowWriter) header(style int, names ...string) {
	for i, name := range names {
		_ = w.f.SetCellValue(sheetName, cellName(i+1, w.row), name)
	}
	_ = w.f.SetCellStyle(sheetName, cellName(1, w.row), cellName(len(names), w.row), style)
	w.row++
}

func (w *rowWriter) skip() {
	w.row++
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
