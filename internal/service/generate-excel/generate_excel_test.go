package generate_excel

import (
	"bytes"
	"context"
	"errors"
	"printshop/internal/service/pricing"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/service/pricing/material"
	"printshop/internal/service/pricing/operation"
	"printshop/internal/storage"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type MockCalculator struct {
	mock.Mock
}

func (m *MockCalculator) Calculate(ctx context.Context, req pricing.Request) (*pricing.Breakdown, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Breakdown), args.Error(1)
}

func sampleBreakdown() *pricing.Breakdown {
	return &pricing.Breakdown{
		ProductID:    1,
		ProductName:  "Визитка",
		ProductType:  "business_cards",
		Strategy:     storage.CalculatorFlexible,
		Quantity:     100,
		Size:         layout.Dimensions{Width: 90, Height: 50},
		Layout:       layout.Result{FitsOnSheet: true, ItemsPerSheet: 24, SheetName: "SRA3"},
		SheetsNeeded: 5,
		Operations: []operation.Line{
			{Name: "Печать", PricingUnit: storage.PerSheet, EffectiveQuantity: 5, UnitPrice: 12, TotalCost: 60},
			{Name: "Резка", PricingUnit: storage.PerCut, EffectiveQuantity: 5, UnitPrice: 3, TotalCost: 15, AppliedRules: []string{"срочно", "опт"}},
		},
		Materials: []material.Line{
			{Name: "Мелованная 300г", Unit: "лист", Quantity: 5, UnitPrice: 2.5, Total: 12.5, Source: material.SourceProduct},
		},
		OperationsTotal: 75,
		MaterialsTotal:  12.5,
		Subtotal:        87.5,
		Markup:          2.2,
		FinalPrice:      192.5,
		PricePerUnit:    1.925,
		Trace:           []pricing.Decision{{Step: "layout", Detail: "24 шт. на SRA3"}},
	}
}

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	return rows
}

// findRow возвращает первую строку, у которой первая ячейка равна title.
func findRow(rows [][]string, title string) []string {
	for _, r := range rows {
		if len(r) > 0 && r[0] == title {
			return r
		}
	}
	return nil
}

func TestQuoteWorkbook(t *testing.T) {
	data, err := QuoteWorkbook("Q-1", sampleBreakdown())
	require.NoError(t, err)

	rows := readRows(t, data)

	// 1. Шапка
	assert.Equal(t, []string{"Расчёт", "Q-1"}, rows[0])
	assert.Equal(t, "Визитка", findRow(rows, "Изделие")[1])
	assert.Equal(t, "SRA3, 24 шт. на листе", findRow(rows, "Лист")[1])

	// 2. Операции с применёнными правилами
	cut := findRow(rows, "Резка")
	require.NotNil(t, cut)
	assert.Equal(t, "per_cut", cut[1])
	assert.Equal(t, "срочно, опт", cut[6])

	// 3. Материалы и итоги
	assert.Equal(t, "product", findRow(rows, "Мелованная 300г")[5])
	assert.Equal(t, "192.5", findRow(rows, "Итого")[1])

	// 4. Журнал решений
	assert.Equal(t, "24 шт. на SRA3", findRow(rows, "layout")[1])
	assert.Nil(t, findRow(rows, "Материалы не настроены, цена оценочная"))
}

func TestQuoteWorkbook_EstimatedMaterials(t *testing.T) {
	b := sampleBreakdown()
	b.MaterialsEstimated = true
	b.Layout = layout.Result{}

	data, err := QuoteWorkbook("Q-2", b)
	require.NoError(t, err)

	rows := readRows(t, data)
	assert.NotNil(t, findRow(rows, "Материалы не настроены, цена оценочная"))
	assert.Nil(t, findRow(rows, "Лист"))
}

func TestGenerateQuote(t *testing.T) {
	mockCalc := new(MockCalculator)
	req := pricing.Request{ProductID: 1, Quantity: 100, Config: pricing.FlexibleConfig{}}

	mockCalc.On("Calculate", mock.Anything, req).Return(sampleBreakdown(), nil).Once()

	data, err := NewGenerateService(mockCalc).GenerateQuote(context.Background(), "Q-3", req)
	require.NoError(t, err)
	assert.Equal(t, "Q-3", readRows(t, data)[0][1])

	mockCalc.AssertExpectations(t)
}

func TestGenerateQuote_CalculateError(t *testing.T) {
	mockCalc := new(MockCalculator)
	calcErr := errors.New("изделие не найдено")

	mockCalc.On("Calculate", mock.Anything, mock.Anything).Return(nil, calcErr)

	data, err := NewGenerateService(mockCalc).GenerateQuote(context.Background(), "Q-4", pricing.Request{})
	assert.ErrorIs(t, err, calcErr)
	assert.Nil(t, data)
}
