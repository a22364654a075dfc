package calculate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"printshop/internal/lib/errs"
	"printshop/internal/service/pricing"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

func post(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/pricing/calculate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCalculatePrice_Success(t *testing.T) {
	// 1. Мок калькулятора ждёт гибкую конфигурацию из тела запроса
	mockCalc := new(MockCalculator)

	mockCalc.On("Calculate", mock.Anything, mock.MatchedBy(func(req pricing.Request) bool {
		cfg, ok := req.Config.(pricing.FlexibleConfig)
		return ok && req.ProductID == 7 && req.Quantity == 100 && cfg.Width == 90 && cfg.Technology == "digital"
	})).Return(&pricing.Breakdown{ProductID: 7, Quantity: 100, FinalPrice: 594, PricePerUnit: 5.94}, nil)

	// 2. Запрос
	rr := post(CalculatePrice(slog.Default(), mockCalc), `{
		"product_id": 7,
		"quantity": 100,
		"flexible": {"width": 90, "height": 50, "technology": "digital", "color_mode": "color"}
	}`)

	// 3. Разбор цены и номер расчёта
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		QuoteID    string  `json:"quote_id"`
		FinalPrice float64 `json:"final_price"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	_, err := uuid.Parse(resp.QuoteID)
	assert.NoError(t, err)
	assert.Equal(t, 594.0, resp.FinalPrice)

	mockCalc.AssertExpectations(t)
}

func TestCalculatePrice_InvalidJSON(t *testing.T) {
	mockCalc := new(MockCalculator)

	rr := post(CalculatePrice(slog.Default(), mockCalc), `{"product_id": `)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockCalc.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything)
}

func TestCalculatePrice_NoConfiguration(t *testing.T) {
	mockCalc := new(MockCalculator)

	rr := post(CalculatePrice(slog.Default(), mockCalc), `{"product_id": 7, "quantity": 10}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, errs.KindInvalidConfiguration, resp.Kind)
	mockCalc.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything)
}

func TestCalculatePrice_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   errs.Kind
	}{
		{"изделие не найдено", errs.New(errs.KindProductNotFound, "нет изделия"), http.StatusNotFound, errs.KindProductNotFound},
		{"тираж вне диапазона", errs.New(errs.KindQuantityOutOfRange, "мало").With("min", 4), http.StatusUnprocessableEntity, errs.KindQuantityOutOfRange},
		{"нет цены технологии", errs.New(errs.KindTechnologyPriceMissing, "нет цены"), http.StatusUnprocessableEntity, errs.KindTechnologyPriceMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCalc := new(MockCalculator)
			mockCalc.On("Calculate", mock.Anything, mock.Anything).Return(nil, tt.err)

			rr := post(CalculatePrice(slog.Default(), mockCalc), `{"product_id": 1, "quantity": 2, "simplified": {"size_code": "A5"}}`)

			require.Equal(t, tt.status, rr.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Kind)
		})
	}
}

func TestCalculatePrice_LimitsInContext(t *testing.T) {
	mockCalc := new(MockCalculator)
	mockCalc.On("Calculate", mock.Anything, mock.Anything).
		Return(nil, errs.New(errs.KindQuantityOutOfRange, "мало").With("min", 4).With("max", 1000))

	rr := post(CalculatePrice(slog.Default(), mockCalc), `{"product_id": 1, "quantity": 2, "simplified": {"size_code": "A5"}}`)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 4.0, resp.Context["min"])
	assert.Equal(t, 1000.0, resp.Context["max"])
}

func TestCalculatePrice_InternalError(t *testing.T) {
	mockCalc := new(MockCalculator)
	mockCalc.On("Calculate", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	rr := post(CalculatePrice(slog.Default(), mockCalc), `{"product_id": 1, "quantity": 2, "flexible": {}}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}
