package get

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"printshop/internal/storage"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductProvider struct {
	mock.Mock
}

func (m *MockProductProvider) GetProduct(ctx context.Context, id int64) (*storage.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Product), args.Error(1)
}

func (m *MockProductProvider) GetProductTemplate(ctx context.Context, productID int64) (*storage.ProductTemplate, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductTemplate), args.Error(1)
}

func (m *MockProductProvider) GetProductOperations(ctx context.Context, productID int64) ([]storage.Operation, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Operation), args.Error(1)
}

// serve прогоняет запрос через роутер chi, чтобы сработал URLParam.
func serve(provider ProductProvider, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/api/products/{id}", GetProduct(slog.Default(), provider))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestGetProduct_Success(t *testing.T) {
	mockStorage := new(MockProductProvider)

	mockStorage.On("GetProduct", mock.Anything, int64(7)).
		Return(&storage.Product{ID: 7, Name: "Визитка", Type: "business_cards"}, nil)
	mockStorage.On("GetProductTemplate", mock.Anything, int64(7)).
		Return(&storage.ProductTemplate{ProductID: 7, TrimWidth: 90, TrimHeight: 50}, nil)
	mockStorage.On("GetProductOperations", mock.Anything, int64(7)).
		Return([]storage.Operation{{ID: 1, Name: "Резка", PricingUnit: storage.PerCut}}, nil)

	rr := serve(mockStorage, "/api/products/7")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ResponseProduct
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Визитка", resp.Name)
	require.NotNil(t, resp.Template)
	assert.Equal(t, 90.0, resp.Template.TrimWidth)
	assert.Len(t, resp.Operations, 1)

	mockStorage.AssertExpectations(t)
}

func TestGetProduct_WithoutTemplate(t *testing.T) {
	mockStorage := new(MockProductProvider)

	mockStorage.On("GetProduct", mock.Anything, int64(7)).Return(&storage.Product{ID: 7, Name: "Баннер"}, nil)
	mockStorage.On("GetProductTemplate", mock.Anything, int64(7)).Return(nil, storage.ErrNotFound)
	mockStorage.On("GetProductOperations", mock.Anything, int64(7)).Return(nil, nil)

	rr := serve(mockStorage, "/api/products/7")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ResponseProduct
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Nil(t, resp.Template)
	assert.NotNil(t, resp.Operations)
}

func TestGetProduct_BadID(t *testing.T) {
	mockStorage := new(MockProductProvider)

	assert.Equal(t, http.StatusBadRequest, serve(mockStorage, "/api/products/abc").Code)
	assert.Equal(t, http.StatusBadRequest, serve(mockStorage, "/api/products/0").Code)
	mockStorage.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestGetProduct_NotFound(t *testing.T) {
	mockStorage := new(MockProductProvider)
	mockStorage.On("GetProduct", mock.Anything, int64(99)).Return(nil, storage.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, serve(mockStorage, "/api/products/99").Code)
}

func TestGetProduct_StorageError(t *testing.T) {
	mockStorage := new(MockProductProvider)
	mockStorage.On("GetProduct", mock.Anything, int64(7)).Return(&storage.Product{ID: 7}, nil)
	mockStorage.On("GetProductTemplate", mock.Anything, int64(7)).Return(nil, errors.New("connection timeout"))

	assert.Equal(t, http.StatusInternalServerError, serve(mockStorage, "/api/products/7").Code)
}
