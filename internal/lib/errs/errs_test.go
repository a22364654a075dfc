package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_FormatsContextSorted(t *testing.T) {
	err := New(KindQuantityOutOfRange, "тираж %d вне диапазона", 5).
		With("min", 24).
		With("max", 1000)

	assert.Equal(t, "[QUANTITY_OUT_OF_RANGE] тираж 5 вне диапазона (max=1000, min=24)", err.Error())
}

func TestError_IsComparesKind(t *testing.T) {
	err := fmt.Errorf("pricing.Calculate: %w", New(KindSizeNotResolved, "нет размера"))

	assert.True(t, errors.Is(err, ErrSizeNotResolved))
	assert.False(t, errors.Is(err, ErrProductNotFound))
	assert.False(t, errors.Is(errors.New("другое"), ErrSizeNotResolved))
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("op: %w", New(KindConfigurationNotFound, "нет таблицы"))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindConfigurationNotFound, kind)
	assert.True(t, kind.IsNotFound())

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	assert.False(t, KindTechnologyPriceMissing.IsNotFound())
}

func TestError_EmptyMessage(t *testing.T) {
	assert.Equal(t, "PRODUCT_NOT_FOUND", ErrProductNotFound.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(KindProductNotFound, "нет"), http.StatusNotFound},
		{fmt.Errorf("обёртка: %w", New(KindConfigurationNotFound, "нет")), http.StatusNotFound},
		{New(KindInvalidConfiguration, "плохо"), http.StatusBadRequest},
		{New(KindQuantityOutOfRange, "мало"), http.StatusUnprocessableEntity},
		{New(KindTechnologyPriceMissing, "нет цены"), http.StatusUnprocessableEntity},
		{errors.New("сеть"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
