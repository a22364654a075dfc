// Package errs содержит типизированные ошибки расчёта стоимости.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindSizeNotResolved             Kind = "SIZE_NOT_RESOLVED"
	KindTechnologyPriceMissing      Kind = "TECHNOLOGY_PRICE_MISSING"
	KindTechnologyColorPriceMissing Kind = "TECHNOLOGY_COLOR_PRICE_MISSING"
	KindProductNotFound             Kind = "PRODUCT_NOT_FOUND"
	KindConfigurationNotFound       Kind = "CONFIGURATION_NOT_FOUND"
	KindQuantityOutOfRange          Kind = "QUANTITY_OUT_OF_RANGE"
	KindInvalidConfiguration        Kind = "INVALID_CONFIGURATION"
)

// Error: ошибка расчёта с видом и контекстом (лимиты, коды технологий и т.п.).
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Сентинелы для errors.Is: сравнение идёт только по Kind.
var (
	ErrSizeNotResolved             = &Error{Kind: KindSizeNotResolved}
	ErrTechnologyPriceMissing      = &Error{Kind: KindTechnologyPriceMissing}
	ErrTechnologyColorPriceMissing = &Error{Kind: KindTechnologyColorPriceMissing}
	ErrProductNotFound             = &Error{Kind: KindProductNotFound}
	ErrConfigurationNotFound       = &Error{Kind: KindConfigurationNotFound}
	ErrQuantityOutOfRange          = &Error{Kind: KindQuantityOutOfRange}
	ErrInvalidConfiguration        = &Error{Kind: KindInvalidConfiguration}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}

	return fmt.Sprintf("[%s] %s (%s)", e.Kind, e.Message, strings.Join(parts, ", "))
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// With добавляет пару в контекст и возвращает ту же ошибку.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// KindOf достаёт вид из цепочки обёрнутых ошибок.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsNotFound: вид ошибки означает отсутствие данных у клиента (404 на HTTP).
func (k Kind) IsNotFound() bool {
	return k == KindProductNotFound || k == KindConfigurationNotFound
}
