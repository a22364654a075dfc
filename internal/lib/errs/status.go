package errs

import "net/http"

// HTTPStatus подбирает код ответа по виду ошибки; не расчётные ошибки — 500.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case KindProductNotFound, KindConfigurationNotFound:
		return http.StatusNotFound
	case KindInvalidConfiguration:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
