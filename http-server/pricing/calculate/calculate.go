package calculate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"printshop/internal/lib/errs"
	"printshop/internal/service/pricing"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type Calculator interface {
	Calculate(ctx context.Context, req pricing.Request) (*pricing.Breakdown, error)
}

type Response struct {
	QuoteID string `json:"quote_id"`
	*pricing.Breakdown
}

type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    errs.Kind      `json:"kind,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func CalculatePrice(log *slog.Logger, calc Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.pricing.CalculatePrice"

		var raw pricing.RawRequest
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		req, err := raw.Request()
		if err != nil {
			WriteError(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		breakdown, err := calc.Calculate(ctx, req)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.Int64("product_id", req.ProductID),
				slog.String("error", err.Error()),
			).Warn("Не удалось рассчитать стоимость")
			WriteError(w, r, err)
			return
		}

		render.JSON(w, r, Response{
			QuoteID:   uuid.NewString(),
			Breakdown: breakdown,
		})
	}
}

// WriteError отдаёт ошибку расчёта с её видом и контекстом, остальные ошибки скрывает.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)

	var e *errs.Error
	if !errors.As(err, &e) {
		http.Error(w, "Internal error", status)
		return
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:   e.Error(),
		Kind:    e.Kind,
		Context: e.Context,
	})
}
