package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"printshop/internal/storage"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ProductProvider interface {
	GetProduct(ctx context.Context, id int64) (*storage.Product, error)
	GetProductTemplate(ctx context.Context, productID int64) (*storage.ProductTemplate, error)
	GetProductOperations(ctx context.Context, productID int64) ([]storage.Operation, error)
}

type ResponseProduct struct {
	storage.Product
	Template   *storage.ProductTemplate `json:"template,omitempty"`
	Operations []storage.Operation      `json:"operations"`
}

// GetProduct отдаёт изделие вместе с шаблоном и привязанными операциями для конфигуратора.
func GetProduct(log *slog.Logger, products ProductProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.GetProduct"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "Некорректный id изделия", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		product, err := products.GetProduct(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			log.With(slog.String("op", op), slog.Int64("id", id)).Warn("Product not found")
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.With(slog.String("op", op), slog.Int64("id", id), slog.String("error", err.Error())).Error("Failed to fetch product")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := ResponseProduct{Product: *product, Operations: []storage.Operation{}}

		// Шаблона может не быть
		template, err := products.GetProductTemplate(ctx, id)
		switch {
		case err == nil:
			response.Template = template
		case !errors.Is(err, storage.ErrNotFound):
			log.With(slog.String("op", op), slog.Int64("id", id), slog.String("error", err.Error())).Error("Failed to fetch template")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		ops, err := products.GetProductOperations(ctx, id)
		if err != nil {
			log.With(slog.String("op", op), slog.Int64("id", id), slog.String("error", err.Error())).Error("Failed to fetch operations")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if ops != nil {
			response.Operations = ops
		}

		render.JSON(w, r, response)
	}
}
