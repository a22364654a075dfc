package get

import (
	"context"
	"log/slog"
	"net/http"
	"printshop/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type MaterialProvider interface {
	GetMaterials(ctx context.Context) ([]storage.Material, error)
}

// GetMaterials отдаёт справочник материалов; ?in_stock=1 — только то, что есть на складе.
func GetMaterials(log *slog.Logger, material MaterialProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.materials.GetMaterials"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		all, err := material.GetMaterials(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении материалов")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		inStock := r.URL.Query().Get("in_stock") == "1"

		materials := make([]storage.Material, 0, len(all))
		for _, m := range all {
			if inStock && !m.InStock {
				continue
			}
			materials = append(materials, m)
		}

		render.JSON(w, r, materials)
	}
}
