package provision

import (
	"context"
	"log/slog"
	"net/http"
	"printshop/http-server/pricing/calculate"
	provisionservice "printshop/internal/service/provision"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Provisioner interface {
	ProvisionMissingOperations(ctx context.Context, productID int64) (provisionservice.Result, error)
}

// ProvisionOperations привязывает к изделию типовые операции по его типу.
func ProvisionOperations(log *slog.Logger, p Provisioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.ProvisionOperations"

		if r.Method != http.MethodPost {
			http.Error(w, "Метод запрещен", http.StatusMethodNotAllowed)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "Некорректный id изделия", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		res, err := p.ProvisionMissingOperations(ctx, id)
		if err != nil {
			log.Error("Ошибка привязки операций", "op", op, "product_id", id, "error", err)
			calculate.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, res)
	}
}
