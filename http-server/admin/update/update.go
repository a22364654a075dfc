package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type MarkupUpdater interface {
	UpdateMarkup(ctx context.Context, markup float64) error
}

type Request struct {
	Markup float64 `json:"markup"`
}

// UpdateMarkup меняет общую наценку; кэш сбрасывается в хранилище.
func UpdateMarkup(log *slog.Logger, update MarkupUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateMarkup"

		if r.Method != http.MethodPut {
			http.Error(w, "Метод не разрешён", http.StatusMethodNotAllowed)
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный JSON", http.StatusBadRequest)
			return
		}

		if req.Markup <= 0 {
			http.Error(w, "Наценка должна быть больше нуля", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := update.UpdateMarkup(ctx, req.Markup); err != nil {
			log.Error("Ошибка обновления наценки", "op", op, "error", err)
			http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
			return
		}

		log.Info("Наценка обновлена", "op", op, "markup", req.Markup)

		w.WriteHeader(http.StatusOK)
	}
}
