package get

import (
	"context"
	"log/slog"
	"net/http"
	"printshop/internal/storage"
	"time"

	"github.com/go-chi/render"
)

type SettingsProvider interface {
	GetPricingSettings(ctx context.Context) (*storage.PricingSettings, error)
}

// GetPricingSettings отдаёт наценку и скидки по тиражу для админки.
func GetPricingSettings(log *slog.Logger, settings SettingsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetPricingSettings"

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		s, err := settings.GetPricingSettings(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("ошибка получения настроек цены")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, s)
	}
}
