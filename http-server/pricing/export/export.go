package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"printshop/http-server/pricing/calculate"
	"printshop/internal/service/pricing"
	"time"

	"github.com/google/uuid"
)

type QuoteExporter interface {
	GenerateQuote(ctx context.Context, quoteID string, req pricing.Request) ([]byte, error)
}

func ExportQuoteExcel(log *slog.Logger, gen QuoteExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.pricing.ExportQuoteExcel"

		var raw pricing.RawRequest
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		req, err := raw.Request()
		if err != nil {
			calculate.WriteError(w, r, err)
			return
		}

		// На Excel времени побольше
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		quoteID := uuid.NewString()

		excelBytes, err := gen.GenerateQuote(ctx, quoteID, req)
		if err != nil {
			log.Error("failed to generate excel", "op", op, "quote_id", quoteID, "err", err)
			calculate.WriteError(w, r, err)
			return
		}

		fileName := fmt.Sprintf("Quote_%d_%s.xlsx", req.ProductID, quoteID[:8])

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Header().Set("X-Quote-ID", quoteID)
		w.Write(excelBytes)
	}
}
