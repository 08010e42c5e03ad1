// Package earnings serves on-demand earnings date lookups.
package earnings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/handler/http/respond"
	"earnings-radar/internal/observability/logging"
	"earnings-radar/internal/usecase/resolve"
)

// Resolver resolves an earnings fact for a ticker. *resolve.Chain satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, ticker string) (resolve.Outcome[*entity.EarningsFact], error)
}

// Register mounts GET /api/fetchEarnings.
func Register(mux *http.ServeMux, r Resolver) {
	mux.Handle("GET /api/fetchEarnings", Handler{Resolver: r})
}

// Handler serves GET /api/fetchEarnings?symbol=.
type Handler struct{ Resolver Resolver }

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		respond.Error(w, http.StatusBadRequest, "Missing symbol parameter")
		return
	}
	ticker := entity.NormalizeTicker(symbol)

	out, err := h.Resolver.Resolve(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logging.FromContext(r.Context()).Debug("earnings lookup abandoned",
				slog.String("ticker", ticker), slog.Any("error", err))
			respond.Error(w, http.StatusGatewayTimeout, "request timeout")
			return
		}
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Failed to fetch earnings", err))
		return
	}

	if !out.Found {
		respond.Error(w, http.StatusNotFound, fmt.Sprintf("No earnings data found for %s", ticker))
		return
	}

	fact := *out.Value
	if fact.Source == "" {
		fact.Source = out.Source
	}
	respond.JSON(w, http.StatusOK, fact)
}
