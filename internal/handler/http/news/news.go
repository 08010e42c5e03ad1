// Package news serves recent news with sentiment for a ticker.
package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/handler/http/respond"
	"earnings-radar/internal/observability/logging"
	"earnings-radar/internal/observability/metrics"
	"earnings-radar/internal/usecase/resolve"
)

// Resolver resolves news items for a ticker. *resolve.Chain satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, ticker string) (resolve.Outcome[[]entity.NewsItem], error)
}

// Response is the body of GET /api/news.
type Response struct {
	News []entity.NewsItem `json:"news"`
}

// Register mounts GET /api/news.
func Register(mux *http.ServeMux, r Resolver) {
	mux.Handle("GET /api/news", Handler{Resolver: r})
}

// Handler serves GET /api/news?symbol=. Finding nothing is a 200 with an
// empty list.
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
			logging.FromContext(r.Context()).Debug("news lookup abandoned",
				slog.String("ticker", ticker), slog.Any("error", err))
			respond.Error(w, http.StatusGatewayTimeout, "request timeout")
			return
		}
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Failed to fetch news", err))
		return
	}

	items := out.Value
	if !out.Found || items == nil {
		items = []entity.NewsItem{}
	}
	for _, it := range items {
		metrics.RecordSentiment(string(it.Sentiment))
	}
	respond.JSON(w, http.StatusOK, Response{News: items})
}
