package event

import (
	"net/http"

	"earnings-radar/internal/handler/http/respond"
)

// ListHandler serves GET /api/events.
type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, err := h.Svc.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}
