package event

import (
	"encoding/json"
	"errors"
	"net/http"

	"earnings-radar/internal/handler/http/respond"
)

// CreateHandler serves POST /api/events. It answers 200 with the whole
// collection both when the event was added and when it already existed.
type CreateHandler struct{ Svc Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, err := h.Svc.Add(r.Context(), req.input())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res.Events)
}
