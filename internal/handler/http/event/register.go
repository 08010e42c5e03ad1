// Package event serves the stored earnings event collection.
package event

import (
	"context"
	"net/http"

	"earnings-radar/internal/domain/entity"
	eventUC "earnings-radar/internal/usecase/event"
)

// Service is the subset of the event use case the handlers need.
type Service interface {
	List(ctx context.Context) ([]entity.StoredEvent, error)
	Add(ctx context.Context, in eventUC.AddInput) (eventUC.AddResult, error)
}

// Register mounts GET and POST /api/events. Other methods get 405 from the mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /api/events", ListHandler{Svc: svc})
	mux.Handle("POST /api/events", CreateHandler{Svc: svc})
}
