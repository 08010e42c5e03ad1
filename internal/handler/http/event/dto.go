package event

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/handler/http/respond"
	"earnings-radar/internal/repository"
	eventUC "earnings-radar/internal/usecase/event"
)

// CreateRequest is the POST /api/events body. Only symbol and date are
// required; the canonicalizer fills the rest.
type CreateRequest struct {
	Symbol string `json:"symbol" validate:"required,max=16"`
	Name   string `json:"name" validate:"max=200"`
	Date   string `json:"date" validate:"required,max=32"`
	Time   string `json:"time" validate:"max=32"`
	Domain string `json:"domain" validate:"max=253"`
}

func (r CreateRequest) input() eventUC.AddInput {
	return eventUC.AddInput{
		Symbol: r.Symbol,
		Name:   r.Name,
		Date:   r.Date,
		Time:   r.Time,
		Domain: r.Domain,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationMessage turns a validator error into a client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "Symbol and date required"
		}
	}
	return fieldName(verrs[0]) + " is too long"
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Symbol":
		return "symbol"
	case "Name":
		return "name"
	case "Date":
		return "date"
	case "Time":
		return "time"
	default:
		return "domain"
	}
}

// writeStoreError maps use case errors to responses. A missing store
// configuration is reported the same way for reads and writes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrValidationFailed):
		respond.SafeError(w, http.StatusBadRequest, err)
	case errors.Is(err, repository.ErrStoreNotConfigured):
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Missing credentials", err))
	case errors.Is(err, eventUC.ErrConflictRetriesExhausted):
		respond.SafeErrorV2(w, http.StatusConflict,
			respond.NewAppError(http.StatusConflict, "Event collection is busy, retry later", err))
	default:
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Server error", err))
	}
}
