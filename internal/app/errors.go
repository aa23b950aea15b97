package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/ticket-booking-system/api"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
	appvalidator "github.com/metinatakli/ticket-booking-system/internal/validator"
)

const (
	ErrInternalServer   = "The server encountered a problem and could not process your request"
	ErrNotFound         = "The requested resource not found"
	ErrMethodNotAllowed = "The %s method is not supported for this resource"
	ErrValidationFailed = "One or more fields failed validation"
	ErrMissingUser      = "A valid X-User-ID header is required"
)

func (app *Application) logError(r *http.Request, err error) {
	app.contextGetLogger(r).Error(err.Error())
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(ErrMethodNotAllowed, r.Method))
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrMissingUser)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrValidationFailed,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, len(validationErrs)),
	}

	for i, fe := range validationErrs {
		resp.ValidationErrors[i] = api.ValidationError{
			Field: fe.Field(),
			Issue: appvalidator.ValidationMessage(fe),
		}
	}

	err = app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// domainErrorResponse answers with the status matching the error's kind.
// Internal errors are logged and hidden behind a generic message.
func (app *Application) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		app.errorResponse(w, r, http.StatusNotFound, err.Error())
	case domain.KindBadRequest:
		app.errorResponse(w, r, http.StatusBadRequest, err.Error())
	case domain.KindUnauthorized:
		app.errorResponse(w, r, http.StatusForbidden, err.Error())
	default:
		app.serverErrorResponse(w, r, err)
	}
}
