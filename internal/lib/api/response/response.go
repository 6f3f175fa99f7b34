package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"eventRegistrar/internal/models"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "datetime":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s must be a date in %s format", err.Field(), err.Param()))
		case "oneof":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMsgs, ", "),
	}
}

// FromError pairs HTTPStatus with a message that is safe to show to clients.
// Errors outside the domain taxonomy are reported as fallback.
func FromError(err error, fallback string) (int, Response) {
	for _, known := range []error{
		models.ErrNotFound,
		models.ErrReference,
		models.ErrInvalidTransition,
		models.ErrConflict,
		models.ErrForbidden,
		models.ErrInvalidInput,
		models.ErrStoreUnavailable,
	} {
		if errors.Is(err, known) {
			return HTTPStatus(err), Error(known.Error())
		}
	}

	return http.StatusInternalServerError, Error(fallback)
}

// HTTPStatus maps the domain error taxonomy onto HTTP status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
