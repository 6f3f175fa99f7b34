package setStatus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// Request carries the target status. Whether it is a legal edge is decided
// by the registration lifecycle, which answers 409 for anything else.
type Request struct {
	Status string `json:"status" validate:"required"`
}

type Response struct {
	response.Response
	Registration *models.Registration `json:"registration"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=StatusSetter
type StatusSetter interface {
	SetRegistrationStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error)
}

func New(log *slog.Logger, setter StatusSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registration.setStatus.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("registration id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("registration id is required"))
			return
		}

		log = log.With(slog.String("registration_id", id))

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		reg, err := setter.SetRegistrationStatus(r.Context(), id, models.RegistrationStatus(req.Status))
		if err != nil {
			log.Error("failed to set registration status", sl.Err(err))
			status, resp := response.FromError(err, "failed to set registration status")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("registration status set", slog.String("status", string(reg.Status)))

		render.JSON(w, r, Response{
			Response:     response.OK(),
			Registration: reg,
		})
	}
}
