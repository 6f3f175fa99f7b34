package createRegistration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/actor"
	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// Request registers UserID, or the calling user when it is empty, for EventID.
type Request struct {
	EventID  string `json:"event_id" validate:"required"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

type Response struct {
	response.Response
	Registration *models.Registration `json:"registration"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=RegistrationCreator
type RegistrationCreator interface {
	CreateRegistration(ctx context.Context, eventID, userID, userName string) (*models.Registration, error)
}

func New(log *slog.Logger, creator RegistrationCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registration.createRegistration.New"

		log := log.With(slog.String("op", op))

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

		if req.UserID == "" {
			if a, ok := actor.FromContext(r.Context()); ok {
				req.UserID = a.UserID
			}
		}

		reg, err := creator.CreateRegistration(r.Context(), req.EventID, req.UserID, req.UserName)
		if err != nil {
			log.Error("failed to create registration", sl.Err(err))
			status, resp := response.FromError(err, "failed to create registration")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("registration created", slog.String("id", reg.ID))

		render.Status(r, http.StatusCreated)
		responseOK(w, r, reg)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, reg *models.Registration) {
	render.JSON(w, r, Response{
		Response:     response.OK(),
		Registration: reg,
	})
}
