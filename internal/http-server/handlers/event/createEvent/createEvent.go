package createEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Location    string `json:"location"`
	OrganizerID string `json:"organizer_id" validate:"required"`
}

type Response struct {
	response.Response
	Event *models.Event `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventCreator
type EventCreator interface {
	CreateEvent(ctx context.Context, event models.Event) (*models.Event, error)
}

func New(log *slog.Logger, creator EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createEvent.New"

		log := log.With(
			slog.String("op", op),
		)

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

		event, err := creator.CreateEvent(r.Context(), models.Event{
			Name:        req.Name,
			Description: req.Description,
			Date:        req.Date,
			Location:    req.Location,
			OrganizerID: req.OrganizerID,
		})
		if err != nil {
			log.Error("failed to create event", sl.Err(err))
			status, resp := response.FromError(err, "failed to create event")
			render.Status(r, status)
			render.JSON(w, r, resp)

			return
		}

		log.Info("event created", slog.String("id", event.ID))

		render.Status(r, http.StatusCreated)
		responseOK(w, r, event)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, event *models.Event) {
	render.JSON(w, r, Response{
		Response: response.OK(),
		Event:    event,
	})
}
