package createUser

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

// Request may carry an ID; the store assigns one when it is empty.
type Request struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=requester approver administrator"`
}

type Response struct {
	response.Response
	User *models.User `json:"user"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UserCreator
type UserCreator interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
}

func New(log *slog.Logger, creator UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.createUser.New"

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

		user, err := creator.CreateUser(r.Context(), models.User{
			ID:          req.ID,
			DisplayName: req.DisplayName,
			Role:        models.Role(req.Role),
		})
		if err != nil {
			log.Error("failed to create user", sl.Err(err))
			status, resp := response.FromError(err, "failed to create user")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("user created", slog.String("id", user.ID), slog.String("role", string(user.Role)))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: response.OK(),
			User:     user,
		})
	}
}
