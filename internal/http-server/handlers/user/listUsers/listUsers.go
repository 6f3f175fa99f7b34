package listUsers

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/go-chi/render"
)

type Response struct {
	response.Response
	Users []models.User `json:"users"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UserLister
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

func New(log *slog.Logger, lister UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.listUsers.New"

		log := log.With(slog.String("op", op))

		users, err := lister.ListUsers(r.Context())
		if err != nil {
			log.Error("failed to list users", sl.Err(err))
			status, resp := response.FromError(err, "failed to list users")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		if users == nil {
			users = []models.User{}
		}

		render.JSON(w, r, Response{
			Response: response.OK(),
			Users:    users,
		})
	}
}
