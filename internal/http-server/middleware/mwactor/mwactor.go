// Package mwactor resolves the acting user of a request. With a secret
// configured the user is the subject of an HS256 bearer token; without one
// the X-User-ID header names the user directly, which is meant for local use.
// WebSocket clients that cannot set headers may pass token or user_id as
// query parameters instead.
package mwactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventRegistrar/internal/actor"
	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
)

const HeaderUserID = "X-User-ID"

var errUnauthorized = errors.New("invalid credentials")

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UserGetter
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

func New(log *slog.Logger, users UserGetter, secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/actor"),
		)

		mode := "header"
		if secret != "" {
			mode = "bearer"
		}
		log.Info("actor middleware enabled", slog.String("mode", mode))

		fn := func(w http.ResponseWriter, r *http.Request) {
			userID, err := identify(r, secret)
			if err != nil {
				log.Warn("rejected credentials",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid credentials"))
				return
			}

			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					log.Warn("unknown user", slog.String("user_id", userID))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("unknown user"))
					return
				}

				log.Error("failed to load user", slog.String("user_id", userID), sl.Err(err))
				status, resp := response.FromError(err, "failed to load user")
				render.Status(r, status)
				render.JSON(w, r, resp)
				return
			}

			ctx := actor.WithActor(r.Context(), actor.FromUser(user))

			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

// identify returns the claimed user id, or "" for an anonymous request.
func identify(r *http.Request, secret string) (string, error) {
	if secret == "" {
		if id := strings.TrimSpace(r.Header.Get(HeaderUserID)); id != "" {
			return id, nil
		}
		return strings.TrimSpace(r.URL.Query().Get("user_id")), nil
	}

	token := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", fmt.Errorf("%w: unsupported authorization scheme", errUnauthorized)
		}
		token = strings.TrimSpace(value)
	}

	if token == "" {
		return "", nil
	}

	return Subject(token, secret)
}

// Subject verifies an HS256 token and returns its subject.
func Subject(token, secret string) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUnauthorized, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", errUnauthorized)
	}

	return claims.Subject, nil
}
