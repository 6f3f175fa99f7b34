package myRegistration

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventRegistrar/internal/http-server/handlers/registration/myRegistration/mocks"
	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMyRegistrationHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	created := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name           string
		reg            *models.Registration
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Registered",
			reg: &models.Registration{
				ID: "r1", EventID: "e1", UserID: "student1", UserName: "Alice",
				Status: models.StatusPending, CreatedAt: created,
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","registration":{"id":"r1","event_id":"e1","user_id":"student1",
				"user_name":"Alice","status":"pending","created_at":"2025-09-01T12:00:00Z"}}`,
		},
		{
			name:           "Never registered",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","registration":null}`,
		},
		{
			name:           "Store down",
			mockErr:        models.ErrStoreUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"Error","error":"store unavailable"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			getter := mocks.NewRegistrationGetter(t)
			getter.On("MyRegistration", mock.Anything, "e1").Return(tc.reg, tc.mockErr)

			router := chi.NewRouter()
			router.Get("/api/events/{id}/registration", New(logger, getter))

			req := httptest.NewRequest(http.MethodGet, "/api/events/e1/registration", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
