package setStatus

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventRegistrar/internal/http-server/handlers/registration/setStatus/mocks"
	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSetStatusHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	created := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	decided := created.Add(time.Hour)

	testCases := []struct {
		name           string
		regID          string
		requestBody    string
		mockSetup      func(m *mocks.StatusSetter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "Approve",
			regID:       "r1",
			requestBody: `{"status":"approved"}`,
			mockSetup: func(m *mocks.StatusSetter) {
				m.On("SetRegistrationStatus", mock.Anything, "r1", models.StatusApproved).Return(&models.Registration{
					ID: "r1", EventID: "e1", UserID: "student1", UserName: "Alice",
					Status: models.StatusApproved, CreatedAt: created, DecidedAt: &decided,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","registration":{"id":"r1","event_id":"e1","user_id":"student1","user_name":"Alice",
				"status":"approved","created_at":"2025-09-01T12:00:00Z","decided_at":"2025-09-01T13:00:00Z"}}`,
		},
		{
			name:        "Back to pending",
			regID:       "r1",
			requestBody: `{"status":"pending"}`,
			mockSetup: func(m *mocks.StatusSetter) {
				m.On("SetRegistrationStatus", mock.Anything, "r1", models.StatusPending).
					Return(nil, fmt.Errorf("registration.Transition: approved -> \"pending\": %w", models.ErrInvalidTransition))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"invalid status transition"}`,
		},
		{
			name:        "Unknown status",
			regID:       "r1",
			requestBody: `{"status":"maybe"}`,
			mockSetup: func(m *mocks.StatusSetter) {
				m.On("SetRegistrationStatus", mock.Anything, "r1", models.RegistrationStatus("maybe")).
					Return(nil, fmt.Errorf("registration.Transition: pending -> \"maybe\": %w", models.ErrInvalidTransition))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"invalid status transition"}`,
		},
		{
			name:           "Missing status",
			regID:          "r1",
			requestBody:    `{}`,
			mockSetup:      func(m *mocks.StatusSetter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Status is a required field"}`,
		},
		{
			name:           "Invalid JSON",
			regID:          "r1",
			requestBody:    `approved`,
			mockSetup:      func(m *mocks.StatusSetter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:        "Already decided",
			regID:       "r1",
			requestBody: `{"status":"rejected"}`,
			mockSetup: func(m *mocks.StatusSetter) {
				m.On("SetRegistrationStatus", mock.Anything, "r1", models.StatusRejected).
					Return(nil, fmt.Errorf("registration.Transition: %w", models.ErrInvalidTransition))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"invalid status transition"}`,
		},
		{
			name:        "Not the organizer",
			regID:       "r1",
			requestBody: `{"status":"approved"}`,
			mockSetup: func(m *mocks.StatusSetter) {
				m.On("SetRegistrationStatus", mock.Anything, "r1", models.StatusApproved).Return(nil, models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
		{
			name:        "Unknown registration",
			regID:       "nope",
			requestBody: `{"status":"approved"}`,
			mockSetup: func(m *mocks.StatusSetter) {
				m.On("SetRegistrationStatus", mock.Anything, "nope", models.StatusApproved).
					Return(nil, fmt.Errorf("registration nope: %w", models.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name:        "Event deleted",
			regID:       "r1",
			requestBody: `{"status":"approved"}`,
			mockSetup: func(m *mocks.StatusSetter) {
				m.On("SetRegistrationStatus", mock.Anything, "r1", models.StatusApproved).
					Return(nil, fmt.Errorf("registration.Transition: %w", models.ErrReference))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"referenced entity does not exist"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			setter := mocks.NewStatusSetter(t)
			tc.mockSetup(setter)

			router := chi.NewRouter()
			router.Put("/api/registrations/{id}", New(logger, setter))

			req := httptest.NewRequest(http.MethodPut, "/api/registrations/"+tc.regID, bytes.NewBufferString(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
