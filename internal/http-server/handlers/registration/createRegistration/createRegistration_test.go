package createRegistration

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventRegistrar/internal/actor"
	"eventRegistrar/internal/http-server/handlers/registration/createRegistration/mocks"
	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateRegistrationHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	created := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	pending := &models.Registration{
		ID:        "r1",
		EventID:   "e1",
		UserID:    "student1",
		UserName:  "Alice",
		Status:    models.StatusPending,
		CreatedAt: created,
	}
	pendingJSON := `{"status":"OK","registration":{"id":"r1","event_id":"e1","user_id":"student1",
		"user_name":"Alice","status":"pending","created_at":"2025-09-01T12:00:00Z"}}`

	testCases := []struct {
		name           string
		requestBody    string
		caller         string
		mockSetup      func(m *mocks.RegistrationCreator)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "Explicit user",
			requestBody: `{"event_id":"e1","user_id":"student1","user_name":"Alice"}`,
			mockSetup: func(m *mocks.RegistrationCreator) {
				m.On("CreateRegistration", mock.Anything, "e1", "student1", "Alice").Return(pending, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   pendingJSON,
		},
		{
			name:        "Caller registers themselves",
			requestBody: `{"event_id":"e1"}`,
			caller:      "student1",
			mockSetup: func(m *mocks.RegistrationCreator) {
				m.On("CreateRegistration", mock.Anything, "e1", "student1", "").Return(pending, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   pendingJSON,
		},
		{
			name:           "Missing event",
			requestBody:    `{"user_id":"student1"}`,
			mockSetup:      func(m *mocks.RegistrationCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field EventID is a required field"}`,
		},
		{
			name:        "Unknown event",
			requestBody: `{"event_id":"nope","user_id":"student1"}`,
			mockSetup: func(m *mocks.RegistrationCreator) {
				m.On("CreateRegistration", mock.Anything, "nope", "student1", "").
					Return(nil, fmt.Errorf("registration.Create: %w", models.ErrReference))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"referenced entity does not exist"}`,
		},
		{
			name:        "Already registered",
			requestBody: `{"event_id":"e1","user_id":"student1"}`,
			mockSetup: func(m *mocks.RegistrationCreator) {
				m.On("CreateRegistration", mock.Anything, "e1", "student1", "").
					Return(nil, fmt.Errorf("registration.Create: %w", models.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"conflict"}`,
		},
		{
			name:        "Registering someone else",
			requestBody: `{"event_id":"e1","user_id":"student9"}`,
			caller:      "student1",
			mockSetup: func(m *mocks.RegistrationCreator) {
				m.On("CreateRegistration", mock.Anything, "e1", "student9", "").Return(nil, models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			creator := mocks.NewRegistrationCreator(t)
			tc.mockSetup(creator)

			router := chi.NewRouter()
			router.Post("/api/registrations", New(logger, creator))

			req := httptest.NewRequest(http.MethodPost, "/api/registrations", bytes.NewBufferString(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			if tc.caller != "" {
				req = req.WithContext(actor.WithActor(req.Context(), actor.Actor{UserID: tc.caller, Role: models.RoleRequester}))
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
