package createEvent

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventRegistrar/internal/http-server/handlers/event/createEvent/mocks"
	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateEventHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	created := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	input := models.Event{
		Name:        "AI Workshop",
		Description: "Hands-on",
		Date:        "2025-12-15",
		Location:    "Tech Center",
		OrganizerID: "organizer1",
	}

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mocks.EventCreator)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name: "Success",
			requestBody: `{
				"name": "AI Workshop",
				"description": "Hands-on",
				"date": "2025-12-15",
				"location": "Tech Center",
				"organizer_id": "organizer1"
			}`,
			mockSetup: func(m *mocks.EventCreator) {
				event := input
				event.ID = "e1"
				event.CreatedAt = created
				m.On("CreateEvent", mock.Anything, input).Return(&event, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{"status":"OK","event":{"id":"e1","name":"AI Workshop","description":"Hands-on",
				"date":"2025-12-15","location":"Tech Center","organizer_id":"organizer1","created_at":"2025-09-01T12:00:00Z"}}`,
		},
		{
			name:           "Invalid JSON",
			requestBody:    `invalid json`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "Missing name",
			requestBody:    `{"date": "2025-12-15", "organizer_id": "organizer1"}`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Name is a required field"}`,
		},
		{
			name:           "Bad date",
			requestBody:    `{"name": "AI Workshop", "date": "15/12/2025", "organizer_id": "organizer1"}`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Date must be a date in 2006-01-02 format"}`,
		},
		{
			name:           "Missing organizer",
			requestBody:    `{"name": "AI Workshop", "date": "2025-12-15"}`,
			mockSetup:      func(m *mocks.EventCreator) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"Error"`)
				assert.Contains(t, body, "OrganizerID")
			},
		},
		{
			name:        "Organizer is not an approver",
			requestBody: `{"name": "AI Workshop", "date": "2025-12-15", "organizer_id": "student1"}`,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, mock.AnythingOfType("models.Event")).
					Return(nil, fmt.Errorf("registrar.CreateEvent: organizer: %w", models.ErrReference))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"referenced entity does not exist"}`,
		},
		{
			name:        "Not an administrator",
			requestBody: `{"name": "AI Workshop", "date": "2025-12-15", "organizer_id": "organizer1"}`,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, mock.AnythingOfType("models.Event")).
					Return(nil, models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
		{
			name:        "Unexpected error",
			requestBody: `{"name": "AI Workshop", "date": "2025-12-15", "organizer_id": "organizer1"}`,
			mockSetup: func(m *mocks.EventCreator) {
				m.On("CreateEvent", mock.Anything, mock.AnythingOfType("models.Event")).
					Return(nil, fmt.Errorf("disk on fire"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to create event"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			creator := mocks.NewEventCreator(t)
			tc.mockSetup(creator)

			router := chi.NewRouter()
			router.Post("/api/events", New(logger, creator))

			req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			} else {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}
