package deleteEvent

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventRegistrar/internal/http-server/handlers/event/deleteEvent/mocks"
	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDeleteEventHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		eventID        string
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			eventID:        "e1",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name:           "Not found",
			eventID:        "missing",
			mockErr:        fmt.Errorf("event missing: %w", models.ErrNotFound),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name:           "Forbidden",
			eventID:        "e1",
			mockErr:        models.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
		{
			name:           "Store down",
			eventID:        "e1",
			mockErr:        models.ErrStoreUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"Error","error":"store unavailable"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deleter := mocks.NewEventDeleter(t)
			deleter.On("DeleteEvent", mock.Anything, tc.eventID).Return(tc.mockErr)

			router := chi.NewRouter()
			router.Delete("/api/events/{id}", New(logger, deleter))

			req := httptest.NewRequest(http.MethodDelete, "/api/events/"+tc.eventID, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
