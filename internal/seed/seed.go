// Package seed loads the demo users and events into an empty store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventRegistrar/internal/models"
	"eventRegistrar/internal/storage"
)

var Users = []models.User{
	{ID: "student1", DisplayName: "Alice", Role: models.RoleRequester},
	{ID: "organizer1", DisplayName: "Charlie", Role: models.RoleApprover},
	{ID: "admin1", DisplayName: "Diana", Role: models.RoleAdministrator},
}

var Events = []models.Event{
	{
		Name:        "Tech Conference 2025",
		Description: "Annual tech conference with talks and workshops.",
		Date:        "2025-10-15",
		Location:    "Main Auditorium",
		OrganizerID: "organizer1",
	},
	{
		Name:        "Campus Music Festival",
		Description: "A day of live music from student bands.",
		Date:        "2025-11-05",
		Location:    "University Lawn",
		OrganizerID: "organizer1",
	},
}

// Run is safe to repeat: existing users are kept and events are only added
// when the store has none.
func Run(ctx context.Context, log *slog.Logger, store storage.Store) error {
	const op = "seed.Run"

	log = log.With(slog.String("op", op))

	for _, user := range Users {
		_, err := store.CreateUser(ctx, user)
		if err != nil && !errors.Is(err, models.ErrConflict) {
			return fmt.Errorf("%s: user %s: %w", op, user.ID, err)
		}
	}

	existing, err := store.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(existing) > 0 {
		log.Debug("events already present, skipping", slog.Int("events", len(existing)))
		return nil
	}

	for _, event := range Events {
		if _, err = store.CreateEvent(ctx, event); err != nil {
			return fmt.Errorf("%s: event %q: %w", op, event.Name, err)
		}
	}

	log.Info("demo data seeded", slog.Int("users", len(Users)), slog.Int("events", len(Events)))

	return nil
}
