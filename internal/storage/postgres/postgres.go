package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventRegistrar/internal/config"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"
	"eventRegistrar/internal/storage"
	"eventRegistrar/internal/storage/migrations"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const publishTimeout = 5 * time.Second

type Storage struct {
	DB  *sql.DB
	pub storage.ChangePublisher
	log *slog.Logger
}

// InitDB connects to the configured database and applies migrations. When pub
// is nil, change notifications come from the database triggers instead.
func InitDB(log *slog.Logger, dbCfg *config.Database, pub storage.ChangePublisher) (*Storage, error) {
	return Open(log, dbCfg.DSN(), pub)
}

func Open(log *slog.Logger, dsn string, pub storage.ChangePublisher) (*Storage, error) {
	if err := migrations.Up("postgres", dsn); err != nil {
		return nil, fmt.Errorf("failed to migrate the database: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{DB: db, pub: pub, log: log}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, display_name, role)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := s.DB.QueryRowContext(ctx, query, user.ID, user.DisplayName, string(user.Role)).Scan(&user.CreatedAt)
	if err != nil {
		return nil, wrap("failed to create user", err)
	}

	s.publish(ctx, models.Change{Collection: models.CollectionUsers, Op: models.OpInsert, ID: user.ID})

	return &user, nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, display_name, role, created_at
		FROM users
		WHERE id = $1`

	var user models.User
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.DisplayName, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
		}
		return nil, wrap("failed to get user", err)
	}

	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, display_name, role, created_at
		FROM users
		ORDER BY created_at ASC, id ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap("failed to get users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err = rows.Scan(&user.ID, &user.DisplayName, &user.Role, &user.CreatedAt); err != nil {
			return nil, wrap("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, wrap("error iterating users", err)
	}

	return users, nil
}

const eventColumns = `id, name, description, to_char(date, 'YYYY-MM-DD'), location, organizer_id, created_at`

func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	query := `
		INSERT INTO events (id, name, description, date, location, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + eventColumns

	created, err := scanEvent(s.DB.QueryRowContext(ctx, query,
		event.ID, event.Name, event.Description, event.Date, event.Location, event.OrganizerID))
	if err != nil {
		return nil, wrap("failed to create event", err)
	}

	s.publish(ctx, models.Change{Collection: models.CollectionEvents, Op: models.OpInsert, ID: created.ID})

	return created, nil
}

func (s *Storage) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1`

	event, err := scanEvent(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
		}
		return nil, wrap("failed to get event", err)
	}

	return event, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY date ASC, created_at ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap("failed to get events", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, wrap("failed to scan event", err)
		}
		events = append(events, *event)
	}

	if err = rows.Err(); err != nil {
		return nil, wrap("error iterating events", err)
	}

	return events, nil
}

func (s *Storage) UpdateEvent(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	query := `
		UPDATE events
		SET name = $1, description = $2, date = $3, location = $4
		WHERE id = $5
		RETURNING ` + eventColumns

	event, err := scanEvent(s.DB.QueryRowContext(ctx, query, upd.Name, upd.Description, upd.Date, upd.Location, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
		}
		return nil, wrap("failed to update event", err)
	}

	s.publish(ctx, models.Change{Collection: models.CollectionEvents, Op: models.OpUpdate, ID: id})

	return event, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return wrap("failed to delete event", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrap("failed to delete event", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}

	s.publish(ctx, models.Change{Collection: models.CollectionEvents, Op: models.OpDelete, ID: id})

	return nil
}

const registrationColumns = `id, event_id, user_id, user_name, status, created_at, decided_at`

func (s *Storage) CreateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var existingRegistration bool
	checkQuery := `
		SELECT EXISTS(
			SELECT 1 FROM registrations
			WHERE event_id = $1 AND user_id = $2 AND status IN ('pending', 'approved')
		)`

	err = tx.QueryRowContext(ctx, checkQuery, reg.EventID, reg.UserID).Scan(&existingRegistration)
	if err != nil {
		return nil, wrap("failed to check existing registration", err)
	}

	if existingRegistration {
		return nil, fmt.Errorf("user %s already registered for event %s: %w", reg.UserID, reg.EventID, models.ErrConflict)
	}

	insertQuery := `
		INSERT INTO registrations (id, event_id, user_id, user_name, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + registrationColumns

	created, err := scanRegistration(tx.QueryRowContext(ctx, insertQuery, reg.ID, reg.EventID, reg.UserID, reg.UserName))
	if err != nil {
		return nil, wrap("failed to create registration", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, wrap("failed to commit registration", err)
	}

	s.publish(ctx, models.RegistrationChange(models.OpInsert, created))

	return created, nil
}

func (s *Storage) GetRegistration(ctx context.Context, id string) (*models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1`

	reg, err := scanRegistration(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("registration %s: %w", id, models.ErrNotFound)
		}
		return nil, wrap("failed to get registration", err)
	}

	return reg, nil
}

func (s *Storage) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]models.Registration, error) {
	where, args := registrationWhere(filter)

	query := `
		SELECT ` + registrationColumns + `
		FROM registrations r` + where + `
		ORDER BY created_at DESC, id DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("failed to get registrations", err)
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, wrap("failed to scan registration", err)
		}
		regs = append(regs, *reg)
	}

	if err = rows.Err(); err != nil {
		return nil, wrap("error iterating registrations", err)
	}

	return regs, nil
}

func (s *Storage) CountRegistrations(ctx context.Context, filter storage.RegistrationFilter) (int, error) {
	where, args := registrationWhere(filter)

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations r`+where, args...).Scan(&count); err != nil {
		return 0, wrap("failed to count registrations", err)
	}

	return count, nil
}

func (s *Storage) TransitionRegistration(
	ctx context.Context, id string, from, to models.RegistrationStatus, at time.Time,
) (*models.Registration, error) {
	updateQuery := `
		UPDATE registrations
		SET status = $1, decided_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + registrationColumns

	reg, err := scanRegistration(s.DB.QueryRowContext(ctx, updateQuery, string(to), at.UTC(), id, string(from)))
	if err == nil {
		s.publish(ctx, models.RegistrationChange(models.OpUpdate, reg))
		return reg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, wrap("failed to update registration", err)
	}

	current, err := s.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("registration %s is %s, not %s: %w", id, current.Status, from, models.ErrInvalidTransition)
}

func (s *Storage) publish(ctx context.Context, change models.Change) {
	if s.pub == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.pub.Publish(ctx, change); err != nil {
		s.log.Warn("failed to publish change",
			slog.String("collection", string(change.Collection)),
			slog.String("id", change.ID),
			sl.Err(err),
		)
	}
}

func registrationWhere(filter storage.RegistrationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.EventID != "" {
		conds = append(conds, "r.event_id = "+arg(filter.EventID))
	}
	if filter.UserID != "" {
		conds = append(conds, "r.user_id = "+arg(filter.UserID))
	}
	if filter.Status != "" {
		conds = append(conds, "r.status = "+arg(string(filter.Status)))
	}
	if filter.LiveEventsOnly {
		conds = append(conds, "EXISTS (SELECT 1 FROM events e WHERE e.id = r.event_id)")
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	var event models.Event

	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.OrganizerID,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.CreatedAt = event.CreatedAt.UTC()

	return &event, nil
}

func scanRegistration(row scanner) (*models.Registration, error) {
	var (
		reg       models.Registration
		decidedAt sql.NullTime
	)

	err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.UserID,
		&reg.UserName,
		&reg.Status,
		&reg.CreatedAt,
		&decidedAt,
	)
	if err != nil {
		return nil, err
	}

	reg.CreatedAt = reg.CreatedAt.UTC()
	if decidedAt.Valid {
		t := decidedAt.Time.UTC()
		reg.DecidedAt = &t
	}

	return &reg, nil
}

func wrap(msg string, err error) error {
	if class := classify(err); class != nil {
		return fmt.Errorf("%s: %w: %w", msg, class, err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return models.ErrConflict
		case "foreign_key_violation":
			return models.ErrReference
		case "admin_shutdown", "crash_shutdown", "cannot_connect_now", "too_many_connections":
			return models.ErrStoreUnavailable
		}

		if pqErr.Code.Class() == "08" {
			return models.ErrStoreUnavailable
		}
	}

	if storage.IsUnavailable(err) {
		return models.ErrStoreUnavailable
	}

	return nil
}

var _ storage.Store = (*Storage)(nil)
