// Package sqlite is the embedded entity store. It has no native change
// notification, so every committed write is handed to a storage.ChangePublisher.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"
	"eventRegistrar/internal/storage"
	"eventRegistrar/internal/storage/migrations"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const publishTimeout = 5 * time.Second

type Storage struct {
	db  *sql.DB
	pub storage.ChangePublisher
	log *slog.Logger
}

// New migrates the database file at path and opens it. pub may be nil.
func New(log *slog.Logger, path string, pub storage.ChangePublisher) (*Storage, error) {
	const op = "storage.sqlite.New"

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s: storage path is required", op)
	}

	if err := migrations.Up("sqlite", path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// single writer; transactions below must only use their *sql.Tx
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, pub: pub, log: log}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.sqlite.CreateUser"

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.CreatedAt = fromMillis(toMillis(user.CreatedAt))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, role, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.DisplayName, string(user.Role), toMillis(user.CreatedAt),
	)
	if err != nil {
		return nil, wrap(op, err)
	}

	s.publish(ctx, models.Change{Collection: models.CollectionUsers, Op: models.OpInsert, ID: user.ID})

	return &user, nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.sqlite.GetUser"

	var (
		user      models.User
		createdAt int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, role, created_at FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.DisplayName, &user.Role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: user %s: %w", op, id, models.ErrNotFound)
		}
		return nil, wrap(op, err)
	}

	user.CreatedAt = fromMillis(createdAt)

	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.sqlite.ListUsers"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, role, created_at FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			user      models.User
			createdAt int64
		)
		if err = rows.Scan(&user.ID, &user.DisplayName, &user.Role, &createdAt); err != nil {
			return nil, wrap(op, err)
		}
		user.CreatedAt = fromMillis(createdAt)
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}

	return users, nil
}

const eventColumns = `id, name, description, date, location, organizer_id, created_at`

func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	const op = "storage.sqlite.CreateEvent"

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	event.CreatedAt = fromMillis(toMillis(event.CreatedAt))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Name, event.Description, event.Date, event.Location, event.OrganizerID, toMillis(event.CreatedAt),
	)
	if err != nil {
		return nil, wrap(op, err)
	}

	s.publish(ctx, models.Change{Collection: models.CollectionEvents, Op: models.OpInsert, ID: event.ID})

	return &event, nil
}

func (s *Storage) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	const op = "storage.sqlite.GetEvent"

	event, err := scanEvent(s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: event %s: %w", op, id, models.ErrNotFound)
		}
		return nil, wrap(op, err)
	}

	return event, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "storage.sqlite.ListEvents"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date ASC, created_at ASC`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		events = append(events, *event)
	}

	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}

	return events, nil
}

func (s *Storage) UpdateEvent(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	const op = "storage.sqlite.UpdateEvent"

	event, err := scanEvent(s.db.QueryRowContext(ctx,
		`UPDATE events SET name = ?, description = ?, date = ?, location = ?
		 WHERE id = ?
		 RETURNING `+eventColumns,
		upd.Name, upd.Description, upd.Date, upd.Location, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: event %s: %w", op, id, models.ErrNotFound)
		}
		return nil, wrap(op, err)
	}

	s.publish(ctx, models.Change{Collection: models.CollectionEvents, Op: models.OpUpdate, ID: id})

	return event, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	const op = "storage.sqlite.DeleteEvent"

	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return wrap(op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: event %s: %w", op, id, models.ErrNotFound)
	}

	s.publish(ctx, models.Change{Collection: models.CollectionEvents, Op: models.OpDelete, ID: id})

	return nil
}

const (
	registrationColumns = `id, event_id, user_id, user_name, status, created_at, decided_at`
	// same columns for queries that alias registrations as r
	registrationColumnsR = `r.id, r.event_id, r.user_id, r.user_name, r.status, r.created_at, r.decided_at`
)

func (s *Storage) CreateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	const op = "storage.sqlite.CreateRegistration"

	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	reg.CreatedAt = fromMillis(toMillis(reg.CreatedAt))
	reg.Status = models.StatusPending
	reg.DecidedAt = nil

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer tx.Rollback()

	var active bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM registrations
			WHERE event_id = ? AND user_id = ? AND status IN ('pending', 'approved')
		)`,
		reg.EventID, reg.UserID,
	).Scan(&active)
	if err != nil {
		return nil, wrap(op, err)
	}
	if active {
		return nil, fmt.Errorf("%s: user %s already registered for event %s: %w", op, reg.UserID, reg.EventID, models.ErrConflict)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO registrations (id, event_id, user_id, user_name, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.EventID, reg.UserID, reg.UserName, string(reg.Status), toMillis(reg.CreatedAt),
	)
	if err != nil {
		return nil, wrap(op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, wrap(op, err)
	}

	s.publish(ctx, models.RegistrationChange(models.OpInsert, &reg))

	return &reg, nil
}

func (s *Storage) GetRegistration(ctx context.Context, id string) (*models.Registration, error) {
	const op = "storage.sqlite.GetRegistration"

	reg, err := scanRegistration(s.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: registration %s: %w", op, id, models.ErrNotFound)
		}
		return nil, wrap(op, err)
	}

	return reg, nil
}

func (s *Storage) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]models.Registration, error) {
	const op = "storage.sqlite.ListRegistrations"

	where, args := registrationWhere(filter)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+registrationColumnsR+` FROM registrations r`+where+` ORDER BY r.created_at DESC, r.rowid DESC`,
		args...,
	)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		regs = append(regs, *reg)
	}

	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}

	return regs, nil
}

func (s *Storage) CountRegistrations(ctx context.Context, filter storage.RegistrationFilter) (int, error) {
	const op = "storage.sqlite.CountRegistrations"

	where, args := registrationWhere(filter)

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations r`+where, args...).Scan(&count); err != nil {
		return 0, wrap(op, err)
	}

	return count, nil
}

func (s *Storage) TransitionRegistration(
	ctx context.Context, id string, from, to models.RegistrationStatus, at time.Time,
) (*models.Registration, error) {
	const op = "storage.sqlite.TransitionRegistration"

	reg, err := scanRegistration(s.db.QueryRowContext(ctx,
		`UPDATE registrations SET status = ?, decided_at = ?
		 WHERE id = ? AND status = ?
		 RETURNING `+registrationColumns,
		string(to), toMillis(at), id, string(from),
	))
	if err == nil {
		s.publish(ctx, models.RegistrationChange(models.OpUpdate, reg))
		return reg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, wrap(op, err)
	}

	current, err := s.GetRegistration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return nil, fmt.Errorf("%s: registration %s is %s, not %s: %w", op, id, current.Status, from, models.ErrInvalidTransition)
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

	if filter.EventID != "" {
		conds = append(conds, "r.event_id = ?")
		args = append(args, filter.EventID)
	}
	if filter.UserID != "" {
		conds = append(conds, "r.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		conds = append(conds, "r.status = ?")
		args = append(args, string(filter.Status))
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
	var (
		event     models.Event
		createdAt int64
	)

	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.OrganizerID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	event.CreatedAt = fromMillis(createdAt)

	return &event, nil
}

func scanRegistration(row scanner) (*models.Registration, error) {
	var (
		reg       models.Registration
		createdAt int64
		decidedAt sql.NullInt64
	)

	err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.UserID,
		&reg.UserName,
		&reg.Status,
		&createdAt,
		&decidedAt,
	)
	if err != nil {
		return nil, err
	}

	reg.CreatedAt = fromMillis(createdAt)
	if decidedAt.Valid {
		t := fromMillis(decidedAt.Int64)
		reg.DecidedAt = &t
	}

	return &reg, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// wrap attaches the matching domain error to a driver error.
func wrap(op string, err error) error {
	if class := classify(err); class != nil {
		return fmt.Errorf("%s: %w: %w", op, class, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func classify(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()

		switch code {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return models.ErrConflict
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return models.ErrReference
		}

		switch code & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED, sqlite3lib.SQLITE_CANTOPEN, sqlite3lib.SQLITE_IOERR:
			return models.ErrStoreUnavailable
		}
	}

	if storage.IsUnavailable(err) {
		return models.ErrStoreUnavailable
	}

	return nil
}

var _ storage.Store = (*Storage)(nil)
