package users

import (
	"context"
	"database/sql"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/cerviguard/console/internal/identity"
	"github.com/cerviguard/console/pkg/repository"
)

const userColumns = "id, username, role, active, created_at, updated_at"

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{2,63}$`)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an account repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "users"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]User, error) {
	q := "SELECT " + userColumns + " FROM users ORDER BY username ASC"
	return repository.QueryMany(ctx, r.db, q, nil, scanUser)
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE id = $1"

	u, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (r *repo) FindByUsername(ctx context.Context, username string) (*User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE username = $1"

	u, err := repository.QueryOne(ctx, r.db, q, []any{username}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*User, error) {
	if !usernamePattern.MatchString(cmd.Username) {
		return nil, ErrInvalidUsername
	}
	if !cmd.Role.Valid() {
		return nil, ErrInvalidRole
	}

	q := `
		INSERT INTO users(id, username, role)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	u, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (User, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), cmd.Username, string(cmd.Role)}, scanUser)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user created", "id", u.ID, "username", u.Username, "role", u.Role)
	return &u, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*User, error) {
	q := `
		UPDATE users
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (User, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanUser)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user deactivated", "id", id)
	return &u, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM users WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user deleted", "id", id)
	return nil
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	var role string
	err := s.Scan(
		&u.ID,
		&u.Username,
		&role,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	u.Role = identity.Role(role)
	return u, err
}
