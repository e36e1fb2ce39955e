package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/group-accounts/internal/models"
	"github.com/hongminglow/group-accounts/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore      = (*Store)(nil)
	_ storage.GroupStore     = (*Store)(nil)
	_ storage.TokenBlacklist = (*Store)(nil)
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const userColumns = `id, username, password_hash, is_staff, group_code, version, date_joined`

// Store provides Postgres-backed persistence for users, groups and revoked tokens.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to databaseURL and verifies the connection.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, is_staff, group_code)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.IsStaff, user.GroupCode)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, translateWriteError(err)
	}
	return created, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser writes user if the stored version still equals user.Version.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		UPDATE users
		SET username = $3, password_hash = $4, is_staff = $5, group_code = $6, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.ID, user.Version, user.Username, user.PasswordHash, user.IsStaff, user.GroupCode)
	updated, err := scanUser(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, translateWriteError(err)
	}
	// No row matched: either the user is gone or the version moved on.
	if _, getErr := s.GetUser(ctx, user.ID); getErr != nil {
		return models.User{}, getErr
	}
	return models.User{}, storage.ErrConflict
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsStaff, &user.GroupCode, &user.Version, &user.DateJoined); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return storage.ErrAlreadyExists
		case foreignKeyViolation:
			return fmt.Errorf("group reference: %w", storage.ErrMissingReference)
		}
	}
	return err
}
