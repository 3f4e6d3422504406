package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/authsvc/pkg/auth"
	"github.com/dmitrymomot/authsvc/pkg/pg"
)

// pgxQuerier is the subset of *pgxpool.Pool used by PostgresStore.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores users in the users table created by PostgresMigrations.
type PostgresStore struct {
	db pgxQuerier
}

func NewPostgresStore(db pgxQuerier) *PostgresStore {
	return &PostgresStore{db: db}
}

const pgSelectUser = `SELECT id, name, email, password_hash, auth_provider, google_id, avatar, location, role, created_at FROM users`

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getOne(ctx, pgSelectUser+` WHERE email = $1`, email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.getOne(ctx, pgSelectUser+` WHERE id = $1`, id)
}

func (s *PostgresStore) getOne(ctx context.Context, query string, arg any) (*auth.User, error) {
	var (
		u              auth.User
		hash, googleID *string
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &hash, &u.AuthProvider, &googleID,
		&u.Avatar, &u.Location, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres: get user: %w", err)
	}
	u.PasswordHash = deref(hash)
	u.GoogleID = deref(googleID)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *auth.User) error {
	withDefaults(user)

	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, auth_provider, google_id, avatar, location, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.Name, user.Email, nullable(user.PasswordHash), string(user.AuthProvider),
		nullable(user.GoogleID), user.Avatar, user.Location, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(auth.ErrEmailAlreadyExists, err)
		}
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *auth.User) error {
	role := user.Role
	if role == "" {
		role = auth.DefaultRole
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE users
		    SET name = $2, password_hash = $3, auth_provider = $4, google_id = $5,
		        avatar = $6, location = $7, role = $8
		  WHERE id = $1`,
		user.ID, user.Name, nullable(user.PasswordHash), string(user.AuthProvider),
		nullable(user.GoogleID), user.Avatar, user.Location, string(role),
	)
	if err != nil {
		return fmt.Errorf("postgres: update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ListUsers never selects password_hash.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, email, auth_provider, google_id, avatar, location, role, created_at
		   FROM users
		  ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list users: %w", err)
	}
	defer rows.Close()

	users := make([]*auth.User, 0)
	for rows.Next() {
		var (
			u        auth.User
			googleID *string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.AuthProvider, &googleID,
			&u.Avatar, &u.Location, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan user: %w", err)
		}
		u.GoogleID = deref(googleID)
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list users: %w", err)
	}
	return users, nil
}

var _ auth.UserStorage = (*PostgresStore)(nil)
