package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authsvc/pkg/auth"
	"github.com/dmitrymomot/authsvc/pkg/sqlite"
)

// SQLiteStore stores users in the users table created by SQLiteMigrations.
// Timestamps are kept as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const sqliteSelectUser = `SELECT id, name, email, password_hash, auth_provider, google_id, avatar, location, role, created_at FROM users`

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getOne(ctx, sqliteSelectUser+` WHERE email = ?`, email)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.getOne(ctx, sqliteSelectUser+` WHERE id = ?`, id.String())
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg any) (*auth.User, error) {
	var (
		u              auth.User
		id             string
		hash, googleID sql.NullString
		createdAt      int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&id, &u.Name, &u.Email, &hash, &u.AuthProvider, &googleID,
		&u.Avatar, &u.Location, &u.Role, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("sqlite: get user: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse user id %q: %w", id, err)
	}
	u.ID = parsed
	u.PasswordHash = hash.String
	u.GoogleID = googleID.String
	u.CreatedAt = sqlite.FromMillis(createdAt)
	return &u, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *auth.User) error {
	withDefaults(user)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, auth_provider, google_id, avatar, location, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.Name, user.Email, nullable(user.PasswordHash), string(user.AuthProvider),
		nullable(user.GoogleID), user.Avatar, user.Location, string(user.Role), sqlite.ToMillis(user.CreatedAt),
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return errors.Join(auth.ErrEmailAlreadyExists, err)
		}
		return fmt.Errorf("sqlite: create user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, user *auth.User) error {
	role := user.Role
	if role == "" {
		role = auth.DefaultRole
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users
		    SET name = ?, password_hash = ?, auth_provider = ?, google_id = ?,
		        avatar = ?, location = ?, role = ?
		  WHERE id = ?`,
		user.Name, nullable(user.PasswordHash), string(user.AuthProvider), nullable(user.GoogleID),
		user.Avatar, user.Location, string(role), user.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update user: %w", err)
	}
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ListUsers never selects password_hash.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, auth_provider, google_id, avatar, location, role, created_at
		   FROM users
		  ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list users: %w", err)
	}
	defer rows.Close()

	users := make([]*auth.User, 0)
	for rows.Next() {
		var (
			u         auth.User
			id        string
			googleID  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&id, &u.Name, &u.Email, &u.AuthProvider, &googleID,
			&u.Avatar, &u.Location, &u.Role, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan user: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse user id %q: %w", id, err)
		}
		u.ID = parsed
		u.GoogleID = googleID.String
		u.CreatedAt = sqlite.FromMillis(createdAt)
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list users: %w", err)
	}
	return users, nil
}

var _ auth.UserStorage = (*SQLiteStore)(nil)
