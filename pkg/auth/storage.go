package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserStorage persists accounts.
//
// Lookups return ErrUserNotFound for unknown users. CreateUser must return
// ErrEmailAlreadyExists when the email unique constraint rejects the insert.
// ListUsers must not load password hashes.
type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	ListUsers(ctx context.Context) ([]*User, error)
}

// TokenIssuer signs and verifies session tokens whose subject is a user id.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (string, error)
}

// IdentityVerifier validates a federated ID token and returns the identity it asserts.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*FederatedIdentity, error)
}

// FederatedIdentity is the subset of ID token claims used to sign a user in.
type FederatedIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Avatar        string
}
