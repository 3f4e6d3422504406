package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider identifies how an account signs in.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
)

// Role is a label attached to an account. It carries no permissions here.
type Role string

const (
	RoleVisitor    Role = "visitor"
	RoleRegistered Role = "registered"
	RoleSubscriber Role = "subscriber"
	RoleAdmin      Role = "admin"
)

// DefaultRole is applied by storage when an account is created without a role.
const DefaultRole = RoleVisitor

// User is a persisted account. PasswordHash is set only for email accounts.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	AuthProvider Provider
	GoogleID     string
	Avatar       string
	Location     string
	Role         Role
	CreatedAt    time.Time
}

// Profile is the public projection of a User.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar"`
	Location     string    `json:"location"`
	AuthProvider Provider  `json:"authProvider"`
	GoogleID     string    `json:"googleId,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile returns the user without secrets.
func (u *User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Avatar:       u.Avatar,
		Location:     u.Location,
		AuthProvider: u.AuthProvider,
		GoogleID:     u.GoogleID,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

// NormalizeEmail trims and lowercases an address so lookups and the unique
// index agree on a single spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
