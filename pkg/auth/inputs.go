package auth

import "strings"

// RegisterInput is the payload of an explicit registration.
type RegisterInput struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Email        string   `json:"email" validate:"required,email,max=254"`
	Password     string   `json:"password"`
	AuthProvider Provider `json:"authProvider" validate:"required,oneof=email google"`
	GoogleID     string   `json:"googleId" validate:"max=255"`
	Avatar       string   `json:"avatar" validate:"max=2048"`
	Location     string   `json:"location" validate:"max=255"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.Location = strings.TrimSpace(in.Location)
}

// LoginInput is the payload of a password sign-in.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// GoogleInput carries the Google ID token obtained by the client.
type GoogleInput struct {
	Token string `json:"token" validate:"required"`
}

// AuthResult is returned by flows that sign a user in.
type AuthResult struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}
