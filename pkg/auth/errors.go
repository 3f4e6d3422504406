package auth

import "errors"

// Input errors
var (
	ErrValidation = errors.New("validation failed")
)

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongProvider is returned by password login for accounts that sign in with Google.
	ErrWrongProvider = errors.New("account uses a different sign-in provider")
)

// Token errors
var (
	ErrMissingToken          = errors.New("token not provided")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidFederatedToken = errors.New("invalid federated identity token")
)
