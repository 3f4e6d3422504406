// Package auth implements account registration and sign-in for two kinds of
// accounts: local email/password accounts and Google accounts identified by a
// verified Google ID token.
//
// Service orchestrates the flows. It depends on three collaborators supplied
// at construction: a UserStorage implementation (see svc/userstore), a
// TokenIssuer that signs session tokens (see pkg/jwt) and an IdentityVerifier
// that validates federated ID tokens (GoogleVerifier). Passwords are hashed
// with bcrypt through the PasswordHasher interface.
//
// Every flow returns the sanitized Profile projection of a user. Password
// hashes never leave this package through a Profile.
//
// Errors are sentinel values grouped in errors.go; transports map them to
// status codes with errors.Is.
package auth
