package jwt

import "errors"

var (
	ErrMissingToken   = errors.New("jwt: missing token")
	ErrInvalidToken   = errors.New("jwt: invalid token")
	ErrExpiredToken   = errors.New("jwt: token is expired")
	ErrMissingSubject = errors.New("jwt: missing subject")
)
