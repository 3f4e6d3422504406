package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/authsvc/handler"
	"github.com/dmitrymomot/authsvc/pkg/auth"
)

var (
	errValidation = handler.HTTPError{Code: http.StatusBadRequest, Key: "validation_error", Message: "Validation failed"}
	errDuplicate  = handler.HTTPError{Code: http.StatusBadRequest, Key: "duplicate_account", Message: "User already exists"}
	errBadCreds   = handler.HTTPError{Code: http.StatusBadRequest, Key: "invalid_credentials", Message: "Invalid credentials"}
	errBadGoogle  = handler.HTTPError{Code: http.StatusBadRequest, Key: "invalid_federated_token", Message: "Invalid Google token"}
	errNoToken    = handler.HTTPError{Code: http.StatusUnauthorized, Key: "missing_token", Message: "No token provided"}
	errBadToken   = handler.HTTPError{Code: http.StatusUnauthorized, Key: "invalid_token", Message: "Invalid token"}
	errNoUser     = handler.HTTPError{Code: http.StatusNotFound, Key: "not_found", Message: "User not found"}
)

// MapError translates auth errors into transport errors. Anything it does
// not recognise is left to the error handler and becomes a 500.
func MapError(err error) (handler.HTTPError, bool) {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		out := errValidation
		out.Details = verr.Fields
		return out, true
	}

	switch {
	case errors.Is(err, auth.ErrValidation):
		return errValidation, true
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return errDuplicate, true
	case errors.Is(err, auth.ErrWrongProvider):
		return handler.HTTPError{
			Code:    http.StatusBadRequest,
			Key:     "wrong_provider",
			Message: "Please sign in with Google",
			Meta:    map[string]any{"authProvider": string(auth.ProviderGoogle)},
		}, true
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errBadCreds, true
	case errors.Is(err, auth.ErrInvalidFederatedToken):
		return errBadGoogle, true
	case errors.Is(err, auth.ErrMissingToken):
		return errNoToken, true
	case errors.Is(err, auth.ErrInvalidToken):
		return errBadToken, true
	case errors.Is(err, auth.ErrUserNotFound):
		return errNoUser, true
	}
	return handler.HTTPError{}, false
}
