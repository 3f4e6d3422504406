package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitrymomot/authsvc/pkg/logger"
)

// Service orchestrates registration, password and Google sign-in, session
// verification and user listing.
type Service struct {
	storage  UserStorage
	tokens   TokenIssuer
	identity IdentityVerifier
	hasher   PasswordHasher
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
	newID    func() uuid.UUID

	// Hooks run asynchronously after the flow has succeeded.
	afterRegister func(ctx context.Context, user *User) error
	afterLogin    func(ctx context.Context, user *User) error
}

// Option configures a Service during construction.
type Option func(*Service)

// WithPasswordHasher replaces the default bcrypt hasher.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithAfterRegister sets a hook that runs after an account is created by
// either registration or first Google sign-in.
func WithAfterRegister(fn func(context.Context, *User) error) Option {
	return func(s *Service) { s.afterRegister = fn }
}

// WithAfterLogin sets a hook that runs after a successful password or Google sign-in.
func WithAfterLogin(fn func(context.Context, *User) error) Option {
	return func(s *Service) { s.afterLogin = fn }
}

// NewService wires the orchestrator to its collaborators.
func NewService(storage UserStorage, tokens TokenIssuer, identity IdentityVerifier, opts ...Option) *Service {
	s := &Service{
		storage:  storage,
		tokens:   tokens,
		identity: identity,
		hasher:   NewBcryptHasher(),
		validate: newValidator(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account and signs it in.
//
// The password is hashed only for email accounts; Google accounts created
// here never carry a hash. New accounts get RoleRegistered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.normalize()
	if err := validateInput(s.validate, &in); err != nil {
		return nil, err
	}

	_, err := s.storage.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailAlreadyExists
	case !errors.Is(err, ErrUserNotFound):
		return nil, s.storageFailure(ctx, "check existing email", err)
	}

	user := &User{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        in.Email,
		AuthProvider: in.AuthProvider,
		Avatar:       in.Avatar,
		Location:     in.Location,
		Role:         RoleRegistered,
		CreatedAt:    s.now().UTC(),
	}

	switch in.AuthProvider {
	case ProviderEmail:
		if in.Password != "" {
			hash, err := s.hasher.Hash(in.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = hash
		}
	case ProviderGoogle:
		user.GoogleID = in.GoogleID
	}

	// The unique index decides concurrent registrations for the same email.
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, s.storageFailure(ctx, "create user", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID),
		logger.Provider(user.AuthProvider),
		logger.Component("auth"),
	)
	s.runHook("afterRegister", s.afterRegister, user)

	return s.signIn(user)
}

// Login signs in an email account with its password.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := validateInput(s.validate, &in); err != nil {
		return nil, err
	}

	user, err := s.storage.GetUserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, s.storageFailure(ctx, "get user by email", err)
	}

	// Google accounts are told to use Google without a password check.
	if user.AuthProvider == ProviderGoogle {
		return nil, ErrWrongProvider
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "user logged in",
		logger.UserID(user.ID),
		logger.Provider(user.AuthProvider),
		logger.Component("auth"),
	)
	s.runHook("afterLogin", s.afterLogin, user)

	return s.signIn(user)
}

// GoogleAuth signs a user in with a Google ID token.
//
// An unknown email creates a Google account. An existing email account is
// re-linked to Google: its provider switches to google, the Google subject and
// picture are stored and the password hash is dropped. Accounts that already
// use Google are not modified.
func (s *Service) GoogleAuth(ctx context.Context, in GoogleInput) (*AuthResult, error) {
	if err := validateInput(s.validate, &in); err != nil {
		return nil, err
	}

	identity, err := s.identity.Verify(ctx, in.Token)
	if err != nil {
		if !errors.Is(err, ErrInvalidFederatedToken) {
			err = errors.Join(ErrInvalidFederatedToken, err)
		}
		return nil, err
	}
	identity.Email = NormalizeEmail(identity.Email)
	if identity.Email == "" {
		return nil, ErrInvalidFederatedToken
	}

	user, err := s.storage.GetUserByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		user, err = s.createGoogleUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, s.storageFailure(ctx, "get user by email", err)
	case user.AuthProvider != ProviderGoogle:
		if err := s.linkGoogle(ctx, user, identity); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "user logged in",
		logger.UserID(user.ID),
		logger.Provider(ProviderGoogle),
		logger.Component("auth"),
	)
	s.runHook("afterLogin", s.afterLogin, user)

	return s.signIn(user)
}

// VerifySession resolves a session token to the profile of its user.
func (s *Service) VerifySession(ctx context.Context, token string) (*Profile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	user, err := s.storage.GetUserByID(ctx, id)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, s.storageFailure(ctx, "get user by id", err)
	}

	profile := user.Profile()
	return &profile, nil
}

// ListUsers returns the profiles of all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]Profile, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, s.storageFailure(ctx, "list users", err)
	}

	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

func (s *Service) createGoogleUser(ctx context.Context, identity *FederatedIdentity) (*User, error) {
	name := identity.Name
	if name == "" {
		name, _, _ = strings.Cut(identity.Email, "@")
	}

	user := &User{
		ID:           s.newID(),
		Name:         name,
		Email:        identity.Email,
		AuthProvider: ProviderGoogle,
		GoogleID:     identity.Subject,
		Avatar:       identity.Avatar,
		Location:     "",
		Role:         RoleRegistered,
		CreatedAt:    s.now().UTC(),
	}

	err := s.storage.CreateUser(ctx, user)
	if err == nil {
		s.logger.InfoContext(ctx, "user registered",
			logger.UserID(user.ID),
			logger.Provider(ProviderGoogle),
			logger.Component("auth"),
		)
		s.runHook("afterRegister", s.afterRegister, user)
		return user, nil
	}
	if !errors.Is(err, ErrEmailAlreadyExists) {
		return nil, s.storageFailure(ctx, "create user", err)
	}

	// A concurrent sign-up created the account first.
	existing, err := s.storage.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, s.storageFailure(ctx, "get user by email", err)
	}
	if existing.AuthProvider != ProviderGoogle {
		if err := s.linkGoogle(ctx, existing, identity); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

func (s *Service) linkGoogle(ctx context.Context, user *User, identity *FederatedIdentity) error {
	previous := user.AuthProvider

	user.AuthProvider = ProviderGoogle
	user.GoogleID = identity.Subject
	if identity.Avatar != "" {
		user.Avatar = identity.Avatar
	}
	user.PasswordHash = ""

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return s.storageFailure(ctx, "link google account", err)
	}

	s.logger.InfoContext(ctx, "account linked to google",
		logger.UserID(user.ID),
		slog.String("previous_provider", string(previous)),
		logger.Component("auth"),
	)
	return nil
}

func (s *Service) signIn(user *User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: user.Profile(), Token: token}, nil
}

func (s *Service) storageFailure(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "storage operation failed",
		slog.String("op", op),
		logger.Error(err),
		logger.Component("auth"),
	)
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *Service) runHook(name string, fn func(context.Context, *User) error, user *User) {
	if fn == nil {
		return
	}
	u := *user
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("hook panicked",
					slog.String("hook", name),
					logger.UserID(u.ID),
					slog.Any("panic", r),
					logger.Component("auth"),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := fn(ctx, &u); err != nil {
			s.logger.Error("hook failed",
				slog.String("hook", name),
				logger.UserID(u.ID),
				logger.Error(err),
				logger.Component("auth"),
			)
		}
	}()
}
