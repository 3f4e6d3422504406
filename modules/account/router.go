// Package account exposes the auth flows over HTTP.
package account

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authsvc/binder"
	"github.com/dmitrymomot/authsvc/handler"
	"github.com/dmitrymomot/authsvc/pkg/auth"
	"github.com/dmitrymomot/authsvc/pkg/jwt"
)

// Service is the subset of *auth.Service the routes call.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.AuthResult, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.AuthResult, error)
	GoogleAuth(ctx context.Context, in auth.GoogleInput) (*auth.AuthResult, error)
	VerifySession(ctx context.Context, token string) (*auth.Profile, error)
	ListUsers(ctx context.Context) ([]auth.Profile, error)
}

var _ Service = (*auth.Service)(nil)

// Option configures NewRouter.
type Option func(*routes)

// WithErrorHandler replaces the default error handler. It should include
// MapError as a mapper, otherwise auth errors are reported as 500.
func WithErrorHandler(h handler.ErrorHandler) Option {
	return func(r *routes) {
		if h != nil {
			r.errorHandler = h
		}
	}
}

// WithMaxBodyBytes limits request bodies. The default is binder.DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(r *routes) {
		r.bind = binder.JSON(binder.WithMaxBodyBytes(n))
	}
}

type routes struct {
	svc          Service
	errorHandler handler.ErrorHandler
	bind         handler.Bind
}

// NewRouter returns the auth routes, meant to be mounted under /api/auth:
//
//	POST /register
//	POST /login
//	POST /google
//	GET  /verify
//	GET  /users
func NewRouter(svc Service, opts ...Option) chi.Router {
	rt := &routes{
		svc:  svc,
		bind: binder.JSON(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.errorHandler == nil {
		rt.errorHandler = handler.NewErrorHandler(handler.WithMapper(MapError))
	}

	r := chi.NewRouter()
	r.Post("/register", handler.Wrap(rt.register,
		handler.WithBinder[auth.RegisterInput](rt.bind),
		handler.WithErrorHandler[auth.RegisterInput](rt.errorHandler),
	))
	r.Post("/login", handler.Wrap(rt.login,
		handler.WithBinder[auth.LoginInput](rt.bind),
		handler.WithErrorHandler[auth.LoginInput](rt.errorHandler),
	))
	r.Post("/google", handler.Wrap(rt.google,
		handler.WithBinder[auth.GoogleInput](rt.bind),
		handler.WithErrorHandler[auth.GoogleInput](rt.errorHandler),
	))
	r.Get("/verify", handler.Wrap(rt.verify,
		handler.WithErrorHandler[struct{}](rt.errorHandler),
	))
	r.Get("/users", handler.Wrap(rt.users,
		handler.WithErrorHandler[struct{}](rt.errorHandler),
	))
	return r
}

// registerResponse is the 201 body of POST /register.
type registerResponse struct {
	Message string       `json:"message"`
	User    auth.Profile `json:"user"`
	Token   string       `json:"token"`
}

type verifyResponse struct {
	User auth.Profile `json:"user"`
}

func (rt *routes) register(ctx handler.Context, req auth.RegisterInput) handler.Response {
	res, err := rt.svc.Register(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(registerResponse{
		Message: "User registered successfully",
		User:    res.User,
		Token:   res.Token,
	})
}

func (rt *routes) login(ctx handler.Context, req auth.LoginInput) handler.Response {
	res, err := rt.svc.Login(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (rt *routes) google(ctx handler.Context, req auth.GoogleInput) handler.Response {
	res, err := rt.svc.GoogleAuth(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

// verify treats a missing or malformed Authorization header as an empty token.
func (rt *routes) verify(ctx handler.Context, _ struct{}) handler.Response {
	token, _ := jwt.BearerToken(ctx.Request())

	profile, err := rt.svc.VerifySession(ctx, token)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(verifyResponse{User: *profile})
}

func (rt *routes) users(ctx handler.Context, _ struct{}) handler.Response {
	users, err := rt.svc.ListUsers(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(users)
}
