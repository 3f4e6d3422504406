package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrymomot/authsvc/handler"
	"github.com/dmitrymomot/authsvc/modules/account"
	"github.com/dmitrymomot/authsvc/pkg/httpserver"
	"github.com/dmitrymomot/authsvc/pkg/logger"
	"github.com/dmitrymomot/authsvc/svc/userstore"
)

func newRouter(cfg appConfig, log *slog.Logger, svc account.Service, backend *userstore.Backend) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		logger.Middleware(log),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}),
	)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, cfg.ReadyTimeout, map[string]httpserver.Check{
		backend.Name: backend.Check,
	}))

	errorHandler := handler.NewErrorHandler(
		handler.WithLogger(log),
		handler.WithMapper(account.MapError),
		handler.WithExposeDetails(logger.IsDevelopment(cfg.Env)),
	)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		r.Mount("/api/auth", account.NewRouter(svc, account.WithErrorHandler(errorHandler)))
	})

	return r
}
