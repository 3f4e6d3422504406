// Command server runs the authentication API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/authsvc/pkg/auth"
	"github.com/dmitrymomot/authsvc/pkg/httpserver"
	"github.com/dmitrymomot/authsvc/pkg/jwt"
	"github.com/dmitrymomot/authsvc/pkg/logger"
	"github.com/dmitrymomot/authsvc/svc/userstore"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "authsvc: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithLevel(level),
		logger.WithContextExtractors(logger.RequestIDExtractor()),
	)

	backend, err := userstore.Open(ctx, cfg.DatabaseURL, userstore.Options{
		Mongo:    cfg.Mongo,
		Postgres: cfg.Postgres,
		SQLite:   cfg.SQLite,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer func() {
		if err := backend.Close(context.WithoutCancel(ctx)); err != nil {
			log.ErrorContext(ctx, "failed to close user store", logger.Error(err))
		}
	}()
	log.InfoContext(ctx, "user store ready", slog.String("backend", backend.Name))

	if cfg.JWTSecret == "" {
		log.WarnContext(ctx, "JWT_SECRET is empty, session tokens are signed with an empty key")
	}
	tokens := jwt.NewFromString(cfg.JWTSecret,
		jwt.WithTTL(cfg.JWTTTL),
		jwt.WithIssuer(cfg.JWTIssuer),
	)

	google := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID,
		auth.WithRequireVerifiedEmail(cfg.GoogleRequireVerifiedMail),
	)

	svc := auth.NewService(backend.Users, tokens, google, auth.WithLogger(log))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	log.InfoContext(ctx, "starting http server", slog.String("addr", cfg.HTTP.Addr()))
	return srv.Run(ctx, newRouter(cfg, log, svc, backend))
}
