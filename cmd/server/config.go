package main

import (
	"time"

	"github.com/dmitrymomot/authsvc/pkg/config"
	"github.com/dmitrymomot/authsvc/pkg/httpserver"
	"github.com/dmitrymomot/authsvc/pkg/mongo"
	"github.com/dmitrymomot/authsvc/pkg/pg"
	"github.com/dmitrymomot/authsvc/pkg/sqlite"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"production"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"authsvc"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP httpserver.Config
	// HTTPPort and Port detect whether HTTP_PORT was set explicitly, so that
	// PORT can stand in for it on platforms that only provide PORT.
	HTTPPort       string        `env:"HTTP_PORT"`
	Port           string        `env:"PORT"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ReadyTimeout   time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
	JWTIssuer string        `env:"JWT_ISSUER"`

	GoogleClientID            string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleRequireVerifiedMail bool   `env:"GOOGLE_REQUIRE_VERIFIED_EMAIL" envDefault:"false"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	Mongo       mongo.Config
	Postgres    pg.Config
	SQLite      sqlite.Config

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

func loadConfig(opts ...config.Option) (appConfig, error) {
	var cfg appConfig
	if err := config.Load(&cfg, opts...); err != nil {
		return appConfig{}, err
	}
	if cfg.HTTPPort == "" && cfg.Port != "" {
		cfg.HTTP.Port = cfg.Port
	}
	return cfg, nil
}
