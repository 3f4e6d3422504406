// Package config loads process configuration from the environment.
//
// A .env file in the working directory is applied once per process (missing
// files are ignored), then the target struct is populated from its `env`
// tags with github.com/caarlos0/env/v11. Values are parsed on every call:
// callers load configuration once at startup and pass the resulting structs
// to constructors explicitly.
//
//	type Config struct {
//		Port      string `env:"HTTP_PORT" envDefault:"5000"`
//		JWTSecret string `env:"JWT_SECRET"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
