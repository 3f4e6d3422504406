package userstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/authsvc/pkg/auth"
	mongox "github.com/dmitrymomot/authsvc/pkg/mongo"
	"github.com/dmitrymomot/authsvc/pkg/pg"
	"github.com/dmitrymomot/authsvc/pkg/sqlite"
)

var (
	ErrUnsupportedDSN = errors.New("userstore: unsupported database url")
	ErrEmptyDSN       = errors.New("userstore: database url is required")
)

// Backend names reported by Backend.Name.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongodb"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Options carries per-driver settings. The connection string itself always
// comes from the dsn passed to Open.
type Options struct {
	Mongo    mongox.Config
	Postgres pg.Config
	SQLite   sqlite.Config
	Logger   *slog.Logger
}

// Backend is an opened user store together with its readiness probe.
type Backend struct {
	Users auth.UserStorage
	Name  string
	Check func(context.Context) error
	Close func(context.Context) error
}

// Open selects the storage driver from the dsn scheme, connects and prepares
// the schema. Supported forms:
//
//	memory://
//	mongodb://host/db, mongodb+srv://...
//	postgres://..., postgresql://...
//	sqlite://path/to/file.db, file:path/to/file.db
func Open(ctx context.Context, dsn string, opts Options) (*Backend, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dsn = strings.TrimSpace(dsn)
	scheme, rest, _ := strings.Cut(dsn, ":")
	switch strings.ToLower(scheme) {
	case "":
		return nil, ErrEmptyDSN
	case "memory":
		return openMemory(), nil
	case "mongodb", "mongodb+srv":
		cfg := opts.Mongo
		cfg.ConnectionURL = dsn
		return openMongo(ctx, cfg)
	case "postgres", "postgresql":
		cfg := opts.Postgres
		cfg.ConnectionString = dsn
		return openPostgres(ctx, cfg, log)
	case "sqlite", "file":
		cfg := opts.SQLite
		cfg.Path = strings.TrimPrefix(rest, "//")
		return openSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedDSN, scheme)
	}
}

func openMemory() *Backend {
	return &Backend{
		Users: NewMemoryStore(),
		Name:  BackendMemory,
		Check: func(context.Context) error { return nil },
		Close: func(context.Context) error { return nil },
	}
}

func openMongo(ctx context.Context, cfg mongox.Config) (*Backend, error) {
	client, err := mongox.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := NewMongoStore(client.Database(cfg.Database))
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}

	return &Backend{
		Users: store,
		Name:  BackendMongo,
		Check: mongox.Healthcheck(client),
		Close: client.Disconnect,
	}, nil
}

func openPostgres(ctx context.Context, cfg pg.Config, log *slog.Logger) (*Backend, error) {
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx, pool, PostgresMigrations(), log); err != nil {
		pool.Close()
		return nil, err
	}

	return &Backend{
		Users: NewPostgresStore(pool),
		Name:  BackendPostgres,
		Check: pg.Healthcheck(pool),
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openSQLite(ctx context.Context, cfg sqlite.Config, log *slog.Logger) (*Backend, error) {
	db, err := sqlite.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db, SQLiteMigrations(), log); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Backend{
		Users: NewSQLiteStore(db),
		Name:  BackendSQLite,
		Check: sqlite.Healthcheck(db),
		Close: func(context.Context) error { return db.Close() },
	}, nil
}
