package db

import (
	"context"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
)

// Store persists computed layouts by name.
//
//go:generate mockgen -destination db_mock.go -package db . Store
type Store interface {
	// SaveLayout stores record under name, replacing any previous record.
	SaveLayout(ctx context.Context, name string, record *Record) error
	// LoadLayout returns ErrLayoutNotFound if no record is stored under name.
	LoadLayout(ctx context.Context, name string) (*Record, error)
	DeleteLayout(ctx context.Context, name string) error
}

var ErrLayoutNotFound = errors.New("layout not found")

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	// Backend is one of {file, postgres, redis}.
	Backend    string        `env:"DB_BACKEND" envDefault:"file"`
	FileDir    string        `env:"DB_FILE_DIR" envDefault:"layouts"`
	PGHost     string        `env:"DB_PG_HOST" envDefault:"localhost"`
	PGPassword string        `env:"DB_PG_PASSWORD" envDefault:"example"`
	RedisAddr  string        `env:"DB_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisTTL   time.Duration `env:"DB_REDIS_TTL" envDefault:"24h"`
}

func GetEnvConfig() Config {
	conf := Config{}
	env.Parse(&conf)
	return conf
}
