package app

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/learn-graph-layout/db"
	"github.com/suxatcode/learn-graph-layout/db/postgres"
	"github.com/suxatcode/learn-graph-layout/db/redis"
	"github.com/suxatcode/learn-graph-layout/internal/controller"
	"github.com/suxatcode/learn-graph-layout/layout"
)

type Config struct {
	Production bool `env:"PRODUCTION" envDefault:"false"`
	// Levels are {trace, debug, info, warn, error, fatal, panic}.
	// See github.com/rs/zerolog@v1.32.0/log.go for possible values.
	LogLevel string `env:"LOGLEVEL" envDefault:"debug"`
	// HTTP timeouts (read and write). A layout computation exceeding it is
	// cancelled.
	HTTPTimeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
	Port        int           `env:"PORT" envDefault:"8080"`

	LayoutWidth  float64 `env:"LAYOUT_WIDTH" envDefault:"1200"`
	LayoutHeight float64 `env:"LAYOUT_HEIGHT" envDefault:"800"`
	LayoutSeed   int64   `env:"LAYOUT_SEED" envDefault:"123"`
	// LayoutParams is an optional toml file overriding layout.DefaultParams.
	LayoutParams string `env:"LAYOUT_PARAMS"`
	// 0 uses one goroutine per CPU.
	LayoutParallelization int `env:"LAYOUT_PARALLELIZATION" envDefault:"0"`
}

func GetEnvConfig() (Config, error) {
	conf := Config{}
	err := env.Parse(&conf)
	return conf, err
}

// LoadParams reads layout parameters from a toml file. Keys missing in the
// file keep their value from layout.DefaultParams.
func LoadParams(path string) (layout.Params, error) {
	params := layout.DefaultParams
	if path == "" {
		return params, nil
	}
	md, err := toml.DecodeFile(path, &params)
	if err != nil {
		return params, errors.Wrapf(err, "failed to read layout parameters from '%s'", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return params, errors.Errorf("unknown layout parameters in '%s': %v", path, undecoded)
	}
	return params, params.Validate()
}

// LayoutConfig builds the embedder configuration from conf.
func (conf Config) LayoutConfig() (layout.Config, error) {
	params, err := LoadParams(conf.LayoutParams)
	if err != nil {
		return layout.Config{}, err
	}
	parallelization := conf.LayoutParallelization
	if parallelization == 0 {
		parallelization = runtime.NumCPU()
	}
	return layout.Config{
		Rect:            layout.Rect{Width: conf.LayoutWidth, Height: conf.LayoutHeight},
		Seed:            conf.LayoutSeed,
		Params:          params,
		Parallelization: parallelization,
	}, nil
}

func SetupLogging(production bool, logLevel string) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		println("failed to parse LogLevel: '" + logLevel + "', setting to debug")
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if !production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func RetryAtIntervals(fn func() error, intervals []time.Duration) {
	var err error
	err = fn()
	i := 0
	for err != nil {
		time.Sleep(intervals[i])
		if i < len(intervals)-1 {
			i++
		}
		err = fn()
	}
}

// NewStore connects to the storage backend selected by conf.Backend.
func NewStore(ctx context.Context, conf db.Config) (db.Store, error) {
	switch conf.Backend {
	case db.BackendFile:
		return db.NewFileStore(conf.FileDir)
	case db.BackendPostgres:
		return postgres.NewPostgresDB(conf)
	case db.BackendRedis:
		return redis.NewRedisStore(ctx, conf)
	}
	return nil, errors.Errorf("unknown storage backend '%s'", conf.Backend)
}

func connectStore(ctx context.Context, conf db.Config) db.Store {
	var (
		store db.Store
		err   error
	)
	RetryAtIntervals(func() error {
		store, err = NewStore(ctx, conf)
		if err != nil {
			log.Error().Msgf("failed to connect to %s store: %v", conf.Backend, err)
		}
		return err
	}, []time.Duration{
		1 * time.Second,
		5 * time.Second,
		5 * time.Second,
		10 * time.Second,
	})
	return store
}

// Run starts the layout service and blocks until the http server fails.
func Run() {
	conf, err := GetEnvConfig()
	SetupLogging(conf.Production, conf.LogLevel)
	if err != nil {
		log.Fatal().Msgf("invalid configuration: %v", err)
	}
	layoutConf, err := conf.LayoutConfig()
	if err != nil {
		log.Fatal().Msgf("invalid layout configuration: %v", err)
	}
	dbconf := db.GetEnvConfig()
	log.Info().Msgf("Config: %#v", dbconf)
	store := connectStore(context.Background(), dbconf)
	layouter, err := controller.NewLayouter(store, layoutConf)
	if err != nil {
		log.Fatal().Msgf("invalid layout configuration: %v", err)
	}
	server := http.Server{
		Addr:         ":" + strconv.Itoa(conf.Port),
		Handler:      NewRouter(layouter, store, conf.HTTPTimeout),
		ReadTimeout:  conf.HTTPTimeout,
		WriteTimeout: conf.HTTPTimeout + time.Second,
	}
	log.Info().Msgf("listening on http://0.0.0.0:%d/layouts", conf.Port)
	log.Fatal().Msgf("ListenAndServe: %s", server.ListenAndServe())
}
