package cli

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/internal/adapters/redis"
	"github.com/aretw0/arbor/internal/adapters/sqlite"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	redislock "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/workspace"
)

// Options controls how an App is assembled.
type Options struct {
	// Dir is the workspace root; relative store paths resolve against it.
	Dir string
	// ConfigPath overrides <Dir>/.arbor/config.yaml.
	ConfigPath string
	// Debug forces debug logging regardless of the configured level.
	Debug bool
	// Quiet discards logs entirely (used by stdio transports).
	Quiet bool
}

// App bundles everything a command needs to operate on a workspace.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Manager *workspace.Manager
	Metrics *observability.Metrics
	Streams *arborhttp.StreamManager

	closers []func() error
}

// Open loads the configuration under opts.Dir and wires store, middleware,
// lock, metrics and event streams into a workspace manager.
func Open(opts Options) (*App, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = filepath.Join(opts.Dir, config.DefaultPath)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return New(opts, cfg)
}

// New assembles an App from an already loaded configuration.
func New(opts Options, cfg config.Config) (*App, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	logger, err := createLogger(cfg.Log.Level, opts.Debug, opts.Quiet)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(nil),
		Streams: arborhttp.NewStreamManager(),
	}

	mgrOpts := []workspace.Option{
		workspace.WithLogger(logger),
		workspace.WithLockTTL(cfg.Lock.TTL),
	}

	var store ports.Store
	switch cfg.Store.Driver {
	case config.DriverFile:
		store = file.New(resolve(opts.Dir, cfg.Store.Path, "tasks.json"))
	case config.DriverSQLite:
		s, err := sqlite.New(resolve(opts.Dir, cfg.Store.Path, "arbor.db"))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, s.Close)
		store = s
	case config.DriverRedis:
		s := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, redis.WithPrefix(cfg.Store.Prefix))
		app.closers = append(app.closers, s.Close)
		mgrOpts = append(mgrOpts, workspace.WithLocker(redislock.NewLocker(s.Client(), cfg.Store.Prefix)))
		store = s
	case config.DriverMemory:
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	var mws []middleware.Middleware
	if len(cfg.RedactPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.RedactPatterns))
	}
	if cfg.EncryptionKey != "" {
		key, err := decodeKey(cfg.EncryptionKey)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	store = middleware.Chain(store, mws...)

	hooks := observability.Combine(app.Metrics.Hooks(), arborhttp.CommitHooks(app.Streams))
	if opts.Debug {
		hooks = observability.Combine(hooks, debugHooks(logger))
	}
	engine := arbor.New(arbor.WithLogger(logger), arbor.WithMutationHooks(hooks))
	mgrOpts = append(mgrOpts, workspace.WithEngine(engine), workspace.WithMutationHooks(hooks))

	app.Manager = workspace.NewManager(store, mgrOpts...)
	return app, nil
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func resolve(dir, path, name string) string {
	if path == "" {
		return filepath.Join(dir, ".arbor", name)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// decodeKey accepts a 32 byte key as hex or base64.
func decodeKey(s string) ([]byte, error) {
	if key, err := hex.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	return nil, errors.New("encryption_key must be 32 bytes, hex or base64 encoded")
}

// createLogger configures the application logger.
// Logs go to Stderr so Stdout stays clean for command output.
func createLogger(level string, debug, quiet bool) (*slog.Logger, error) {
	switch {
	case quiet:
		return logging.NewNop(), nil
	case debug:
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}
