package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ajramos/inboxpilot/internal/config"
	"github.com/ajramos/inboxpilot/internal/db"
	"github.com/ajramos/inboxpilot/internal/kv"
	"github.com/ajramos/inboxpilot/internal/logging"
	"github.com/ajramos/inboxpilot/internal/services"
	"go.uber.org/zap"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath  string
	credentials string
	token       string
	logLevel    string
}

// app holds what the local commands need: config, logger and the record
// stores. Mail and model clients are only built by serve.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	records *kv.Records
	kvStore *db.KVStore
	closers []io.Closer

	reminders *services.ReminderServiceImpl
	privacy   *services.PrivacyServiceImpl
	prompts   *services.PromptServiceImpl
	tags      *services.TagServiceImpl
}

func loadApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := config.LoadConfig(getConfigPath(flags.configPath))
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = config.DefaultLogPath()
	}
	logger, err := logging.New(cfg.LogLevel, expandPath(logFile))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	backend, err := a.openBackend(ctx)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	a.records = kv.NewRecords(backend, cfg.Storage.Namespace, logger.Named("kv"))
	a.reminders = services.NewReminderService(a.records)
	a.privacy = services.NewPrivacyService(a.records)
	a.prompts = services.NewPromptService(a.records, cfg)
	a.tags = services.NewTagService(a.records)
	return a, nil
}

// openBackend selects the record store medium from storage.backend
func (a *app) openBackend(ctx context.Context) (kv.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(a.cfg.Storage.Backend)) {
	case "", "sqlite":
		store, err := db.Open(ctx, expandPath(a.cfg.StoragePath()))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, store)
		a.kvStore = db.NewKVStore(store)
		a.logger.Debug("record store opened", zap.String("backend", "sqlite"), zap.String("path", a.cfg.StoragePath()))
		return a.kvStore, nil
	case "redis":
		r := a.cfg.Storage.Redis
		backend, err := kv.NewRedisBackend(ctx, kv.RedisOptions{Addr: r.Addr, Password: r.Password, DB: r.DB})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, backend)
		a.logger.Debug("record store opened", zap.String("backend", "redis"), zap.String("addr", r.Addr))
		return backend, nil
	case "memory":
		a.logger.Warn("memory record store selected, nothing survives a restart")
		return kv.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
