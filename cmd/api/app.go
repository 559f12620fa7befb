package main

import (
	"calendarbot/cmd/internal/assistant"
	"calendarbot/cmd/internal/config"
	"calendarbot/cmd/internal/domain/memory"
	"calendarbot/cmd/internal/domain/sqlite"
	"calendarbot/cmd/internal/domain/sqlite/repository"
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/integration/llm"
	"calendarbot/cmd/internal/logger"
	"calendarbot/cmd/internal/metrics"
	"calendarbot/cmd/internal/service"
	"calendarbot/cmd/internal/tools"
	"calendarbot/cmd/internal/utils/validators"
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds everything a command wires together.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *gorm.DB
	validate *validator.Validate
	metrics  *metrics.Metrics

	store    tools.Store
	calendar service.CalendarRepository
	toolbox  *tools.Toolbox
	history  *history.Manager
}

type appStore interface {
	tools.Store
	service.CalendarRepository
}

type appOptions struct {
	needModel bool
	// logOutput overrides the zap sink, "stderr" when stdout carries a protocol.
	logOutput string
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(opts.needModel); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log.SetLevel(cfg.GommonLevel())

	policy, err := tools.ParseOverlapPolicy(cfg.OverlapPolicy)
	if err != nil {
		return nil, err
	}

	var outputs []string
	if opts.logOutput != "" {
		outputs = append(outputs, opts.logOutput)
	}
	a := &app{
		cfg:      cfg,
		log:      logger.New(cfg.Environment, outputs...),
		validate: validators.New(),
		metrics:  metrics.New(),
	}

	var store appStore
	var histStore history.Store = history.NewMemoryStore()
	switch cfg.Store {
	case config.StoreMemory:
		store = memory.NewAppointmentStore()
	default:
		a.db, err = sqlite.Init(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		store = repository.NewAppointmentRepository(a.db)
		if cfg.HistoryBackend == config.HistorySQL {
			histStore = history.NewSQLStore(repository.NewChatRepository(a.db))
		}
	}

	a.store = store
	a.calendar = store
	a.toolbox = tools.NewToolbox(store, policy, a.metrics)
	a.history = history.NewManager(histStore, cfg.HistoryLimit)
	return a, nil
}

func (a *app) assistant() *assistant.Assistant {
	model := llm.NewClient(llm.Config{
		APIKey:  a.cfg.LLM.APIKey,
		BaseURL: a.cfg.LLM.BaseURL,
		Model:   a.cfg.LLM.Model,
		Timeout: a.cfg.LLM.Timeout.Duration,
	}, a.metrics)

	return assistant.New(model, a.toolbox, a.history, a.validate, assistant.Options{
		SnapshotLimit: a.cfg.SnapshotLimit,
		Recorder:      a.metrics,
	})
}

func (a *app) chatService() *service.DefaultChatService {
	return service.NewChatService(a.assistant(), a.validate, a.metrics)
}

func (a *app) Close() {
	if a.db != nil {
		if err := sqlite.Close(a.db); err != nil {
			a.log.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
