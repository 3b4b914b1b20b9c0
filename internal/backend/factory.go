package backend

import (
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/services"
	"fintrack/internal/store/memory"
	"fintrack/internal/store/sqlite"
)

// Factory creates backends based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

func (f *Factory) CreateBackend(config Config) (*Result, error) {
	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *Factory) createSQLiteBackend(config Config) (*Result, error) {
	st, err := sqlite.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	// AMQP is optional; without it the command path works and only the
	// spreadsheet mirror goes stale.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without export", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	service := services.NewRecordService(st, amqpClient)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Store:   st,
		Service: service,
		Cleanup: service.Close,
	}, nil
}

func (f *Factory) createMemoryBackend() (*Result, error) {
	st := memory.New()
	service := services.NewRecordService(st, nil)

	f.logger.Info("Initialized memory backend")

	return &Result{
		Store:   st,
		Service: service,
		Cleanup: nil,
	}, nil
}
