package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"healthreport/internal/archive"
	"healthreport/internal/config"
	"healthreport/internal/metrics"
	"healthreport/internal/model"
	"healthreport/internal/publish"
	"healthreport/internal/storage"
)

type Publisher interface {
	Publish(ctx context.Context, r model.Report) error
}

type Archiver interface {
	Upload(ctx context.Context, r model.Report) error
}

// Sinks receive the finished report. Nil members are skipped.
type Sinks struct {
	Store     storage.Store
	Metrics   *metrics.Exporter
	Publisher Publisher
	Archive   Archiver

	closers []func() error
}

func (s *Sinks) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// BuildSinks opens every sink enabled in cfg. On error, sinks opened so far
// are closed.
func BuildSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Sinks, error) {
	s := &Sinks{}
	if cfg.Storage.Enabled {
		store, err := storage.NewStore(cfg.Storage)
		if err != nil {
			return nil, stageErr(StageStorage, err)
		}
		s.closers = append(s.closers, store.Close)
		if err := store.Init(ctx); err != nil {
			_ = s.Close()
			return nil, stageErr(StageStorage, fmt.Errorf("init schema: %w", err))
		}
		s.Store = store
		logInfo(logger, "run history enabled", "driver", cfg.Storage.Driver)
	}
	if cfg.Metrics.Enabled {
		s.Metrics = metrics.NewExporter()
		logInfo(logger, "metrics textfile enabled", "path", cfg.Metrics.TextfilePath)
	}
	if cfg.Publish.Kafka.Enabled {
		pub := publish.NewKafka(cfg.Publish.Kafka)
		s.closers = append(s.closers, pub.Close)
		s.Publisher = pub
		logInfo(logger, "kafka publish enabled", "brokers", cfg.Publish.Kafka.Brokers, "topic", cfg.Publish.Kafka.Topic)
	}
	if cfg.Archive.Enabled {
		arc, err := archive.NewS3(cfg.Archive)
		if err != nil {
			_ = s.Close()
			return nil, stageErr(StageArchive, err)
		}
		s.Archive = arc
		logInfo(logger, "report archive enabled", "endpoint", cfg.Archive.Endpoint, "bucket", cfg.Archive.Bucket)
	}
	return s, nil
}

func logInfo(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}
