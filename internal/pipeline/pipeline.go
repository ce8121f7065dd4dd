package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"healthreport/internal/analysis"
	"healthreport/internal/config"
	"healthreport/internal/ingest"
	"healthreport/internal/metrics"
	"healthreport/internal/model"
	"healthreport/internal/report"
)

const (
	StageLoad      = "load"
	StageAggregate = "aggregate"
	StageWrite     = "write"
	StageStorage   = "storage"
	StageMetrics   = "metrics"
	StagePublish   = "publish"
	StageArchive   = "archive"
)

type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	sinks  Sinks
	// open builds the sinks from cfg once the report is on disk. When nil,
	// the sinks passed to New are used as is and stay owned by the caller.
	open  func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Sinks, error)
	now   func() time.Time
	newID func() string
}

func New(cfg *config.Config, logger *slog.Logger, sinks Sinks) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		sinks:  sinks,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// FromConfig returns a pipeline that opens the sinks enabled in cfg after
// the report has been written and closes them before Run returns.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Pipeline {
	p := New(cfg, logger, Sinks{})
	p.open = BuildSinks
	return p
}

// Run executes load, aggregate, detect and render, then writes the report.
// Sinks run only once the report file is in place. The first failure stops
// the run.
func (p *Pipeline) Run(ctx context.Context) (model.Report, error) {
	r, err := p.run(ctx)
	if err != nil {
		p.recordFailure(err)
		return model.Report{}, err
	}
	return r, nil
}

func (p *Pipeline) run(ctx context.Context) (model.Report, error) {
	inPath := p.cfg.Input.Path
	outPath := p.cfg.Output.Path

	table, err := ingest.LoadFile(inPath)
	if err != nil {
		return model.Report{}, stageErr(StageLoad, err)
	}
	p.logger.Info("readings loaded", "path", inPath, "readings", table.Len())

	stats, err := analysis.Aggregate(table)
	if err != nil {
		return model.Report{}, stageErr(StageAggregate, err)
	}
	p.logger.Info("statistics computed",
		"avg_heart_rate", fmt.Sprintf("%.2f", stats.AvgHeartRate),
		"avg_systolic_bp", fmt.Sprintf("%.2f", stats.AvgSystolicBP),
		"avg_glucose", fmt.Sprintf("%.2f", stats.AvgGlucose),
	)

	counts := analysis.Detect(table)
	p.logger.Info("abnormal readings counted",
		"high_heart_rate", counts.HighHeartRate,
		"high_blood_pressure", counts.HighBloodPressure,
		"high_glucose", counts.HighGlucose,
	)

	r := model.Report{
		RunID:         p.newID(),
		GeneratedAt:   p.now().UTC(),
		Source:        inPath,
		Stats:         stats,
		Counts:        counts,
		TotalReadings: table.Len(),
		Text:          report.Render(stats, counts, table.Len()),
	}

	if p.cfg.Output.CreateDir {
		if err := report.EnsureDir(outPath); err != nil {
			return model.Report{}, stageErr(StageWrite, err)
		}
	}
	if err := report.Write(outPath, r.Text); err != nil {
		return model.Report{}, stageErr(StageWrite, err)
	}
	p.logger.Info("report written", "path", outPath, "run_id", r.RunID)

	if err := p.deliver(ctx, r); err != nil {
		return model.Report{}, err
	}
	return r, nil
}

func (p *Pipeline) deliver(ctx context.Context, r model.Report) error {
	timeout := p.cfg.Sinks.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if p.open != nil {
		sinks, err := p.open(ctx, p.cfg, p.logger)
		if err != nil {
			return err
		}
		p.sinks = *sinks
		defer func() {
			if err := sinks.Close(); err != nil {
				p.logger.Warn("sink close failed", "err", err)
			}
		}()
	}

	if p.sinks.Store != nil {
		if err := p.sinks.Store.SaveRun(ctx, r); err != nil {
			return stageErr(StageStorage, err)
		}
		p.logger.Info("run recorded", "driver", p.cfg.Storage.Driver)
	}
	if p.sinks.Metrics != nil {
		p.sinks.Metrics.Observe(r)
		if err := p.sinks.Metrics.WriteTextfile(p.cfg.Metrics.TextfilePath); err != nil {
			return stageErr(StageMetrics, err)
		}
		p.logger.Info("metrics textfile written", "path", p.cfg.Metrics.TextfilePath)
	}
	if p.sinks.Publisher != nil {
		if err := p.sinks.Publisher.Publish(ctx, r); err != nil {
			return stageErr(StagePublish, err)
		}
		p.logger.Info("report published", "topic", p.cfg.Publish.Kafka.Topic)
	}
	if p.sinks.Archive != nil {
		if err := p.sinks.Archive.Upload(ctx, r); err != nil {
			return stageErr(StageArchive, err)
		}
		p.logger.Info("report archived", "bucket", p.cfg.Archive.Bucket)
	}
	return nil
}

func (p *Pipeline) recordFailure(err error) {
	var se *StageError
	stage := "unknown"
	if errors.As(err, &se) {
		stage = se.Stage
	}
	p.logger.Error("pipeline failed", "stage", stage, "err", err)
	if stage == StageMetrics {
		return
	}
	exporter := p.sinks.Metrics
	if exporter == nil {
		if !p.cfg.Metrics.Enabled {
			return
		}
		exporter = metrics.NewExporter()
	}
	exporter.ObserveFailure(p.now())
	if werr := exporter.WriteTextfile(p.cfg.Metrics.TextfilePath); werr != nil {
		p.logger.Warn("metrics textfile not updated", "err", werr)
	}
}
