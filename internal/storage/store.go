package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"healthreport/internal/config"
	"healthreport/internal/model"
)

type Store interface {
	Init(ctx context.Context) error
	Close() error
	SaveRun(ctx context.Context, report model.Report) error
	RecentRuns(ctx context.Context, limit int) ([]model.Report, error)
}

var ErrUnsupportedDriver = errors.New("unsupported storage driver")

func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, ErrUnsupportedDriver
	}
}

type baseStore struct {
	db *sql.DB
	// placeholder renders the n-th bind parameter for the driver.
	placeholder func(n int) string
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *baseStore) SaveRun(ctx context.Context, r model.Report) error {
	if b.db == nil {
		return nil
	}
	ph := make([]string, 11)
	for i := range ph {
		ph[i] = b.placeholder(i + 1)
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO report_runs (run_id, ts, source, total_readings, avg_heart_rate, avg_systolic_bp, avg_glucose,
			high_heart_rate, high_blood_pressure, high_glucose, report_text)
		VALUES (`+strings.Join(ph, ", ")+`)`,
		r.RunID,
		r.GeneratedAt.UTC(),
		r.Source,
		r.TotalReadings,
		r.Stats.AvgHeartRate,
		r.Stats.AvgSystolicBP,
		r.Stats.AvgGlucose,
		r.Counts.HighHeartRate,
		r.Counts.HighBloodPressure,
		r.Counts.HighGlucose,
		r.Text,
	)
	return err
}

func (b *baseStore) RecentRuns(ctx context.Context, limit int) ([]model.Report, error) {
	if b.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := b.db.QueryContext(ctx,
		`SELECT run_id, ts, source, total_readings, avg_heart_rate, avg_systolic_bp, avg_glucose,
			high_heart_rate, high_blood_pressure, high_glucose, report_text
		FROM report_runs ORDER BY id DESC LIMIT `+b.placeholder(1), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Report
	for rows.Next() {
		var r model.Report
		var ts time.Time
		if err := rows.Scan(
			&r.RunID,
			&ts,
			&r.Source,
			&r.TotalReadings,
			&r.Stats.AvgHeartRate,
			&r.Stats.AvgSystolicBP,
			&r.Stats.AvgGlucose,
			&r.Counts.HighHeartRate,
			&r.Counts.HighBloodPressure,
			&r.Counts.HighGlucose,
			&r.Text,
		); err != nil {
			return nil, err
		}
		r.GeneratedAt = ts.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func initSchema(ctx context.Context, db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
