package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/healthreport?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &postgresStore{baseStore{db: db, placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return initSchema(ctx, s.db, []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL UNIQUE,
			ts TIMESTAMPTZ NOT NULL,
			source TEXT NOT NULL,
			total_readings INTEGER NOT NULL,
			avg_heart_rate DOUBLE PRECISION NOT NULL,
			avg_systolic_bp DOUBLE PRECISION NOT NULL,
			avg_glucose DOUBLE PRECISION NOT NULL,
			high_heart_rate INTEGER NOT NULL,
			high_blood_pressure INTEGER NOT NULL,
			high_glucose INTEGER NOT NULL,
			report_text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_runs_ts ON report_runs(ts)`,
	})
}
