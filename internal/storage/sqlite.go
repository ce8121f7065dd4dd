package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:healthreport.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &sqliteStore{baseStore{db: db, placeholder: func(int) string { return "?" }}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return initSchema(ctx, s.db, []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			ts DATETIME NOT NULL,
			source TEXT NOT NULL,
			total_readings INTEGER NOT NULL,
			avg_heart_rate REAL NOT NULL,
			avg_systolic_bp REAL NOT NULL,
			avg_glucose REAL NOT NULL,
			high_heart_rate INTEGER NOT NULL,
			high_blood_pressure INTEGER NOT NULL,
			high_glucose INTEGER NOT NULL,
			report_text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_runs_ts ON report_runs(ts)`,
	})
}
