package report

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"healthreport/internal/model"
)

const workedReport = `Health Data Analysis Report
---------------------------

Heart Rate (avg): 91.7 bpm
Systolic BP (avg): 126.7 mmHg
Glucose Level (avg): 100.0 mg/dL

High Heart Rate Readings (>90 bpm): 2
High Systolic BP Readings (>130 mmHg): 1
High Glucose Readings (>110 mg/dL): 1

Total Readings: 3

All Averages: (91.7, 126.7, 100.0)
All Abnormal Counts: (2, 1, 1)
`

func TestRenderWorkedExample(t *testing.T) {
	stats := model.StatisticsSummary{AvgHeartRate: 275.0 / 3, AvgSystolicBP: 380.0 / 3, AvgGlucose: 100}
	counts := model.AnomalyCounts{HighHeartRate: 2, HighBloodPressure: 1, HighGlucose: 1}
	got := Render(stats, counts, 3)
	if got != workedReport {
		t.Fatalf("report mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, workedReport)
	}
}

// parsedReport holds the numeric fields recovered from a rendered report.
type parsedReport struct {
	stats       model.StatisticsSummary
	counts      model.AnomalyCounts
	total       int
	tupleStats  model.StatisticsSummary
	tupleCounts model.AnomalyCounts
}

func parseReport(t *testing.T, text string) parsedReport {
	t.Helper()
	var p parsedReport
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		var err error
		switch label {
		case "Heart Rate (avg)":
			_, err = fmt.Sscanf(value, "%f bpm", &p.stats.AvgHeartRate)
		case "Systolic BP (avg)":
			_, err = fmt.Sscanf(value, "%f mmHg", &p.stats.AvgSystolicBP)
		case "Glucose Level (avg)":
			_, err = fmt.Sscanf(value, "%f mg/dL", &p.stats.AvgGlucose)
		case "High Heart Rate Readings (>90 bpm)":
			_, err = fmt.Sscanf(value, "%d", &p.counts.HighHeartRate)
		case "High Systolic BP Readings (>130 mmHg)":
			_, err = fmt.Sscanf(value, "%d", &p.counts.HighBloodPressure)
		case "High Glucose Readings (>110 mg/dL)":
			_, err = fmt.Sscanf(value, "%d", &p.counts.HighGlucose)
		case "Total Readings":
			_, err = fmt.Sscanf(value, "%d", &p.total)
		case "All Averages":
			_, err = fmt.Sscanf(value, "(%f, %f, %f)",
				&p.tupleStats.AvgHeartRate, &p.tupleStats.AvgSystolicBP, &p.tupleStats.AvgGlucose)
		case "All Abnormal Counts":
			_, err = fmt.Sscanf(value, "(%d, %d, %d)",
				&p.tupleCounts.HighHeartRate, &p.tupleCounts.HighBloodPressure, &p.tupleCounts.HighGlucose)
		}
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
	}
	return p
}

func TestRenderRoundTrip(t *testing.T) {
	cases := []struct {
		stats  model.StatisticsSummary
		counts model.AnomalyCounts
		total  int
	}{
		{model.StatisticsSummary{AvgHeartRate: 72.25, AvgSystolicBP: 118.04, AvgGlucose: 99.95}, model.AnomalyCounts{}, 4},
		{model.StatisticsSummary{AvgHeartRate: 101.333, AvgSystolicBP: 140.5, AvgGlucose: 130}, model.AnomalyCounts{HighHeartRate: 7, HighBloodPressure: 3, HighGlucose: 12}, 20},
		{model.StatisticsSummary{AvgHeartRate: 0, AvgSystolicBP: 0, AvgGlucose: 0}, model.AnomalyCounts{}, 0},
	}
	for i, tc := range cases {
		p := parseReport(t, Render(tc.stats, tc.counts, tc.total))
		if math.Abs(p.stats.AvgHeartRate-tc.stats.AvgHeartRate) > 0.05+1e-9 ||
			math.Abs(p.stats.AvgSystolicBP-tc.stats.AvgSystolicBP) > 0.05+1e-9 ||
			math.Abs(p.stats.AvgGlucose-tc.stats.AvgGlucose) > 0.05+1e-9 {
			t.Fatalf("case %d: averages %+v, rendered from %+v", i, p.stats, tc.stats)
		}
		if p.counts != tc.counts || p.total != tc.total {
			t.Fatalf("case %d: counts %+v total %d", i, p.counts, p.total)
		}
		if p.tupleStats != p.stats {
			t.Fatalf("case %d: averages tuple %+v disagrees with lines %+v", i, p.tupleStats, p.stats)
		}
		if p.tupleCounts != p.counts {
			t.Fatalf("case %d: counts tuple %+v disagrees with lines %+v", i, p.tupleCounts, p.counts)
		}
	}
}

func TestWriteCreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis_report.txt")
	if err := Write(path, "first run with more content\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write(path, "second\n"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second\n" {
		t.Fatalf("content: %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriteMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	path := filepath.Join(dir, "analysis_report.txt")
	err := Write(path, workedReport)
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if we.Path != path || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		t.Fatalf("report file should not exist, stat err = %v", statErr)
	}
	if _, statErr := os.Stat(dir); !errors.Is(statErr, fs.ErrNotExist) {
		t.Fatalf("directory should not have been created, stat err = %v", statErr)
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "report.txt")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	if err := Write(path, "ok\n"); err != nil {
		t.Fatalf("write after ensure: %v", err)
	}
}
