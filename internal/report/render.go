package report

import (
	"fmt"
	"strings"

	"healthreport/internal/analysis"
	"healthreport/internal/model"
)

const (
	Title     = "Health Data Analysis Report"
	underline = "---------------------------"
)

func Render(stats model.StatisticsSummary, counts model.AnomalyCounts, total int) string {
	var b strings.Builder
	b.WriteString(Title + "\n")
	b.WriteString(underline + "\n\n")
	fmt.Fprintf(&b, "Heart Rate (avg): %.1f bpm\n", stats.AvgHeartRate)
	fmt.Fprintf(&b, "Systolic BP (avg): %.1f mmHg\n", stats.AvgSystolicBP)
	fmt.Fprintf(&b, "Glucose Level (avg): %.1f mg/dL\n\n", stats.AvgGlucose)
	fmt.Fprintf(&b, "High Heart Rate Readings (>%d bpm): %d\n", analysis.HeartRateThreshold, counts.HighHeartRate)
	fmt.Fprintf(&b, "High Systolic BP Readings (>%d mmHg): %d\n", analysis.SystolicThreshold, counts.HighBloodPressure)
	fmt.Fprintf(&b, "High Glucose Readings (>%d mg/dL): %d\n\n", analysis.GlucoseThreshold, counts.HighGlucose)
	fmt.Fprintf(&b, "Total Readings: %d\n\n", total)
	fmt.Fprintf(&b, "All Averages: (%.1f, %.1f, %.1f)\n", stats.AvgHeartRate, stats.AvgSystolicBP, stats.AvgGlucose)
	fmt.Fprintf(&b, "All Abnormal Counts: (%d, %d, %d)\n", counts.HighHeartRate, counts.HighBloodPressure, counts.HighGlucose)
	return b.String()
}
