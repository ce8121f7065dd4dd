package publish

import (
	"encoding/json"
	"testing"
	"time"

	"healthreport/internal/model"
)

func TestEncodeMessage(t *testing.T) {
	r := model.Report{
		RunID:         "2f1d6a0e-8f4c-4b8a-9a53-1f0c2b7d9e11",
		GeneratedAt:   time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		Source:        "health_data.csv",
		Stats:         model.StatisticsSummary{AvgHeartRate: 91.5},
		Counts:        model.AnomalyCounts{HighHeartRate: 2},
		TotalReadings: 3,
		Text:          "Health Data Analysis Report\n",
	}
	msg, err := EncodeMessage(r)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(msg.Key) != r.RunID {
		t.Fatalf("key: %s", msg.Key)
	}
	if !msg.Time.Equal(r.GeneratedAt) {
		t.Fatalf("time: %s", msg.Time)
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["run_id"] != r.RunID || decoded["report"] != r.Text || decoded["total_readings"] != float64(3) {
		t.Fatalf("payload: %v", decoded)
	}
	counts, ok := decoded["counts"].(map[string]any)
	if !ok || counts["high_heart_rate"] != float64(2) {
		t.Fatalf("counts: %v", decoded["counts"])
	}
}
