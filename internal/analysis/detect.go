package analysis

import "healthreport/internal/model"

const (
	HeartRateThreshold = 90
	SystolicThreshold  = 130
	GlucoseThreshold   = 110
)

// Detect counts each field independently; a value equal to its threshold
// is normal.
func Detect(table model.ReadingTable) model.AnomalyCounts {
	var c model.AnomalyCounts
	for _, r := range table {
		if r.HeartRate > HeartRateThreshold {
			c.HighHeartRate++
		}
		if r.BloodPressureSystolic > SystolicThreshold {
			c.HighBloodPressure++
		}
		if r.GlucoseLevel > GlucoseThreshold {
			c.HighGlucose++
		}
	}
	return c
}
