package analysis

import (
	"errors"

	"healthreport/internal/model"
)

// ErrEmptyInput is returned instead of a NaN mean.
var ErrEmptyInput = errors.New("no readings to aggregate")

func Aggregate(table model.ReadingTable) (model.StatisticsSummary, error) {
	n := table.Len()
	if n == 0 {
		return model.StatisticsSummary{}, ErrEmptyInput
	}
	var hr, sys, glu int64
	for _, r := range table {
		hr += int64(r.HeartRate)
		sys += int64(r.BloodPressureSystolic)
		glu += int64(r.GlucoseLevel)
	}
	return model.StatisticsSummary{
		AvgHeartRate:  float64(hr) / float64(n),
		AvgSystolicBP: float64(sys) / float64(n),
		AvgGlucose:    float64(glu) / float64(n),
	}, nil
}
