package model

import "time"

type Reading struct {
	PatientID              string  `json:"patient_id"`
	Timestamp              string  `json:"timestamp"`
	HeartRate              int     `json:"heart_rate"`
	BloodPressureSystolic  int     `json:"blood_pressure_systolic"`
	BloodPressureDiastolic int     `json:"blood_pressure_diastolic"`
	Temperature            float64 `json:"temperature"`
	GlucoseLevel           int     `json:"glucose_level"`
	SensorID               string  `json:"sensor_id"`
}

// ReadingTable keeps source-row order and is not modified after load.
type ReadingTable []Reading

func (t ReadingTable) Len() int {
	return len(t)
}

type StatisticsSummary struct {
	AvgHeartRate  float64 `json:"avg_heart_rate"`
	AvgSystolicBP float64 `json:"avg_systolic_bp"`
	AvgGlucose    float64 `json:"avg_glucose"`
}

type AnomalyCounts struct {
	HighHeartRate     int `json:"high_heart_rate"`
	HighBloodPressure int `json:"high_blood_pressure"`
	HighGlucose       int `json:"high_glucose"`
}

type Report struct {
	RunID         string            `json:"run_id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Source        string            `json:"source"`
	Stats         StatisticsSummary `json:"stats"`
	Counts        AnomalyCounts     `json:"counts"`
	TotalReadings int               `json:"total_readings"`
	Text          string            `json:"-"`
}
