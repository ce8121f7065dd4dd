package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"healthreport/internal/model"
)

// Exporter holds the gauges for one report run on a private registry, so
// the textfile only carries healthreport series. The per-run figures are
// registered on the first Observe; a run that fails before producing a
// report exports only its status and failure time.
type Exporter struct {
	registry      *prometheus.Registry
	readings      prometheus.Gauge
	averages      *prometheus.GaugeVec
	anomalies     *prometheus.GaugeVec
	lastRun       prometheus.Gauge
	lastRunStatus prometheus.Gauge
	lastFailure   prometheus.Gauge
	observed      bool
	failed        bool
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		readings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "healthreport_readings_total",
			Help: "Number of readings in the last analysed input",
		}),
		averages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "healthreport_average",
			Help: "Mean value per vital sign in the last run",
		}, []string{"vital", "unit"}),
		anomalies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "healthreport_abnormal_readings",
			Help: "Readings above the fixed threshold per vital sign in the last run",
		}, []string{"vital", "threshold"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "healthreport_last_run_timestamp_seconds",
			Help: "Unix time the last report was generated",
		}),
		lastRunStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "healthreport_last_run_success",
			Help: "1 if the last run produced a report, 0 otherwise",
		}),
		lastFailure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "healthreport_last_failure_timestamp_seconds",
			Help: "Unix time of the last failed run",
		}),
	}
	e.registry.MustRegister(e.lastRunStatus)
	return e
}

func (e *Exporter) Observe(r model.Report) {
	if !e.observed {
		e.registry.MustRegister(e.readings, e.averages, e.anomalies, e.lastRun)
		e.observed = true
	}
	e.readings.Set(float64(r.TotalReadings))
	e.averages.WithLabelValues("heart_rate", "bpm").Set(r.Stats.AvgHeartRate)
	e.averages.WithLabelValues("systolic_bp", "mmHg").Set(r.Stats.AvgSystolicBP)
	e.averages.WithLabelValues("glucose", "mg/dL").Set(r.Stats.AvgGlucose)
	e.anomalies.WithLabelValues("heart_rate", "90").Set(float64(r.Counts.HighHeartRate))
	e.anomalies.WithLabelValues("systolic_bp", "130").Set(float64(r.Counts.HighBloodPressure))
	e.anomalies.WithLabelValues("glucose", "110").Set(float64(r.Counts.HighGlucose))
	e.lastRun.Set(float64(r.GeneratedAt.Unix()))
	e.lastRunStatus.Set(1)
}

func (e *Exporter) ObserveFailure(at time.Time) {
	if !e.failed {
		e.registry.MustRegister(e.lastFailure)
		e.failed = true
	}
	e.lastFailure.Set(float64(at.Unix()))
	e.lastRunStatus.Set(0)
}

// WriteTextfile writes the registry in the text exposition format. The
// client library writes to a temp file and renames it into place.
func (e *Exporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.registry)
}

func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
