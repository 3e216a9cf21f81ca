package wearable

import (
	"time"

	"github.com/google/uuid"
)

// Metric identifies a physiological series tracked for a patient.
type Metric string

const (
	MetricRestingHeartRate     Metric = "resting_heart_rate"
	MetricHeartRateVariability Metric = "heart_rate_variability"
	MetricSleepDuration        Metric = "sleep_duration"
	MetricSteps                Metric = "steps"
	MetricBloodOxygen          Metric = "blood_oxygen"
)

// TrackedMetrics returns every metric the engine evaluates, in a stable order.
func TrackedMetrics() []Metric {
	return []Metric{
		MetricRestingHeartRate,
		MetricHeartRateVariability,
		MetricSleepDuration,
		MetricSteps,
		MetricBloodOxygen,
	}
}

// Reading maps to the wearable_reading table. Readings are append-only and
// immutable once recorded; a nil field means the device did not report that
// metric for the day.
type Reading struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	RecordedAt       time.Time  `db:"recorded_at" json:"recorded_at"`
	RestingHeartRate *float64   `db:"resting_heart_rate" json:"resting_heart_rate,omitempty"`
	HeartRateVar     *float64   `db:"heart_rate_variability" json:"heart_rate_variability,omitempty"`
	SleepHours       *float64   `db:"sleep_hours" json:"sleep_hours,omitempty"`
	Steps            *int       `db:"steps" json:"steps,omitempty"`
	BloodOxygen      *float64   `db:"blood_oxygen" json:"blood_oxygen,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// Value returns the reading's value for the given metric. The second return
// is false when the metric is missing from this reading; callers skip the
// metric rather than treating the reading as malformed.
func (r *Reading) Value(m Metric) (float64, bool) {
	switch m {
	case MetricRestingHeartRate:
		if r.RestingHeartRate != nil {
			return *r.RestingHeartRate, true
		}
	case MetricHeartRateVariability:
		if r.HeartRateVar != nil {
			return *r.HeartRateVar, true
		}
	case MetricSleepDuration:
		if r.SleepHours != nil {
			return *r.SleepHours, true
		}
	case MetricSteps:
		if r.Steps != nil {
			return float64(*r.Steps), true
		}
	case MetricBloodOxygen:
		if r.BloodOxygen != nil {
			return *r.BloodOxygen, true
		}
	}
	return 0, false
}

// Series extracts the ordered values of one metric from an ordered reading
// window, skipping readings where the metric is missing.
func Series(readings []Reading, m Metric) []float64 {
	var values []float64
	for i := range readings {
		if v, ok := readings[i].Value(m); ok {
			values = append(values, v)
		}
	}
	return values
}
