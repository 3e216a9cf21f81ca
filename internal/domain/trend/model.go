package trend

import (
	"time"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

// BaselineDays is the number of leading samples used to establish the
// patient's discharge-era baseline. The baseline is taken from the first
// BaselineDays samples of the supplied window, not a trailing window: it
// represents the patient's normal at discharge, held fixed for comparison
// against every later day.
const BaselineDays = 7

// Direction describes which way the latest value moved relative to baseline.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// Status is the clinical classification of a metric's deviation.
type Status string

const (
	StatusNormal     Status = "normal"
	StatusImproving  Status = "improving"
	StatusConcerning Status = "concerning"
	StatusCritical   Status = "critical"
)

// Baseline is the statistical summary of the first BaselineDays samples of a
// window. It is derived on every analysis call and never persisted.
type Baseline struct {
	Mean        float64   `json:"mean"`
	Median      float64   `json:"median"`
	StdDev      float64   `json:"std_dev"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	SampleCount int       `json:"sample_count"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// Result is the outcome of analyzing one metric series. It is computed
// synchronously per request and consumed immediately.
type Result struct {
	Metric            wearable.Metric `json:"metric"`
	CurrentValue      float64         `json:"current_value"`
	Baseline          Baseline        `json:"baseline"`
	DeltaFromBaseline float64         `json:"delta_from_baseline"`
	PercentChange     float64         `json:"percent_change"`
	ZScore            float64         `json:"z_score"`
	Direction         Direction       `json:"direction"`
	Status            Status          `json:"status"`
}
