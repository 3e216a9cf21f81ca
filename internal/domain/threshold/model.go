package threshold

import (
	"time"

	"github.com/google/uuid"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

// Severity grades a threshold breach.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Band is a 4-bound threshold set for one metric. A nil bound means the
// bound is not clinically tracked for that metric. Critical bounds are
// evaluated before warning bounds; a critical breach supersedes the warning
// for the same metric, it never stacks.
type Band struct {
	CriticalLow  *float64 `json:"critical_low,omitempty"`
	Low          *float64 `json:"low,omitempty"`
	High         *float64 `json:"high,omitempty"`
	CriticalHigh *float64 `json:"critical_high,omitempty"`
}

// Bands maps each clinically tracked metric to its threshold band.
type Bands map[wearable.Metric]Band

// MetricAlert is a candidate alert produced by threshold evaluation. It
// carries no identity; the alert lifecycle assigns that on ingestion.
type MetricAlert struct {
	Metric         wearable.Metric `json:"metric"`
	Severity       Severity        `json:"severity"`
	Message        string          `json:"message"`
	ThresholdValue float64         `json:"threshold_value"`
	ActualValue    float64         `json:"actual_value"`
	DetectedAt     time.Time       `json:"detected_at"`
}

// Override maps to the threshold_override table: a clinician-set band for one
// patient and metric, replacing the default band for that metric.
type Override struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	PatientID    uuid.UUID       `db:"patient_id" json:"patient_id"`
	Metric       wearable.Metric `db:"metric" json:"metric"`
	CriticalLow  *float64        `db:"critical_low" json:"critical_low,omitempty"`
	Low          *float64        `db:"low" json:"low,omitempty"`
	High         *float64        `db:"high" json:"high,omitempty"`
	CriticalHigh *float64        `db:"critical_high" json:"critical_high,omitempty"`
	SetBy        string          `db:"set_by" json:"set_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

func (o *Override) band() Band {
	return Band{
		CriticalLow:  o.CriticalLow,
		Low:          o.Low,
		High:         o.High,
		CriticalHigh: o.CriticalHigh,
	}
}

func ptr(v float64) *float64 { return &v }

// Defaults returns the clinical default band set. These values are the
// contract clinicians rely on when no per-patient override is configured.
func Defaults() Bands {
	return Bands{
		wearable.MetricRestingHeartRate: {
			High:         ptr(100),
			CriticalHigh: ptr(120),
		},
		wearable.MetricHeartRateVariability: {
			Low:         ptr(20),
			CriticalLow: ptr(10),
		},
		wearable.MetricBloodOxygen: {
			Low:         ptr(94),
			CriticalLow: ptr(90),
		},
		wearable.MetricSleepDuration: {
			Low:         ptr(5),
			CriticalLow: ptr(3),
		},
	}
}
