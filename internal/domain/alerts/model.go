package alerts

import (
	"time"

	"github.com/google/uuid"
)

// Severity ranks an alert. Red alerts need same-day clinical action; amber
// alerts are reviewed during the ward round.
type Severity string

const (
	SeverityRed   Severity = "red"
	SeverityAmber Severity = "amber"
)

// TriageLevel is the patient's derived standing, computed from their open
// alerts and never stored: any open red alert makes the patient red, any
// open amber makes them amber, otherwise green.
type TriageLevel string

const (
	TriageGreen TriageLevel = "green"
	TriageAmber TriageLevel = "amber"
	TriageRed   TriageLevel = "red"
)

// Source identifies which detector raised an alert.
type Source string

const (
	SourceTrend     Source = "trend"
	SourceThreshold Source = "threshold"
	SourceSymptom   Source = "symptom"
)

// Alert maps to the alert table. CauseKey identifies the condition behind
// the alert ("threshold:resting_heart_rate", "symptom:chest_pain"): at most
// one unresolved alert exists per patient and cause key, so a condition that
// persists across evaluations does not pile up duplicates.
type Alert struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Severity    Severity   `db:"severity" json:"severity"`
	Source      Source     `db:"source" json:"source"`
	CauseKey    string     `db:"cause_key" json:"cause_key"`
	Headline    string     `db:"headline" json:"headline"`
	Description string     `db:"description" json:"description"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy  *string    `db:"resolved_by" json:"resolved_by,omitempty"`
}

// Resolved reports whether the alert has been closed.
func (a *Alert) Resolved() bool { return a.ResolvedAt != nil }

// Stats is the fleet-wide dashboard summary.
type Stats struct {
	OpenRed       int `json:"open_red"`
	OpenAmber     int `json:"open_amber"`
	PatientsRed   int `json:"patients_red"`
	PatientsAmber int `json:"patients_amber"`
	PatientsGreen int `json:"patients_green"`
	TotalPatients int `json:"total_patients"`
}
