package patient

import (
	"time"

	"github.com/google/uuid"
)

// MonitoringStatus tracks where the patient sits in the remote-monitoring
// program.
type MonitoringStatus string

const (
	StatusActive    MonitoringStatus = "active"
	StatusPaused    MonitoringStatus = "paused"
	StatusCompleted MonitoringStatus = "completed"
)

// Patient maps to the patient table: one enrolled post-discharge patient.
type Patient struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	MRN           string           `db:"mrn" json:"mrn"`
	FirstName     string           `db:"first_name" json:"first_name"`
	LastName      string           `db:"last_name" json:"last_name"`
	BirthDate     *time.Time       `db:"birth_date" json:"birth_date,omitempty"`
	PhoneMobile   *string          `db:"phone_mobile" json:"phone_mobile,omitempty"`
	Email         *string          `db:"email" json:"email,omitempty"`
	Procedure     string           `db:"procedure" json:"procedure"`
	DischargeDate time.Time        `db:"discharge_date" json:"discharge_date"`
	WardTeam      *string          `db:"ward_team" json:"ward_team,omitempty"`
	Status        MonitoringStatus `db:"status" json:"status"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}
