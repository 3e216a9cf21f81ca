package checkin

import (
	"time"

	"github.com/google/uuid"
)

// FlowType identifies one conversational flow. The normal flow is the daily
// check-in; the others are dedicated sub-flows entered via escalation or
// quick actions.
type FlowType string

const (
	FlowNormal      FlowType = "normal"
	FlowConcern     FlowType = "concern"
	FlowUrgent      FlowType = "urgent"
	FlowRefill      FlowType = "refill"
	FlowCall        FlowType = "call"
	FlowComplaint   FlowType = "complaint"
	FlowSideEffect  FlowType = "side_effect"
	FlowAppointment FlowType = "appointment"
	FlowAmbulance   FlowType = "ambulance"
)

// OptionID is the canonical identifier of a multiple-choice answer. Control
// flow dispatches on these identifiers, never on display text: labels are a
// presentation concern and may be reworded freely.
type OptionID string

const (
	// Wellbeing answers.
	OptFeelingGood   OptionID = "feeling_good"
	OptFeelingOkay   OptionID = "feeling_okay"
	OptFeelingUnwell OptionID = "feeling_unwell"

	// Symptom-screen answers.
	OptChestPain       OptionID = "chest_pain"
	OptBreathlessRest  OptionID = "breathless_at_rest"
	OptFainting        OptionID = "fainting"
	OptAnkleSwelling   OptionID = "ankle_swelling"
	OptNoneOfThese     OptionID = "none_of_these"

	// Medication answers.
	OptMedsTakenAll   OptionID = "meds_taken_all"
	OptMedsMissedDose OptionID = "meds_missed_dose"

	// Quick actions: selecting one preempts the current flow.
	OptCallAmbulance    OptionID = "call_ambulance"
	OptRequestRefill    OptionID = "request_refill"
	OptRequestCall      OptionID = "request_call"
	OptReportComplaint  OptionID = "report_complaint"
	OptReportSideEffect OptionID = "report_side_effect"
	OptBookAppointment  OptionID = "book_appointment"

	// Acknowledged-only answers.
	OptReportSyncIssue OptionID = "report_sync_issue"

	// Sub-flow answers.
	OptSinceToday         OptionID = "since_today"
	OptFewDays            OptionID = "few_days"
	OptWeekOrMore         OptionID = "week_or_more"
	OptMedHeart           OptionID = "med_heart"
	OptMedBloodThinner    OptionID = "med_blood_thinner"
	OptMedOther           OptionID = "med_other"
	OptTimeMorning        OptionID = "time_morning"
	OptTimeAfternoon      OptionID = "time_afternoon"
	OptTimeEvening        OptionID = "time_evening"
	OptComplaintCare      OptionID = "complaint_care"
	OptComplaintDevice    OptionID = "complaint_device"
	OptComplaintOther     OptionID = "complaint_other"
	OptSideEffectDizzy    OptionID = "side_effect_dizziness"
	OptSideEffectNausea   OptionID = "side_effect_nausea"
	OptSideEffectOther    OptionID = "side_effect_other"
	OptApptCheckup        OptionID = "appt_checkup"
	OptApptCardiology     OptionID = "appt_cardiology"
)

// Option is one selectable answer on a step.
type Option struct {
	ID    OptionID `json:"id"`
	Label string   `json:"label"`
}

// Step is one prompt in a flow. Steps without options expect acknowledgement
// only and are typically terminal.
type Step struct {
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options,omitempty"`
}

// Role distinguishes the two sides of the transcript.
type Role string

const (
	RolePatient   Role = "patient"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role     Role      `json:"role"`
	Body     string    `json:"body"`
	OptionID OptionID  `json:"option_id,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

// State is the conversation position of one active check-in session. Each
// State is owned by exactly one conversation; callers serialize updates per
// patient.
type State struct {
	PatientID uuid.UUID `json:"patient_id"`
	Flow      FlowType  `json:"flow"`
	Step      int       `json:"step"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
	History   []Message `json:"history"`
}

// TriageSignal is the escalation level a flow transition emits.
type TriageSignal string

const (
	SignalRed   TriageSignal = "red"
	SignalAmber TriageSignal = "amber"
)

// Escalation is emitted when a symptom answer moves the conversation into
// the urgent or concern flow. The alert lifecycle converts it into an Alert.
type Escalation struct {
	Signal      TriageSignal `json:"signal"`
	Cause       string       `json:"cause"`
	Headline    string       `json:"headline"`
	Description string       `json:"description"`
}

// Reply is the engine's answer to one patient input.
type Reply struct {
	Flow        FlowType    `json:"flow"`
	Step        int         `json:"step"`
	Prompt      Step        `json:"prompt"`
	Terminal    bool        `json:"terminal"`
	FreeTextAck bool        `json:"free_text_ack"`
	Escalation  *Escalation `json:"escalation,omitempty"`
}

// Transcript maps to the checkin_transcript table: the persisted record of a
// completed session.
type Transcript struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Flow        FlowType  `db:"flow" json:"flow"`
	StartedAt   time.Time `db:"started_at" json:"started_at"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
	Messages    []Message `db:"messages" json:"messages"`
}
