package wearable

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultWindowDays is how far back the engine looks when a caller does not
// specify a window.
const DefaultWindowDays = 30

type Service struct {
	readings   ReadingRepository
	windowDays int
}

// NewService builds a reading service whose default window is windowDays.
// A non-positive value falls back to DefaultWindowDays.
func NewService(readings ReadingRepository, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Service{readings: readings, windowDays: windowDays}
}

// Record appends a reading to the patient's series. A reading with no metrics
// at all is rejected; individual missing metrics are fine.
func (s *Service) Record(ctx context.Context, r *Reading) error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if r.RecordedAt.IsZero() {
		return fmt.Errorf("recorded_at is required")
	}
	hasAny := false
	for _, m := range TrackedMetrics() {
		if _, ok := r.Value(m); ok {
			hasAny = true
			break
		}
	}
	if !hasAny {
		return fmt.Errorf("reading carries no metrics")
	}
	return s.readings.Create(ctx, r)
}

// Window returns the patient's ordered readings for the trailing number of
// days. The service's configured window applies when days <= 0.
func (s *Service) Window(ctx context.Context, patientID uuid.UUID, days int) ([]Reading, error) {
	if days <= 0 {
		days = s.windowDays
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.readings.Window(ctx, patientID, since)
}

// Latest returns the patient's most recent reading.
func (s *Service) Latest(ctx context.Context, patientID uuid.UUID) (*Reading, error) {
	return s.readings.Latest(ctx, patientID)
}

// List returns the patient's readings newest-first for display.
func (s *Service) List(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Reading, int, error) {
	return s.readings.ListByPatient(ctx, patientID, limit, offset)
}
