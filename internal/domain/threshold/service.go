package threshold

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

type Service struct {
	overrides OverrideRepository
}

func NewService(overrides OverrideRepository) *Service {
	return &Service{overrides: overrides}
}

// BandsFor returns the effective band set for a patient: the clinical
// defaults with any clinician overrides applied on top. Lookups are always
// patient-scoped; there is no global mutable threshold state.
func (s *Service) BandsFor(ctx context.Context, patientID uuid.UUID) (Bands, error) {
	bands := Defaults()
	overrides, err := s.overrides.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load threshold overrides: %w", err)
	}
	for _, o := range overrides {
		bands[o.Metric] = o.band()
	}
	return bands, nil
}

// CheckReading evaluates one reading against the patient's effective bands.
func (s *Service) CheckReading(ctx context.Context, reading *wearable.Reading) ([]MetricAlert, error) {
	bands, err := s.BandsFor(ctx, reading.PatientID)
	if err != nil {
		return nil, err
	}
	return Check(reading, bands), nil
}

// SetOverride validates and stores a clinician threshold override.
func (s *Service) SetOverride(ctx context.Context, o *Override) error {
	if o.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if o.Metric == "" {
		return fmt.Errorf("metric is required")
	}
	if err := validateBand(o.Metric, o.band()); err != nil {
		return err
	}
	return s.overrides.Upsert(ctx, o)
}

// ListOverrides returns the patient's configured overrides.
func (s *Service) ListOverrides(ctx context.Context, patientID uuid.UUID) ([]*Override, error) {
	return s.overrides.ListByPatient(ctx, patientID)
}

// ClearOverride removes a patient's override, restoring the default band.
func (s *Service) ClearOverride(ctx context.Context, patientID uuid.UUID, metric wearable.Metric) error {
	return s.overrides.Delete(ctx, patientID, metric)
}

// validateBand enforces ordering between bounds plus the per-metric sanity
// invariants clinicians rely on.
func validateBand(metric wearable.Metric, b Band) error {
	if b.CriticalLow == nil && b.Low == nil && b.High == nil && b.CriticalHigh == nil {
		return fmt.Errorf("band has no bounds")
	}
	if b.CriticalLow != nil && b.Low != nil && *b.CriticalLow >= *b.Low {
		return fmt.Errorf("critical_low must be below low")
	}
	if b.High != nil && b.CriticalHigh != nil && *b.High >= *b.CriticalHigh {
		return fmt.Errorf("high must be below critical_high")
	}
	if b.Low != nil && b.High != nil && *b.Low >= *b.High {
		return fmt.Errorf("low must be below high")
	}

	switch metric {
	case wearable.MetricBloodOxygen:
		// SpO2 bounds outside (80, 100) are physiologically implausible and
		// almost certainly a data-entry mistake.
		for _, bound := range []*float64{b.CriticalLow, b.Low} {
			if bound != nil && (*bound <= 80 || *bound >= 100) {
				return fmt.Errorf("blood_oxygen bounds must lie between 80 and 100")
			}
		}
	case wearable.MetricSleepDuration:
		for _, bound := range []*float64{b.CriticalLow, b.Low} {
			if bound != nil && *bound <= 0 {
				return fmt.Errorf("sleep_duration bounds must be greater than 0")
			}
		}
	}
	return nil
}
