package trend

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

// Service runs trend analysis over a patient's stored reading window.
type Service struct {
	baselineDays int
	logger       zerolog.Logger
}

// NewService builds a trend analyzer using the given baseline length in
// days. A non-positive value falls back to BaselineDays.
func NewService(baselineDays int, logger zerolog.Logger) *Service {
	if baselineDays <= 0 {
		baselineDays = BaselineDays
	}
	return &Service{baselineDays: baselineDays, logger: logger}
}

// Report analyzes every tracked metric over the patient's trailing window.
// Metrics with insufficient history are omitted from the result set.
func (s *Service) Report(ctx context.Context, patientID uuid.UUID, readings []wearable.Reading) []Result {
	var results []Result
	for _, metric := range wearable.TrackedMetrics() {
		r, ok := Analyze(readings, metric, s.baselineDays)
		if !ok {
			continue
		}
		results = append(results, *r)
		if r.Status == StatusConcerning || r.Status == StatusCritical {
			s.logger.Info().
				Str("patient_id", patientID.String()).
				Str("metric", string(r.Metric)).
				Str("status", string(r.Status)).
				Float64("percent_change", r.PercentChange).
				Msg("trend deviation detected")
		}
	}
	return results
}
