package evaluation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulseward/pulseward/internal/domain/alerts"
	"github.com/pulseward/pulseward/internal/domain/threshold"
	"github.com/pulseward/pulseward/internal/domain/trend"
	"github.com/pulseward/pulseward/internal/domain/wearable"
)

// Report is the outcome of one full evaluation pass over a patient.
type Report struct {
	PatientID       uuid.UUID               `json:"patient_id"`
	TriageLevel     alerts.TriageLevel      `json:"triage_level"`
	Trends          []trend.Result          `json:"trends"`
	ThresholdAlerts []threshold.MetricAlert `json:"threshold_alerts"`
	NewAlerts       []*alerts.Alert         `json:"new_alerts"`
}

// MetricsRecorder receives pipeline outcome counts.
type MetricsRecorder interface {
	EvaluationCompleted(triageLevel string)
}

// Service runs the evaluation pipeline: load the reading window, analyze
// trends against the discharge baseline, check the latest reading against
// thresholds, feed the findings into the alert lifecycle, and derive the
// patient's triage level from whatever is open afterwards.
type Service struct {
	readings   *wearable.Service
	trends     *trend.Service
	thresholds *threshold.Service
	alerts     *alerts.Service
	metrics    MetricsRecorder
	logger     zerolog.Logger
}

func NewService(readings *wearable.Service, trends *trend.Service, thresholds *threshold.Service, alertSvc *alerts.Service, logger zerolog.Logger) *Service {
	return &Service{
		readings:   readings,
		trends:     trends,
		thresholds: thresholds,
		alerts:     alertSvc,
		logger:     logger.With().Str("component", "evaluation").Logger(),
	}
}

// SetMetrics attaches an optional metrics recorder.
func (s *Service) SetMetrics(m MetricsRecorder) { s.metrics = m }

// Evaluate runs the full pipeline for one patient. A patient with no
// readings yields an empty report at triage green rather than an error:
// absence of data is not a clinical finding.
func (s *Service) Evaluate(ctx context.Context, patientID uuid.UUID) (*Report, error) {
	report := &Report{PatientID: patientID, TriageLevel: alerts.TriageGreen}

	// Zero days tells the reading service to use its configured window.
	window, err := s.readings.Window(ctx, patientID, 0)
	if err != nil {
		return nil, fmt.Errorf("load reading window: %w", err)
	}

	if len(window) > 0 {
		report.Trends = s.trends.Report(ctx, patientID, window)

		latest := &window[len(window)-1]
		report.ThresholdAlerts, err = s.thresholds.CheckReading(ctx, latest)
		if err != nil {
			return nil, fmt.Errorf("check thresholds: %w", err)
		}
	}

	for _, c := range s.candidates(patientID, report) {
		a, created, err := s.alerts.Ingest(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("ingest alert: %w", err)
		}
		if created {
			report.NewAlerts = append(report.NewAlerts, a)
		}
	}

	report.TriageLevel, err = s.alerts.TriageFor(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("derive triage level: %w", err)
	}

	if s.metrics != nil {
		s.metrics.EvaluationCompleted(string(report.TriageLevel))
	}

	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("triage_level", string(report.TriageLevel)).
		Int("new_alerts", len(report.NewAlerts)).
		Msg("evaluation completed")
	return report, nil
}

// candidates converts this pass's findings into alert candidates. Trend
// deviations and threshold breaches each key on their metric, so a condition
// that persists across daily evaluations folds into its open alert.
func (s *Service) candidates(patientID uuid.UUID, report *Report) []alerts.Candidate {
	var out []alerts.Candidate

	for _, t := range report.Trends {
		var severity alerts.Severity
		switch t.Status {
		case trend.StatusCritical:
			severity = alerts.SeverityRed
		case trend.StatusConcerning:
			severity = alerts.SeverityAmber
		default:
			continue
		}
		out = append(out, alerts.Candidate{
			PatientID: patientID,
			Severity:  severity,
			Source:    alerts.SourceTrend,
			CauseKey:  fmt.Sprintf("trend:%s", t.Metric),
			Headline:  fmt.Sprintf("%s trending %s vs baseline", t.Metric, t.Direction),
			Description: fmt.Sprintf("%s changed %.1f%% from the discharge baseline (z-score %.2f).",
				t.Metric, t.PercentChange, t.ZScore),
		})
	}

	for _, ta := range report.ThresholdAlerts {
		severity := alerts.SeverityAmber
		if ta.Severity == threshold.SeverityCritical {
			severity = alerts.SeverityRed
		}
		out = append(out, alerts.Candidate{
			PatientID:   patientID,
			Severity:    severity,
			Source:      alerts.SourceThreshold,
			CauseKey:    fmt.Sprintf("threshold:%s", ta.Metric),
			Headline:    ta.Message,
			Description: fmt.Sprintf("Latest reading %g breached the configured threshold %g.", ta.ActualValue, ta.ThresholdValue),
		})
	}
	return out
}
