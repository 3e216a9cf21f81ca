package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulseward/pulseward/internal/domain/alerts"
	"github.com/pulseward/pulseward/internal/domain/threshold"
	"github.com/pulseward/pulseward/internal/domain/trend"
	"github.com/pulseward/pulseward/internal/domain/wearable"
)

type mockReadingRepo struct {
	readings []wearable.Reading
}

func (m *mockReadingRepo) Create(_ context.Context, r *wearable.Reading) error {
	m.readings = append(m.readings, *r)
	return nil
}
func (m *mockReadingRepo) Window(_ context.Context, patientID uuid.UUID, since time.Time) ([]wearable.Reading, error) {
	var out []wearable.Reading
	for _, r := range m.readings {
		if r.PatientID == patientID && !r.RecordedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *mockReadingRepo) Latest(_ context.Context, patientID uuid.UUID) (*wearable.Reading, error) {
	for i := len(m.readings) - 1; i >= 0; i-- {
		if m.readings[i].PatientID == patientID {
			return &m.readings[i], nil
		}
	}
	return nil, wearable.ErrNotFound
}
func (m *mockReadingRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]wearable.Reading, int, error) {
	return m.readings, len(m.readings), nil
}

type mockOverrideRepo struct{}

func (mockOverrideRepo) Upsert(_ context.Context, _ *threshold.Override) error { return nil }
func (mockOverrideRepo) ListByPatient(_ context.Context, _ uuid.UUID) ([]*threshold.Override, error) {
	return nil, nil
}
func (mockOverrideRepo) Delete(_ context.Context, _ uuid.UUID, _ wearable.Metric) error { return nil }

type mockAlertRepo struct {
	alerts map[uuid.UUID]*alerts.Alert
}

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{alerts: make(map[uuid.UUID]*alerts.Alert)}
}

func (m *mockAlertRepo) Create(_ context.Context, a *alerts.Alert) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	cp := *a
	m.alerts[a.ID] = &cp
	return nil
}
func (m *mockAlertRepo) GetByID(_ context.Context, id uuid.UUID) (*alerts.Alert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, alerts.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
func (m *mockAlertRepo) FindOpenByCause(_ context.Context, patientID uuid.UUID, causeKey string) (*alerts.Alert, error) {
	for _, a := range m.alerts {
		if a.PatientID == patientID && a.CauseKey == causeKey && a.ResolvedAt == nil {
			cp := *a
			return &cp, nil
		}
	}
	return nil, alerts.ErrNotFound
}
func (m *mockAlertRepo) ListByPatient(_ context.Context, _ uuid.UUID, _ bool, _, _ int) ([]*alerts.Alert, int, error) {
	return nil, 0, nil
}
func (m *mockAlertRepo) ListOpen(_ context.Context, _ alerts.Severity, _, _ int) ([]*alerts.Alert, int, error) {
	return nil, 0, nil
}
func (m *mockAlertRepo) OpenSeverities(_ context.Context, patientID uuid.UUID) ([]alerts.Severity, error) {
	seen := make(map[alerts.Severity]bool)
	var out []alerts.Severity
	for _, a := range m.alerts {
		if a.PatientID == patientID && a.ResolvedAt == nil && !seen[a.Severity] {
			seen[a.Severity] = true
			out = append(out, a.Severity)
		}
	}
	return out, nil
}
func (m *mockAlertRepo) Resolve(_ context.Context, id uuid.UUID, by string, at time.Time) error {
	a, ok := m.alerts[id]
	if !ok || a.ResolvedAt != nil {
		return alerts.ErrNotFound
	}
	a.ResolvedAt = &at
	a.ResolvedBy = &by
	return nil
}
func (m *mockAlertRepo) UpdateObserved(_ context.Context, id uuid.UUID, severity alerts.Severity, headline, description string) error {
	a, ok := m.alerts[id]
	if !ok || a.ResolvedAt != nil {
		return alerts.ErrNotFound
	}
	a.Severity = severity
	a.Headline = headline
	a.Description = description
	return nil
}

func (m *mockAlertRepo) Unresolve(_ context.Context, id uuid.UUID) error { return nil }
func (m *mockAlertRepo) Stats(_ context.Context) (*alerts.Stats, error) {
	return &alerts.Stats{}, nil
}

func newPipeline() (*Service, *mockReadingRepo, *alerts.Service) {
	readings := &mockReadingRepo{}
	alertSvc := alerts.NewService(newMockAlertRepo(), nil, zerolog.Nop())
	svc := NewService(
		wearable.NewService(readings, 0),
		trend.NewService(0, zerolog.Nop()),
		threshold.NewService(mockOverrideRepo{}),
		alertSvc,
		zerolog.Nop(),
	)
	return svc, readings, alertSvc
}

func f(v float64) *float64 { return &v }

// seedDays appends one reading per day ending today, with the given resting
// heart rates in order.
func seedDays(repo *mockReadingRepo, patientID uuid.UUID, heartRates []float64) {
	start := time.Now().AddDate(0, 0, -(len(heartRates) - 1))
	for i, hr := range heartRates {
		repo.readings = append(repo.readings, wearable.Reading{
			ID:               uuid.New(),
			PatientID:        patientID,
			RecordedAt:       start.AddDate(0, 0, i),
			RestingHeartRate: f(hr),
		})
	}
}

func TestEvaluateNoReadingsIsGreen(t *testing.T) {
	svc, _, _ := newPipeline()

	report, err := svc.Evaluate(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.TriageLevel != alerts.TriageGreen {
		t.Errorf("expected green, got %s", report.TriageLevel)
	}
	if len(report.Trends) != 0 || len(report.NewAlerts) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestEvaluateStablePatientStaysGreen(t *testing.T) {
	svc, readings, _ := newPipeline()
	patientID := uuid.New()
	seedDays(readings, patientID, []float64{62, 61, 63, 62, 60, 61, 62, 62, 61, 63})

	report, err := svc.Evaluate(context.Background(), patientID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.TriageLevel != alerts.TriageGreen {
		t.Errorf("expected green, got %s", report.TriageLevel)
	}
	if len(report.Trends) != 1 {
		t.Fatalf("expected 1 trend result, got %d", len(report.Trends))
	}
	if report.Trends[0].Status != trend.StatusNormal {
		t.Errorf("expected normal trend, got %s", report.Trends[0].Status)
	}
}

func TestEvaluateTrendDeteriorationGoesRed(t *testing.T) {
	svc, readings, _ := newPipeline()
	patientID := uuid.New()
	// A week at 60 bpm, then a jump to 75: +25% over baseline.
	seedDays(readings, patientID, []float64{60, 60, 60, 60, 60, 60, 60, 75})

	report, err := svc.Evaluate(context.Background(), patientID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.TriageLevel != alerts.TriageRed {
		t.Errorf("expected red, got %s", report.TriageLevel)
	}
	if len(report.NewAlerts) != 1 {
		t.Fatalf("expected 1 new alert, got %d", len(report.NewAlerts))
	}
	a := report.NewAlerts[0]
	if a.Source != alerts.SourceTrend || a.CauseKey != "trend:resting_heart_rate" {
		t.Errorf("unexpected alert %+v", a)
	}
}

func TestEvaluateThresholdBreachGoesRed(t *testing.T) {
	svc, readings, _ := newPipeline()
	patientID := uuid.New()
	// Too little history for trend analysis; the latest reading breaches
	// the critical heart-rate threshold outright.
	seedDays(readings, patientID, []float64{80, 82, 125})

	report, err := svc.Evaluate(context.Background(), patientID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.TriageLevel != alerts.TriageRed {
		t.Errorf("expected red, got %s", report.TriageLevel)
	}
	if len(report.Trends) != 0 {
		t.Errorf("expected no trend results with 3 samples, got %d", len(report.Trends))
	}
	if len(report.ThresholdAlerts) != 1 || report.ThresholdAlerts[0].Severity != threshold.SeverityCritical {
		t.Fatalf("expected 1 critical threshold alert, got %+v", report.ThresholdAlerts)
	}
	if len(report.NewAlerts) != 1 || report.NewAlerts[0].CauseKey != "threshold:resting_heart_rate" {
		t.Errorf("unexpected alerts %+v", report.NewAlerts)
	}
}

func TestEvaluateWarningBreachGoesAmber(t *testing.T) {
	svc, readings, _ := newPipeline()
	patientID := uuid.New()
	seedDays(readings, patientID, []float64{85, 88, 105})

	report, err := svc.Evaluate(context.Background(), patientID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.TriageLevel != alerts.TriageAmber {
		t.Errorf("expected amber, got %s", report.TriageLevel)
	}
}

func TestEvaluateRepeatDoesNotDuplicate(t *testing.T) {
	svc, readings, _ := newPipeline()
	ctx := context.Background()
	patientID := uuid.New()
	seedDays(readings, patientID, []float64{80, 82, 125})

	first, err := svc.Evaluate(ctx, patientID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(first.NewAlerts) != 1 {
		t.Fatalf("expected 1 new alert, got %d", len(first.NewAlerts))
	}

	second, err := svc.Evaluate(ctx, patientID)
	if err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	if len(second.NewAlerts) != 0 {
		t.Errorf("persisting condition must not duplicate alerts, got %d", len(second.NewAlerts))
	}
	if second.TriageLevel != alerts.TriageRed {
		t.Errorf("triage should stay red, got %s", second.TriageLevel)
	}
}

func TestEvaluateRecurrenceAfterResolve(t *testing.T) {
	svc, readings, alertSvc := newPipeline()
	ctx := context.Background()
	patientID := uuid.New()
	seedDays(readings, patientID, []float64{80, 82, 125})

	first, err := svc.Evaluate(ctx, patientID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, err := alertSvc.Resolve(ctx, first.NewAlerts[0].ID, "nurse-1"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	second, err := svc.Evaluate(ctx, patientID)
	if err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	if len(second.NewAlerts) != 1 {
		t.Errorf("condition still present after resolve should re-alert, got %d", len(second.NewAlerts))
	}
}
