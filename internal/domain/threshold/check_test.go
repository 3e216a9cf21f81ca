package threshold

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

func f(v float64) *float64 { return &v }

func reading(mutate func(r *wearable.Reading)) *wearable.Reading {
	r := &wearable.Reading{
		ID:         uuid.New(),
		PatientID:  uuid.New(),
		RecordedAt: time.Date(2026, 2, 10, 7, 30, 0, 0, time.UTC),
	}
	mutate(r)
	return r
}

func TestCheck_CriticalSupersedesWarning(t *testing.T) {
	// SpO2 of 89 breaches both the warning (≤94) and critical (≤90) bounds;
	// only the critical alert may be emitted.
	r := reading(func(r *wearable.Reading) { r.BloodOxygen = f(89) })

	alerts := Check(r, Defaults())
	if len(alerts) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d: %+v", len(alerts), alerts)
	}
	if alerts[0].Severity != SeverityCritical {
		t.Errorf("severity = %s, want critical", alerts[0].Severity)
	}
	if alerts[0].Metric != wearable.MetricBloodOxygen {
		t.Errorf("metric = %s, want blood_oxygen", alerts[0].Metric)
	}
	if alerts[0].ThresholdValue != 90 {
		t.Errorf("threshold value = %v, want 90", alerts[0].ThresholdValue)
	}
	if alerts[0].ActualValue != 89 {
		t.Errorf("actual value = %v, want 89", alerts[0].ActualValue)
	}
}

func TestCheck_WarningBand(t *testing.T) {
	r := reading(func(r *wearable.Reading) { r.BloodOxygen = f(93) })

	alerts := Check(r, Defaults())
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Severity != SeverityWarning {
		t.Errorf("severity = %s, want warning", alerts[0].Severity)
	}
}

func TestCheck_HighBands(t *testing.T) {
	tests := []struct {
		name  string
		hr    float64
		count int
		sev   Severity
	}{
		{"normal", 72, 0, ""},
		{"warning high", 105, 1, SeverityWarning},
		{"critical high", 130, 1, SeverityCritical},
		{"exactly at critical", 120, 1, SeverityCritical},
	}
	for _, tt := range tests {
		r := reading(func(r *wearable.Reading) { r.RestingHeartRate = f(tt.hr) })
		alerts := Check(r, Defaults())
		if len(alerts) != tt.count {
			t.Errorf("%s: got %d alerts, want %d", tt.name, len(alerts), tt.count)
			continue
		}
		if tt.count == 1 && alerts[0].Severity != tt.sev {
			t.Errorf("%s: severity = %s, want %s", tt.name, alerts[0].Severity, tt.sev)
		}
	}
}

func TestCheck_NoHistoryNeeded(t *testing.T) {
	// A single reading with no baseline at all still triggers.
	r := reading(func(r *wearable.Reading) {
		r.HeartRateVar = f(8)
		r.SleepHours = f(2.5)
	})

	alerts := Check(r, Defaults())
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts (HRV + sleep), got %d", len(alerts))
	}
	for _, a := range alerts {
		if a.Severity != SeverityCritical {
			t.Errorf("%s severity = %s, want critical", a.Metric, a.Severity)
		}
		if !a.DetectedAt.Equal(r.RecordedAt) {
			t.Errorf("%s detected_at = %v, want reading time", a.Metric, a.DetectedAt)
		}
	}
}

func TestCheck_MissingMetricsSkipped(t *testing.T) {
	r := reading(func(r *wearable.Reading) { r.Steps = func(v int) *int { return &v }(120) })
	if alerts := Check(r, Defaults()); len(alerts) != 0 {
		t.Errorf("expected no alerts for a metric without bands, got %+v", alerts)
	}
}

type mockOverrideRepo struct {
	store map[uuid.UUID]map[wearable.Metric]*Override
}

func newMockOverrideRepo() *mockOverrideRepo {
	return &mockOverrideRepo{store: make(map[uuid.UUID]map[wearable.Metric]*Override)}
}
func (m *mockOverrideRepo) Upsert(_ context.Context, o *Override) error {
	if m.store[o.PatientID] == nil {
		m.store[o.PatientID] = make(map[wearable.Metric]*Override)
	}
	m.store[o.PatientID][o.Metric] = o
	return nil
}
func (m *mockOverrideRepo) ListByPatient(_ context.Context, pid uuid.UUID) ([]*Override, error) {
	var out []*Override
	for _, o := range m.store[pid] {
		out = append(out, o)
	}
	return out, nil
}
func (m *mockOverrideRepo) Delete(_ context.Context, pid uuid.UUID, metric wearable.Metric) error {
	delete(m.store[pid], metric)
	return nil
}

func TestBandsFor_OverridesArePatientScoped(t *testing.T) {
	repo := newMockOverrideRepo()
	svc := NewService(repo)
	alice, bob := uuid.New(), uuid.New()

	err := svc.SetOverride(context.Background(), &Override{
		PatientID:    alice,
		Metric:       wearable.MetricRestingHeartRate,
		High:         f(90),
		CriticalHigh: f(110),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	aliceBands, err := svc.BandsFor(context.Background(), alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *aliceBands[wearable.MetricRestingHeartRate].High != 90 {
		t.Errorf("alice high = %v, want 90", *aliceBands[wearable.MetricRestingHeartRate].High)
	}

	bobBands, err := svc.BandsFor(context.Background(), bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *bobBands[wearable.MetricRestingHeartRate].High != 100 {
		t.Errorf("bob high = %v, want default 100", *bobBands[wearable.MetricRestingHeartRate].High)
	}
}

func TestSetOverride_Validation(t *testing.T) {
	svc := NewService(newMockOverrideRepo())
	pid := uuid.New()

	tests := []struct {
		name string
		o    Override
	}{
		{"empty band", Override{PatientID: pid, Metric: wearable.MetricRestingHeartRate}},
		{"inverted bounds", Override{PatientID: pid, Metric: wearable.MetricRestingHeartRate, High: f(120), CriticalHigh: f(100)}},
		{"spo2 below sanity floor", Override{PatientID: pid, Metric: wearable.MetricBloodOxygen, CriticalLow: f(75), Low: f(94)}},
		{"spo2 at 100", Override{PatientID: pid, Metric: wearable.MetricBloodOxygen, CriticalLow: f(90), Low: f(100)}},
		{"sleep bound of zero", Override{PatientID: pid, Metric: wearable.MetricSleepDuration, CriticalLow: f(0), Low: f(5)}},
		{"missing metric", Override{PatientID: pid, Low: f(5)}},
	}
	for _, tt := range tests {
		if err := svc.SetOverride(context.Background(), &tt.o); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestClearOverride_RestoresDefaults(t *testing.T) {
	repo := newMockOverrideRepo()
	svc := NewService(repo)
	pid := uuid.New()

	if err := svc.SetOverride(context.Background(), &Override{
		PatientID: pid, Metric: wearable.MetricBloodOxygen, Low: f(92), CriticalLow: f(88),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ClearOverride(context.Background(), pid, wearable.MetricBloodOxygen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bands, _ := svc.BandsFor(context.Background(), pid)
	if *bands[wearable.MetricBloodOxygen].Low != 94 {
		t.Errorf("low = %v, want default 94 after clear", *bands[wearable.MetricBloodOxygen].Low)
	}
}
