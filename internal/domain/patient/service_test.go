package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo { return &mockRepo{patients: make(map[uuid.UUID]*Patient)} }

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}
func (m *mockRepo) GetByMRN(_ context.Context, mrn string) (*Patient, error) {
	for _, p := range m.patients {
		if p.MRN == mrn {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}
func (m *mockRepo) List(_ context.Context, status MonitoringStatus, _, _ int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func validPatient() *Patient {
	return &Patient{
		MRN:           "MRN-1001",
		FirstName:     "Margaret",
		LastName:      "Okafor",
		Procedure:     "CABG",
		DischargeDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEnrollDefaultsToActive(t *testing.T) {
	svc := NewService(newMockRepo())

	p := validPatient()
	if err := svc.Enroll(context.Background(), p); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if p.Status != StatusActive {
		t.Errorf("expected active status, got %s", p.Status)
	}
	if p.ID == uuid.Nil {
		t.Error("expected an assigned id")
	}
}

func TestEnrollValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Patient)
	}{
		{"missing name", func(p *Patient) { p.FirstName = "" }},
		{"missing mrn", func(p *Patient) { p.MRN = "" }},
		{"missing discharge date", func(p *Patient) { p.DischargeDate = time.Time{} }},
	}
	for _, tc := range cases {
		p := validPatient()
		tc.mutate(p)
		if err := svc.Enroll(ctx, p); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestSetStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	p := validPatient()
	if err := svc.Enroll(ctx, p); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	updated, err := svc.SetStatus(ctx, p.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}

	if _, err := svc.SetStatus(ctx, p.ID, "archived"); err == nil {
		t.Error("expected error for invalid status")
	}
	if _, err := svc.SetStatus(ctx, uuid.New(), StatusPaused); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByMRN(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	p := validPatient()
	if err := svc.Enroll(ctx, p); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	got, err := svc.GetByMRN(ctx, "MRN-1001")
	if err != nil {
		t.Fatalf("get by mrn: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("expected %s, got %s", p.ID, got.ID)
	}
}
