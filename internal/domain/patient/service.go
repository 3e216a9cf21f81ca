package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

// Enroll registers a discharged patient into the monitoring program.
func (s *Service) Enroll(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.DischargeDate.IsZero() {
		return fmt.Errorf("discharge_date is required")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return s.patients.GetByMRN(ctx, mrn)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return s.patients.Update(ctx, p)
}

// SetStatus moves the patient between monitoring states. Completed patients
// keep their history but stop being evaluated.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status MonitoringStatus) (*Patient, error) {
	switch status {
	case StatusActive, StatusPaused, StatusCompleted:
	default:
		return nil, fmt.Errorf("invalid status %q", status)
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, status MonitoringStatus, limit, offset int) ([]*Patient, int, error) {
	if status != "" {
		switch status {
		case StatusActive, StatusPaused, StatusCompleted:
		default:
			return nil, 0, fmt.Errorf("invalid status %q", status)
		}
	}
	return s.patients.List(ctx, status, limit, offset)
}
