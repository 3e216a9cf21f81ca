package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Candidate is a detected condition that may become an alert. Ingest decides
// whether it opens a new alert or collapses into an existing open one.
type Candidate struct {
	PatientID   uuid.UUID `json:"patient_id"`
	Severity    Severity  `json:"severity"`
	Source      Source    `json:"source"`
	CauseKey    string    `json:"cause_key"`
	Headline    string    `json:"headline"`
	Description string    `json:"description"`
}

// EventPublisher fans alert transitions out to connected dashboards. The
// websocket hub satisfies it via an adapter wired in main.
type EventPublisher interface {
	AlertRaised(a *Alert)
	AlertResolved(a *Alert)
}

// NopPublisher discards events; used when no hub is attached.
type NopPublisher struct{}

func (NopPublisher) AlertRaised(*Alert)   {}
func (NopPublisher) AlertResolved(*Alert) {}

// Service owns the alert lifecycle. Ingest is linearized per patient so that
// concurrent evaluations of the same patient cannot race past the open-alert
// dedup check and create duplicates.
type Service struct {
	repo      Repository
	publisher EventPublisher
	logger    zerolog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(repo Repository, publisher EventPublisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "alerts").Logger(),
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Service) patientLock(patientID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[patientID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[patientID] = lock
	}
	return lock
}

// Ingest records a candidate condition. When the patient already has an open
// alert for the same cause key the existing alert is returned unchanged and
// created is false; a condition only raises a fresh alert after the previous
// one was resolved.
func (s *Service) Ingest(ctx context.Context, c Candidate) (alert *Alert, created bool, err error) {
	if c.PatientID == uuid.Nil || c.CauseKey == "" {
		return nil, false, fmt.Errorf("patient_id and cause_key are required")
	}
	if c.Severity != SeverityRed && c.Severity != SeverityAmber {
		return nil, false, fmt.Errorf("invalid severity %q", c.Severity)
	}

	lock := s.patientLock(c.PatientID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.FindOpenByCause(ctx, c.PatientID, c.CauseKey)
	if err == nil {
		// Recurrence of an open condition; fold the latest observation
		// into the existing alert instead of duplicating it.
		if err := s.repo.UpdateObserved(ctx, existing.ID, c.Severity, c.Headline, c.Description); err != nil {
			return nil, false, fmt.Errorf("update open alert: %w", err)
		}
		existing.Severity = c.Severity
		existing.Headline = c.Headline
		existing.Description = c.Description
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	a := &Alert{
		PatientID:   c.PatientID,
		Severity:    c.Severity,
		Source:      c.Source,
		CauseKey:    c.CauseKey,
		Headline:    c.Headline,
		Description: c.Description,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, false, fmt.Errorf("create alert: %w", err)
	}

	s.publisher.AlertRaised(a)
	s.logger.Warn().
		Str("patient_id", c.PatientID.String()).
		Str("severity", string(c.Severity)).
		Str("cause_key", c.CauseKey).
		Msg("alert raised")
	return a, true, nil
}

// Resolve closes an alert. Resolving an already-resolved alert is a no-op
// that returns the alert as-is, so double-clicks and retries are safe.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, by string) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Resolved() {
		return a, nil
	}

	now := time.Now().UTC()
	if err := s.repo.Resolve(ctx, id, by, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost a race to another resolver; fetch the final state.
			return s.repo.GetByID(ctx, id)
		}
		return nil, err
	}
	a.ResolvedAt = &now
	a.ResolvedBy = &by

	s.publisher.AlertResolved(a)
	s.logger.Info().
		Str("alert_id", id.String()).
		Str("resolved_by", by).
		Msg("alert resolved")
	return a, nil
}

// Unresolve reverses a resolution, typically after a mistaken dismissal.
// Unresolving an alert that is already open is a no-op, mirroring Resolve.
func (s *Service) Unresolve(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Resolved() {
		return a, nil
	}
	if err := s.repo.Unresolve(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost a race to another caller; fetch the final state.
			return s.repo.GetByID(ctx, id)
		}
		return nil, err
	}
	a.ResolvedAt = nil
	a.ResolvedBy = nil
	s.publisher.AlertRaised(a)
	return a, nil
}

// TriageFor derives the patient's current triage level from their open
// alerts. Red outranks amber outranks green.
func (s *Service) TriageFor(ctx context.Context, patientID uuid.UUID) (TriageLevel, error) {
	severities, err := s.repo.OpenSeverities(ctx, patientID)
	if err != nil {
		return "", err
	}
	level := TriageGreen
	for _, sev := range severities {
		switch sev {
		case SeverityRed:
			return TriageRed, nil
		case SeverityAmber:
			level = TriageAmber
		}
	}
	return level, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, includeResolved bool, limit, offset int) ([]*Alert, int, error) {
	return s.repo.ListByPatient(ctx, patientID, includeResolved, limit, offset)
}

func (s *Service) ListOpen(ctx context.Context, severity Severity, limit, offset int) ([]*Alert, int, error) {
	if severity != "" && severity != SeverityRed && severity != SeverityAmber {
		return nil, 0, fmt.Errorf("invalid severity %q", severity)
	}
	return s.repo.ListOpen(ctx, severity, limit, offset)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
