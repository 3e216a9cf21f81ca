package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("alert not found")

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	// FindOpenByCause returns the unresolved alert for a patient and cause
	// key, or ErrNotFound when the condition has no open alert.
	FindOpenByCause(ctx context.Context, patientID uuid.UUID, causeKey string) (*Alert, error)
	// UpdateObserved refreshes an open alert's latest-observed fields when a
	// recurring candidate folds into it.
	UpdateObserved(ctx context.Context, id uuid.UUID, severity Severity, headline, description string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, includeResolved bool, limit, offset int) ([]*Alert, int, error)
	ListOpen(ctx context.Context, severity Severity, limit, offset int) ([]*Alert, int, error)
	OpenSeverities(ctx context.Context, patientID uuid.UUID) ([]Severity, error)
	Resolve(ctx context.Context, id uuid.UUID, by string, at time.Time) error
	Unresolve(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}
