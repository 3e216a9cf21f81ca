package wearable

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ReadingRepository interface {
	Create(ctx context.Context, r *Reading) error
	// Window returns the patient's readings recorded at or after since,
	// ordered by recorded_at ascending. The analyzers depend on this order.
	Window(ctx context.Context, patientID uuid.UUID, since time.Time) ([]Reading, error)
	Latest(ctx context.Context, patientID uuid.UUID) (*Reading, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Reading, int, error)
}
