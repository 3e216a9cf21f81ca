package threshold

import (
	"context"

	"github.com/google/uuid"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

type OverrideRepository interface {
	// Upsert replaces the patient's override for the metric.
	Upsert(ctx context.Context, o *Override) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Override, error)
	Delete(ctx context.Context, patientID uuid.UUID, metric wearable.Metric) error
}
