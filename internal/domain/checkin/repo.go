package checkin

import (
	"context"

	"github.com/google/uuid"
)

type TranscriptRepository interface {
	Create(ctx context.Context, t *Transcript) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transcript, int, error)
}
