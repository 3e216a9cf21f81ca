package checkin

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a patient has no active session.
var ErrSessionNotFound = errors.New("check-in session not found")

// SessionStore holds the active conversation state per patient. At most one
// session exists per patient; abandoned sessions expire via the store's TTL.
type SessionStore interface {
	Get(ctx context.Context, patientID uuid.UUID) (*State, error)
	Put(ctx context.Context, state *State) error
	Delete(ctx context.Context, patientID uuid.UUID) error
}
