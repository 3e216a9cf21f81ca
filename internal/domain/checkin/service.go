package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AlertSink receives escalations emitted by check-in conversations. The alert
// lifecycle service satisfies it via an adapter wired in main.
type AlertSink interface {
	EscalateSymptom(ctx context.Context, patientID uuid.UUID, signal TriageSignal, cause, headline, description string) error
}

// MetricsRecorder receives session outcome counts.
type MetricsRecorder interface {
	CheckinCompleted(flow string)
}

// Service drives check-in sessions: it loads state from the session store,
// lets the engine advance it, forwards escalations to the alert sink, and
// archives the transcript once a flow reaches its closing step.
type Service struct {
	engine      *Engine
	sessions    SessionStore
	transcripts TranscriptRepository
	alerts      AlertSink
	metrics     MetricsRecorder
	logger      zerolog.Logger
}

func NewService(engine *Engine, sessions SessionStore, transcripts TranscriptRepository, alerts AlertSink, logger zerolog.Logger) *Service {
	return &Service{
		engine:      engine,
		sessions:    sessions,
		transcripts: transcripts,
		alerts:      alerts,
		logger:      logger.With().Str("component", "checkin").Logger(),
	}
}

// SetMetrics attaches an optional metrics recorder.
func (s *Service) SetMetrics(m MetricsRecorder) { s.metrics = m }

// Start opens a new session for the patient, replacing any abandoned one.
func (s *Service) Start(ctx context.Context, patientID uuid.UUID) (Reply, error) {
	if patientID == uuid.Nil {
		return Reply{}, fmt.Errorf("patient_id is required")
	}

	state, reply := s.engine.Start(patientID, time.Now().UTC())
	if err := s.sessions.Put(ctx, state); err != nil {
		return Reply{}, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info().Str("patient_id", patientID.String()).Msg("check-in session started")
	return reply, nil
}

// Reply applies one patient input to the active session. Exactly one of
// option and freeText should be set; a session must already exist.
func (s *Service) Reply(ctx context.Context, patientID uuid.UUID, option OptionID, freeText string) (Reply, error) {
	if option == "" && freeText == "" {
		return Reply{}, fmt.Errorf("either option or text is required")
	}

	state, err := s.sessions.Get(ctx, patientID)
	if err != nil {
		return Reply{}, err
	}

	now := time.Now().UTC()
	reply := s.engine.Advance(state, option, freeText, now)

	if reply.Escalation != nil {
		esc := reply.Escalation
		if err := s.alerts.EscalateSymptom(ctx, patientID, esc.Signal, esc.Cause, esc.Headline, esc.Description); err != nil {
			// The conversation must still answer the patient; the
			// escalation failure is surfaced operationally instead.
			s.logger.Error().Err(err).
				Str("patient_id", patientID.String()).
				Str("cause", esc.Cause).
				Msg("failed to raise check-in escalation")
		} else {
			s.logger.Warn().
				Str("patient_id", patientID.String()).
				Str("signal", string(esc.Signal)).
				Str("cause", esc.Cause).
				Msg("check-in escalation raised")
		}
	}

	if reply.Terminal && !reply.FreeTextAck {
		if err := s.finishSession(ctx, state, now); err != nil {
			return Reply{}, err
		}
		return reply, nil
	}

	if err := s.sessions.Put(ctx, state); err != nil {
		return Reply{}, fmt.Errorf("store session: %w", err)
	}
	return reply, nil
}

func (s *Service) finishSession(ctx context.Context, state *State, now time.Time) error {
	transcript := &Transcript{
		PatientID:   state.PatientID,
		Flow:        state.Flow,
		StartedAt:   state.StartedAt,
		CompletedAt: now,
		Messages:    state.History,
	}
	if err := s.transcripts.Create(ctx, transcript); err != nil {
		return fmt.Errorf("archive transcript: %w", err)
	}
	if err := s.sessions.Delete(ctx, state.PatientID); err != nil {
		s.logger.Error().Err(err).
			Str("patient_id", state.PatientID.String()).
			Msg("failed to delete completed session")
	}

	if s.metrics != nil {
		s.metrics.CheckinCompleted(string(state.Flow))
	}

	s.logger.Info().
		Str("patient_id", state.PatientID.String()).
		Str("flow", string(state.Flow)).
		Msg("check-in session completed")
	return nil
}

// Transcripts lists a patient's archived sessions, newest first.
func (s *Service) Transcripts(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transcript, int, error) {
	return s.transcripts.ListByPatient(ctx, patientID, limit, offset)
}
