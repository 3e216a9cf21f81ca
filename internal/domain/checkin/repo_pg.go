package checkin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transcriptRepoPG struct{ pool *pgxpool.Pool }

func NewTranscriptRepoPG(pool *pgxpool.Pool) TranscriptRepository {
	return &transcriptRepoPG{pool: pool}
}

func (r *transcriptRepoPG) Create(ctx context.Context, t *Transcript) error {
	t.ID = uuid.New()
	messages, err := json.Marshal(t.Messages)
	if err != nil {
		return fmt.Errorf("marshal transcript messages: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO checkin_transcript (id, patient_id, flow, started_at, completed_at, messages)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.PatientID, t.Flow, t.StartedAt, t.CompletedAt, messages)
	return err
}

func (r *transcriptRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transcript, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM checkin_transcript WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, flow, started_at, completed_at, messages
		FROM checkin_transcript
		WHERE patient_id = $1
		ORDER BY completed_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transcripts []*Transcript
	for rows.Next() {
		var t Transcript
		var messages []byte
		if err := rows.Scan(&t.ID, &t.PatientID, &t.Flow, &t.StartedAt, &t.CompletedAt, &messages); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(messages, &t.Messages); err != nil {
			return nil, 0, fmt.Errorf("unmarshal transcript messages: %w", err)
		}
		transcripts = append(transcripts, &t)
	}
	return transcripts, total, rows.Err()
}
