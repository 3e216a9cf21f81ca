package threshold

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

type overrideRepoPG struct{ pool *pgxpool.Pool }

func NewOverrideRepoPG(pool *pgxpool.Pool) OverrideRepository {
	return &overrideRepoPG{pool: pool}
}

func (r *overrideRepoPG) Upsert(ctx context.Context, o *Override) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO threshold_override (id, patient_id, metric, critical_low, low, high, critical_high, set_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (patient_id, metric) DO UPDATE SET
			critical_low = EXCLUDED.critical_low,
			low = EXCLUDED.low,
			high = EXCLUDED.high,
			critical_high = EXCLUDED.critical_high,
			set_by = EXCLUDED.set_by,
			updated_at = NOW()`,
		o.ID, o.PatientID, o.Metric, o.CriticalLow, o.Low, o.High, o.CriticalHigh, o.SetBy)
	return err
}

func (r *overrideRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Override, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, metric, critical_low, low, high, critical_high, set_by, created_at, updated_at
		FROM threshold_override
		WHERE patient_id = $1`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []*Override
	for rows.Next() {
		var o Override
		if err := rows.Scan(&o.ID, &o.PatientID, &o.Metric, &o.CriticalLow, &o.Low,
			&o.High, &o.CriticalHigh, &o.SetBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		overrides = append(overrides, &o)
	}
	return overrides, rows.Err()
}

func (r *overrideRepoPG) Delete(ctx context.Context, patientID uuid.UUID, metric wearable.Metric) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM threshold_override WHERE patient_id = $1 AND metric = $2`, patientID, metric)
	return err
}
