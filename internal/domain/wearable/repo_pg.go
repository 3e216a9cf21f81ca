package wearable

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no reading matches the query.
var ErrNotFound = errors.New("reading not found")

type readingRepoPG struct{ pool *pgxpool.Pool }

func NewReadingRepoPG(pool *pgxpool.Pool) ReadingRepository {
	return &readingRepoPG{pool: pool}
}

const readingCols = `id, patient_id, recorded_at, resting_heart_rate,
	heart_rate_variability, sleep_hours, steps, blood_oxygen, created_at`

func scanReading(row pgx.Row) (*Reading, error) {
	var r Reading
	err := row.Scan(&r.ID, &r.PatientID, &r.RecordedAt, &r.RestingHeartRate,
		&r.HeartRateVar, &r.SleepHours, &r.Steps, &r.BloodOxygen, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &r, err
}

func (r *readingRepoPG) Create(ctx context.Context, reading *Reading) error {
	reading.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wearable_reading (id, patient_id, recorded_at, resting_heart_rate,
			heart_rate_variability, sleep_hours, steps, blood_oxygen)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		reading.ID, reading.PatientID, reading.RecordedAt, reading.RestingHeartRate,
		reading.HeartRateVar, reading.SleepHours, reading.Steps, reading.BloodOxygen)
	return err
}

func (r *readingRepoPG) Window(ctx context.Context, patientID uuid.UUID, since time.Time) ([]Reading, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+readingCols+` FROM wearable_reading
		WHERE patient_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC`, patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var rd Reading
		if err := rows.Scan(&rd.ID, &rd.PatientID, &rd.RecordedAt, &rd.RestingHeartRate,
			&rd.HeartRateVar, &rd.SleepHours, &rd.Steps, &rd.BloodOxygen, &rd.CreatedAt); err != nil {
			return nil, err
		}
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}

func (r *readingRepoPG) Latest(ctx context.Context, patientID uuid.UUID) (*Reading, error) {
	return scanReading(r.pool.QueryRow(ctx, `
		SELECT `+readingCols+` FROM wearable_reading
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`, patientID))
}

func (r *readingRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Reading, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wearable_reading WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+readingCols+` FROM wearable_reading
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var rd Reading
		if err := rows.Scan(&rd.ID, &rd.PatientID, &rd.RecordedAt, &rd.RestingHeartRate,
			&rd.HeartRateVar, &rd.SleepHours, &rd.Steps, &rd.BloodOxygen, &rd.CreatedAt); err != nil {
			return nil, 0, err
		}
		readings = append(readings, rd)
	}
	return readings, total, rows.Err()
}
