package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const alertCols = `id, patient_id, severity, source, cause_key, headline, description, created_at, resolved_at, resolved_by`

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.PatientID, &a.Severity, &a.Source, &a.CauseKey,
		&a.Headline, &a.Description, &a.CreatedAt, &a.ResolvedAt, &a.ResolvedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO alert (id, patient_id, severity, source, cause_key, headline, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.PatientID, a.Severity, a.Source, a.CauseKey, a.Headline, a.Description, a.CreatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return scanAlert(r.pool.QueryRow(ctx,
		`SELECT `+alertCols+` FROM alert WHERE id = $1`, id))
}

func (r *repoPG) FindOpenByCause(ctx context.Context, patientID uuid.UUID, causeKey string) (*Alert, error) {
	return scanAlert(r.pool.QueryRow(ctx, `
		SELECT `+alertCols+` FROM alert
		WHERE patient_id = $1 AND cause_key = $2 AND resolved_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, patientID, causeKey))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, includeResolved bool, limit, offset int) ([]*Alert, int, error) {
	where := `WHERE patient_id = $1`
	if !includeResolved {
		where += ` AND resolved_at IS NULL`
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM alert `+where, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+alertCols+` FROM alert `+where+`
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAlerts(rows, total)
}

func (r *repoPG) ListOpen(ctx context.Context, severity Severity, limit, offset int) ([]*Alert, int, error) {
	where := `WHERE resolved_at IS NULL`
	var countArgs []any
	args := []any{limit, offset}
	if severity != "" {
		where += ` AND severity = $3`
		args = append(args, severity)
		countArgs = append(countArgs, severity)
	}

	var total int
	countWhere := `WHERE resolved_at IS NULL`
	if severity != "" {
		countWhere += ` AND severity = $1`
	}
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM alert `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+alertCols+` FROM alert `+where+`
		ORDER BY severity = 'red' DESC, created_at ASC
		LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAlerts(rows, total)
}

func (r *repoPG) OpenSeverities(ctx context.Context, patientID uuid.UUID) ([]Severity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT severity FROM alert
		WHERE patient_id = $1 AND resolved_at IS NULL`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var severities []Severity
	for rows.Next() {
		var s Severity
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		severities = append(severities, s)
	}
	return severities, rows.Err()
}

func (r *repoPG) Resolve(ctx context.Context, id uuid.UUID, by string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alert SET resolved_at = $2, resolved_by = $3
		WHERE id = $1 AND resolved_at IS NULL`, id, at, by)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already resolved; the service distinguishes.
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateObserved(ctx context.Context, id uuid.UUID, severity Severity, headline, description string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alert SET severity = $2, headline = $3, description = $4
		WHERE id = $1 AND resolved_at IS NULL`, id, severity, headline, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Unresolve(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alert SET resolved_at = NULL, resolved_by = NULL
		WHERE id = $1 AND resolved_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE severity = 'red'),
			COUNT(*) FILTER (WHERE severity = 'amber'),
			COUNT(DISTINCT patient_id) FILTER (WHERE severity = 'red'),
			COUNT(DISTINCT patient_id) FILTER (WHERE severity = 'amber'
				AND patient_id NOT IN (
					SELECT patient_id FROM alert
					WHERE resolved_at IS NULL AND severity = 'red'))
		FROM alert
		WHERE resolved_at IS NULL`).
		Scan(&s.OpenRed, &s.OpenAmber, &s.PatientsRed, &s.PatientsAmber)
	if err != nil {
		return nil, err
	}

	// Green is everyone actively monitored with no open alert.
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE status = 'active'`).
		Scan(&s.TotalPatients)
	if err != nil {
		return nil, err
	}
	s.PatientsGreen = s.TotalPatients - s.PatientsRed - s.PatientsAmber
	if s.PatientsGreen < 0 {
		s.PatientsGreen = 0
	}
	return &s, nil
}

func collectAlerts(rows pgx.Rows, total int) ([]*Alert, int, error) {
	var out []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}
