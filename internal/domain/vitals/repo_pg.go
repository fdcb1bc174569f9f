package vitals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type vitalRepoPG struct{ pool *pgxpool.Pool }

func NewVitalRepoPG(pool *pgxpool.Pool) VitalRepository {
	return &vitalRepoPG{pool: pool}
}

func (r *vitalRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const vitalCols = `id, patient_id, type, systolic, diastolic, value, measured_at, recorded_by`

func (r *vitalRepoPG) Create(ctx context.Context, v *Vital) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO vitals (patient_id, type, systolic, diastolic, value, measured_at, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		v.PatientID, v.Type, v.Systolic, v.Diastolic, v.Value, v.MeasuredAt, v.RecordedBy).Scan(&v.ID)
}

func (r *vitalRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Vital, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+vitalCols+` FROM vitals
		WHERE patient_id = $1 AND measured_at >= $2
		ORDER BY measured_at ASC`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Vital{}
	for rows.Next() {
		var v Vital
		if err := rows.Scan(&v.ID, &v.PatientID, &v.Type, &v.Systolic, &v.Diastolic,
			&v.Value, &v.MeasuredAt, &v.RecordedBy); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

func (r *vitalRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM vitals WHERE id = $1`, id)
	return err
}
