package carelog

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

type careLogRepoPG struct{ pool *pgxpool.Pool }

func NewCareLogRepoPG(pool *pgxpool.Pool) CareLogRepository {
	return &careLogRepoPG{pool: pool}
}

func (r *careLogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const careLogCols = `id, patient_id, slot, title, details, mood, completed, occurred_at, recorded_by`

func (r *careLogRepoPG) Create(ctx context.Context, l *CareLog) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO care_logs (patient_id, slot, title, details, mood, completed, occurred_at, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		l.PatientID, l.Slot, l.Title, l.Details, l.Mood, l.Completed, l.OccurredAt, l.RecordedBy).Scan(&l.ID)
}

func (r *careLogRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*CareLog, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+careLogCols+` FROM care_logs
		WHERE patient_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*CareLog{}
	for rows.Next() {
		var l CareLog
		if err := rows.Scan(&l.ID, &l.PatientID, &l.Slot, &l.Title, &l.Details, &l.Mood,
			&l.Completed, &l.OccurredAt, &l.RecordedBy); err != nil {
			return nil, err
		}
		items = append(items, &l)
	}
	return items, rows.Err()
}

func (r *careLogRepoPG) SetCompleted(ctx context.Context, id int64, completed bool) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE care_logs SET completed = $2 WHERE id = $1`, id, completed)
	return err
}

func (r *careLogRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM care_logs WHERE id = $1`, id)
	return err
}
