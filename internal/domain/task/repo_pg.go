package task

import (
	"context"

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

type taskRepoPG struct{ pool *pgxpool.Pool }

func NewTaskRepoPG(pool *pgxpool.Pool) TaskRepository {
	return &taskRepoPG{pool: pool}
}

func (r *taskRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const taskCols = `id, patient_id, assigned_to, title, due_at, status, created_by, created_at`

func (r *taskRepoPG) scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.PatientID, &t.AssignedTo, &t.Title, &t.DueAt,
		&t.Status, &t.CreatedBy, &t.CreatedAt)
	return &t, err
}

func (r *taskRepoPG) Create(ctx context.Context, t *Task) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO tasks (patient_id, assigned_to, title, due_at, status, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`,
		t.PatientID, t.AssignedTo, t.Title, t.DueAt, t.Status, t.CreatedBy).Scan(&t.ID)
}

func (r *taskRepoPG) GetByID(ctx context.Context, id int64) (*Task, error) {
	return r.scanTask(r.conn(ctx).QueryRow(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE id = $1`, id))
}

func (r *taskRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Task, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Task{}
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *taskRepoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE tasks SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *taskRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}
