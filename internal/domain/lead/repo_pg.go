package lead

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careconnect/careconnect/internal/platform/db"
	"github.com/careconnect/careconnect/pkg/pagination"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type leadRepoPG struct{ pool *pgxpool.Pool }

func NewLeadRepoPG(pool *pgxpool.Pool) LeadRepository {
	return &leadRepoPG{pool: pool}
}

func (r *leadRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const leadCols = `id, type, name, email, phone, message, created_at`

func (r *leadRepoPG) scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Type, &l.Name, &l.Email, &l.Phone, &l.Message, &l.CreatedAt)
	return &l, err
}

func (r *leadRepoPG) Create(ctx context.Context, l *Lead) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO leads (type, name, email, phone, message)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		l.Type, l.Name, l.Email, l.Phone, l.Message).Scan(&l.ID, &l.CreatedAt)
}

// List runs the count and the page inside one transaction so both see the
// same snapshot of the inbox.
func (r *leadRepoPG) List(ctx context.Context, params pagination.Params) ([]*Lead, int, error) {
	items := []*Lead{}
	var total int
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&total); err != nil {
			return err
		}

		rows, err := r.conn(ctx).Query(ctx,
			`SELECT `+leadCols+` FROM leads ORDER BY created_at DESC `+params.SQL())
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			l, err := r.scanLead(rows)
			if err != nil {
				return err
			}
			items = append(items, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
