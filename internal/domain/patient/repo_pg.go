package patient

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// -- Patients --

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, display_name, birth_date, notes, created_by, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.DisplayName, &p.BirthDate, &p.Notes, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	defer rows.Close()
	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patients (id, display_name, birth_date, notes, created_by)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.DisplayName, p.BirthDate, p.Notes, p.CreatedBy)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE patients SET display_name=$2, birth_date=$3, notes=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.DisplayName, p.BirthDate, p.Notes)
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) ListAll(ctx context.Context) ([]*Patient, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY display_name ASC`)
	if err != nil {
		return nil, err
	}
	return collectPatients(rows)
}

func (r *patientRepoPG) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Patient, error) {
	if len(ids) == 0 {
		return []*Patient{}, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = ANY($1) ORDER BY display_name ASC`, ids)
	if err != nil {
		return nil, err
	}
	return collectPatients(rows)
}

// -- Customer access edges --

type accessRepoPG struct{ pool *pgxpool.Pool }

func NewAccessRepoPG(pool *pgxpool.Pool) AccessRepository {
	return &accessRepoPG{pool: pool}
}

func (r *accessRepoPG) Grant(ctx context.Context, customerID, patientID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO customer_patient_access (id, customer_id, patient_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (customer_id, patient_id) DO NOTHING`,
		uuid.New(), customerID, patientID)
	return err
}

func (r *accessRepoPG) Revoke(ctx context.Context, customerID, patientID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		DELETE FROM customer_patient_access WHERE customer_id = $1 AND patient_id = $2`,
		customerID, patientID)
	return err
}

func (r *accessRepoPG) PatientIDsForCustomer(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT patient_id FROM customer_patient_access WHERE customer_id = $1`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *accessRepoPG) HasAccess(ctx context.Context, customerID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM customer_patient_access
			WHERE customer_id = $1 AND patient_id = $2
		)`, customerID, patientID).Scan(&exists)
	return exists, err
}

// -- Caregiver assignments --

type assignmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssignmentRepoPG(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepoPG{pool: pool}
}

const assignmentCols = `id, caregiver_id, patient_id, start_date, end_date, created_at`

func scanAssignment(row pgx.Row) (*CaregiverAssignment, error) {
	var a CaregiverAssignment
	err := row.Scan(&a.ID, &a.CaregiverID, &a.PatientID, &a.StartDate, &a.EndDate, &a.CreatedAt)
	return &a, err
}

func (r *assignmentRepoPG) Create(ctx context.Context, a *CaregiverAssignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO caregiver_assignments (id, caregiver_id, patient_id, start_date, end_date)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.CaregiverID, a.PatientID, a.StartDate, a.EndDate)
	return err
}

func (r *assignmentRepoPG) End(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE caregiver_assignments SET end_date = $2 WHERE id = $1`, id, endDate)
	return err
}

func (r *assignmentRepoPG) ActivePatientIDsForCaregiver(ctx context.Context, caregiverID uuid.UUID, on time.Time) ([]uuid.UUID, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT patient_id FROM caregiver_assignments
		WHERE caregiver_id = $1 AND (end_date IS NULL OR end_date >= $2::date)`,
		caregiverID, on)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *assignmentRepoPG) HasActiveAssignment(ctx context.Context, caregiverID, patientID uuid.UUID, on time.Time) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM caregiver_assignments
			WHERE caregiver_id = $1 AND patient_id = $2
			  AND (end_date IS NULL OR end_date >= $3::date)
		)`, caregiverID, patientID, on).Scan(&exists)
	return exists, err
}

func (r *assignmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*CaregiverAssignment, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+assignmentCols+` FROM caregiver_assignments WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CaregiverAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
