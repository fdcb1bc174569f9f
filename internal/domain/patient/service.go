package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/domain/identity"
)

type Service struct {
	patients    PatientRepository
	access      AccessRepository
	assignments AssignmentRepository

	// now is swappable in tests so assignment-expiry boundaries can be
	// pinned to a fixed day.
	now func() time.Time
}

func NewService(patients PatientRepository, access AccessRepository, assignments AssignmentRepository) *Service {
	return &Service{
		patients:    patients,
		access:      access,
		assignments: assignments,
		now:         time.Now,
	}
}

// VisiblePatients returns the patients the profile may see, ordered by
// display name. Customers see their granted patients, caregivers the
// patients of their currently active assignments, admins everyone. A role
// outside the known set sees nothing. A store failure is returned as an
// error, never as an empty roster, so callers can distinguish "no access"
// from "could not check".
func (s *Service) VisiblePatients(ctx context.Context, profile *identity.Profile) ([]*Patient, error) {
	if profile == nil {
		return []*Patient{}, nil
	}

	switch profile.Role {
	case identity.RoleAdmin:
		return s.patients.ListAll(ctx)

	case identity.RoleCustomer:
		ids, err := s.access.PatientIDsForCustomer(ctx, profile.ID)
		if err != nil {
			return nil, fmt.Errorf("load customer access: %w", err)
		}
		return s.patients.ListByIDs(ctx, dedupe(ids))

	case identity.RoleCaregiver:
		ids, err := s.assignments.ActivePatientIDsForCaregiver(ctx, profile.ID, s.now())
		if err != nil {
			return nil, fmt.Errorf("load caregiver assignments: %w", err)
		}
		return s.patients.ListByIDs(ctx, dedupe(ids))

	default:
		return []*Patient{}, nil
	}
}

// CanAccess re-checks a single patient for the profile. Detail routes call
// this on every request rather than trusting a roster fetched earlier.
func (s *Service) CanAccess(ctx context.Context, profile *identity.Profile, patientID uuid.UUID) (bool, error) {
	if profile == nil {
		return false, nil
	}

	switch profile.Role {
	case identity.RoleAdmin:
		return true, nil
	case identity.RoleCustomer:
		return s.access.HasAccess(ctx, profile.ID, patientID)
	case identity.RoleCaregiver:
		return s.assignments.HasActiveAssignment(ctx, profile.ID, patientID, s.now())
	default:
		return false, nil
	}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.DisplayName == "" {
		return fmt.Errorf("display name is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.DisplayName == "" {
		return fmt.Errorf("display name is required")
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) GrantAccess(ctx context.Context, customerID, patientID uuid.UUID) error {
	return s.access.Grant(ctx, customerID, patientID)
}

func (s *Service) RevokeAccess(ctx context.Context, customerID, patientID uuid.UUID) error {
	return s.access.Revoke(ctx, customerID, patientID)
}

func (s *Service) AssignCaregiver(ctx context.Context, a *CaregiverAssignment) error {
	if a.CaregiverID == uuid.Nil || a.PatientID == uuid.Nil {
		return fmt.Errorf("caregiver and patient are required")
	}
	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		return fmt.Errorf("end date before start date")
	}
	return s.assignments.Create(ctx, a)
}

func (s *Service) EndAssignment(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	return s.assignments.End(ctx, id, endDate)
}

func (s *Service) ListAssignments(ctx context.Context, patientID uuid.UUID) ([]*CaregiverAssignment, error) {
	return s.assignments.ListByPatient(ctx, patientID)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
