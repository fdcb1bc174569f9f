package patient

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/careconnect/careconnect/internal/domain/identity"
)

// -- Mock Repositories --

type mockPatientRepo struct {
	store map[uuid.UUID]*Patient
	err   error
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{store: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) add(name string) *Patient {
	p := &Patient{ID: uuid.New(), DisplayName: name, CreatedAt: time.Now()}
	m.store[p.ID] = p
	return p
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	if m.err != nil {
		return m.err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.store[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.store[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.store[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func sortByName(items []*Patient) {
	sort.Slice(items, func(i, j int) bool { return items[i].DisplayName < items[j].DisplayName })
}

func (m *mockPatientRepo) ListAll(_ context.Context) ([]*Patient, error) {
	if m.err != nil {
		return nil, m.err
	}
	items := []*Patient{}
	for _, p := range m.store {
		items = append(items, p)
	}
	sortByName(items)
	return items, nil
}

func (m *mockPatientRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*Patient, error) {
	if m.err != nil {
		return nil, m.err
	}
	items := []*Patient{}
	for _, id := range ids {
		if p, ok := m.store[id]; ok {
			items = append(items, p)
		}
	}
	sortByName(items)
	return items, nil
}

type mockAccessRepo struct {
	edges []CustomerPatientAccess
	err   error
}

func (m *mockAccessRepo) Grant(_ context.Context, customerID, patientID uuid.UUID) error {
	m.edges = append(m.edges, CustomerPatientAccess{ID: uuid.New(), CustomerID: customerID, PatientID: patientID})
	return nil
}

func (m *mockAccessRepo) Revoke(_ context.Context, customerID, patientID uuid.UUID) error {
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.CustomerID != customerID || e.PatientID != patientID {
			kept = append(kept, e)
		}
	}
	m.edges = kept
	return nil
}

func (m *mockAccessRepo) PatientIDsForCustomer(_ context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	if m.err != nil {
		return nil, m.err
	}
	var ids []uuid.UUID
	for _, e := range m.edges {
		if e.CustomerID == customerID {
			ids = append(ids, e.PatientID)
		}
	}
	return ids, nil
}

func (m *mockAccessRepo) HasAccess(_ context.Context, customerID, patientID uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, e := range m.edges {
		if e.CustomerID == customerID && e.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

type mockAssignmentRepo struct {
	assignments []*CaregiverAssignment
	err         error
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *CaregiverAssignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *mockAssignmentRepo) End(_ context.Context, id uuid.UUID, endDate time.Time) error {
	for _, a := range m.assignments {
		if a.ID == id {
			d := endDate
			a.EndDate = &d
		}
	}
	return nil
}

func (m *mockAssignmentRepo) ActivePatientIDsForCaregiver(_ context.Context, caregiverID uuid.UUID, on time.Time) ([]uuid.UUID, error) {
	if m.err != nil {
		return nil, m.err
	}
	var ids []uuid.UUID
	for _, a := range m.assignments {
		if a.CaregiverID == caregiverID && a.ActiveOn(on) {
			ids = append(ids, a.PatientID)
		}
	}
	return ids, nil
}

func (m *mockAssignmentRepo) HasActiveAssignment(_ context.Context, caregiverID, patientID uuid.UUID, on time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, a := range m.assignments {
		if a.CaregiverID == caregiverID && a.PatientID == patientID && a.ActiveOn(on) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*CaregiverAssignment, error) {
	var items []*CaregiverAssignment
	for _, a := range m.assignments {
		if a.PatientID == patientID {
			items = append(items, a)
		}
	}
	return items, nil
}

// -- Fixtures --

var fixedDay = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func profileWithRole(role identity.Role) *identity.Profile {
	return &identity.Profile{ID: uuid.New(), Email: "u@example.com", DisplayName: "U", Role: role}
}

func newVisibilityFixture() (*Service, *mockPatientRepo, *mockAccessRepo, *mockAssignmentRepo) {
	patients := newMockPatientRepo()
	access := &mockAccessRepo{}
	assignments := &mockAssignmentRepo{}
	svc := NewService(patients, access, assignments)
	svc.now = func() time.Time { return fixedDay }
	return svc, patients, access, assignments
}

func names(items []*Patient) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.DisplayName
	}
	return out
}

// -- VisiblePatients --

func TestVisiblePatients_CustomerSeesOnlyGranted(t *testing.T) {
	svc, patients, access, _ := newVisibilityFixture()
	ctx := context.Background()

	p1 := patients.add("Anna Berger")
	p2 := patients.add("Karl Maier")
	patients.add("Lisa Novak") // not granted

	customer := profileWithRole(identity.RoleCustomer)
	access.edges = append(access.edges,
		CustomerPatientAccess{CustomerID: customer.ID, PatientID: p1.ID},
		CustomerPatientAccess{CustomerID: customer.ID, PatientID: p2.ID},
	)

	got, err := svc.VisiblePatients(ctx, customer)
	if err != nil {
		t.Fatalf("VisiblePatients: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("visible = %v, want 2 patients", names(got))
	}
	if got[0].DisplayName != "Anna Berger" || got[1].DisplayName != "Karl Maier" {
		t.Errorf("visible = %v", names(got))
	}
}

func TestVisiblePatients_DuplicateGrantsDeduplicated(t *testing.T) {
	svc, patients, access, _ := newVisibilityFixture()

	p := patients.add("Anna Berger")
	customer := profileWithRole(identity.RoleCustomer)
	for i := 0; i < 3; i++ {
		access.edges = append(access.edges,
			CustomerPatientAccess{CustomerID: customer.ID, PatientID: p.ID})
	}

	got, err := svc.VisiblePatients(context.Background(), customer)
	if err != nil {
		t.Fatalf("VisiblePatients: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("visible = %v, want exactly one entry", names(got))
	}
}

func TestVisiblePatients_CustomerWithNoGrantsGetsEmptyRoster(t *testing.T) {
	svc, patients, _, _ := newVisibilityFixture()
	patients.add("Anna Berger")

	got, err := svc.VisiblePatients(context.Background(), profileWithRole(identity.RoleCustomer))
	if err != nil {
		t.Fatalf("VisiblePatients: %v", err)
	}
	if got == nil {
		t.Fatal("roster must be an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("visible = %v, want none", names(got))
	}
}

func TestVisiblePatients_CaregiverAssignmentWindows(t *testing.T) {
	svc, patients, _, assignments := newVisibilityFixture()

	open := patients.add("Open Ended")
	endsToday := patients.add("Ends Today")
	endsFuture := patients.add("Ends Future")
	ended := patients.add("Already Ended")

	caregiver := profileWithRole(identity.RoleCaregiver)
	assignments.assignments = []*CaregiverAssignment{
		{ID: uuid.New(), CaregiverID: caregiver.ID, PatientID: open.ID, EndDate: nil},
		{ID: uuid.New(), CaregiverID: caregiver.ID, PatientID: endsToday.ID, EndDate: date(2025, 6, 15)},
		{ID: uuid.New(), CaregiverID: caregiver.ID, PatientID: endsFuture.ID, EndDate: date(2025, 7, 1)},
		{ID: uuid.New(), CaregiverID: caregiver.ID, PatientID: ended.ID, EndDate: date(2025, 6, 14)},
	}

	got, err := svc.VisiblePatients(context.Background(), caregiver)
	if err != nil {
		t.Fatalf("VisiblePatients: %v", err)
	}
	want := []string{"Ends Future", "Ends Today", "Open Ended"}
	if len(got) != len(want) {
		t.Fatalf("visible = %v, want %v", names(got), want)
	}
	for i, name := range want {
		if got[i].DisplayName != name {
			t.Errorf("visible[%d] = %q, want %q", i, got[i].DisplayName, name)
		}
	}
}

func TestVisiblePatients_AdminSeesAllOrderedByName(t *testing.T) {
	svc, patients, _, _ := newVisibilityFixture()
	patients.add("Zelda Meyer")
	patients.add("Anna Berger")
	patients.add("Karl Maier")

	got, err := svc.VisiblePatients(context.Background(), profileWithRole(identity.RoleAdmin))
	if err != nil {
		t.Fatalf("VisiblePatients: %v", err)
	}
	want := []string{"Anna Berger", "Karl Maier", "Zelda Meyer"}
	if len(got) != 3 {
		t.Fatalf("visible = %v", names(got))
	}
	for i, name := range want {
		if got[i].DisplayName != name {
			t.Errorf("visible[%d] = %q, want %q", i, got[i].DisplayName, name)
		}
	}
}

func TestVisiblePatients_UnknownRoleSeesNothing(t *testing.T) {
	svc, patients, access, assignments := newVisibilityFixture()
	p := patients.add("Anna Berger")

	stranger := profileWithRole(identity.Role("superuser"))
	// Even with edges present, an unrecognized role grants nothing.
	access.edges = append(access.edges, CustomerPatientAccess{CustomerID: stranger.ID, PatientID: p.ID})
	assignments.assignments = append(assignments.assignments,
		&CaregiverAssignment{CaregiverID: stranger.ID, PatientID: p.ID})

	got, err := svc.VisiblePatients(context.Background(), stranger)
	if err != nil {
		t.Fatalf("VisiblePatients: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("visible = %v, want none", names(got))
	}
}

func TestVisiblePatients_NilProfileSeesNothing(t *testing.T) {
	svc, patients, _, _ := newVisibilityFixture()
	patients.add("Anna Berger")

	got, err := svc.VisiblePatients(context.Background(), nil)
	if err != nil {
		t.Fatalf("VisiblePatients: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("visible = %v", names(got))
	}
}

func TestVisiblePatients_StoreErrorsSurface(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection refused")

	t.Run("customer access lookup", func(t *testing.T) {
		svc, _, access, _ := newVisibilityFixture()
		access.err = storeErr
		if _, err := svc.VisiblePatients(ctx, profileWithRole(identity.RoleCustomer)); !errors.Is(err, storeErr) {
			t.Errorf("err = %v, want wrapped store error", err)
		}
	})

	t.Run("caregiver assignment lookup", func(t *testing.T) {
		svc, _, _, assignments := newVisibilityFixture()
		assignments.err = storeErr
		if _, err := svc.VisiblePatients(ctx, profileWithRole(identity.RoleCaregiver)); !errors.Is(err, storeErr) {
			t.Errorf("err = %v, want wrapped store error", err)
		}
	})

	t.Run("admin roster load", func(t *testing.T) {
		svc, patients, _, _ := newVisibilityFixture()
		patients.err = storeErr
		if _, err := svc.VisiblePatients(ctx, profileWithRole(identity.RoleAdmin)); !errors.Is(err, storeErr) {
			t.Errorf("err = %v, want store error", err)
		}
	})
}

// -- CanAccess --

func TestCanAccess(t *testing.T) {
	svc, patients, access, assignments := newVisibilityFixture()
	ctx := context.Background()

	mine := patients.add("Mine")
	other := patients.add("Other")

	customer := profileWithRole(identity.RoleCustomer)
	access.edges = append(access.edges, CustomerPatientAccess{CustomerID: customer.ID, PatientID: mine.ID})

	caregiver := profileWithRole(identity.RoleCaregiver)
	assignments.assignments = []*CaregiverAssignment{
		{ID: uuid.New(), CaregiverID: caregiver.ID, PatientID: mine.ID, EndDate: nil},
		{ID: uuid.New(), CaregiverID: caregiver.ID, PatientID: other.ID, EndDate: date(2025, 1, 1)},
	}

	tests := []struct {
		name    string
		profile *identity.Profile
		patient uuid.UUID
		want    bool
	}{
		{"admin any patient", profileWithRole(identity.RoleAdmin), other.ID, true},
		{"customer granted", customer, mine.ID, true},
		{"customer ungranted", customer, other.ID, false},
		{"caregiver active", caregiver, mine.ID, true},
		{"caregiver expired", caregiver, other.ID, false},
		{"unknown role", profileWithRole(identity.Role("root")), mine.ID, false},
		{"nil profile", nil, mine.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanAccess(ctx, tt.profile, tt.patient)
			if err != nil {
				t.Fatalf("CanAccess: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanAccess = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAccess_StoreErrorSurfaces(t *testing.T) {
	svc, _, access, _ := newVisibilityFixture()
	access.err = errors.New("connection refused")

	_, err := svc.CanAccess(context.Background(), profileWithRole(identity.RoleCustomer), uuid.New())
	if err == nil {
		t.Fatal("store error must surface, not read as denied")
	}
}

// -- Assignment windows --

func TestAssignmentActiveOn(t *testing.T) {
	day := time.Date(2025, 6, 15, 23, 45, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  *time.Time
		want bool
	}{
		{"open ended", nil, true},
		{"ends today", date(2025, 6, 15), true},
		{"ends tomorrow", date(2025, 6, 16), true},
		{"ended yesterday", date(2025, 6, 14), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &CaregiverAssignment{EndDate: tt.end}
			if got := a.ActiveOn(day); got != tt.want {
				t.Errorf("ActiveOn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssignCaregiver_Validation(t *testing.T) {
	svc, _, _, _ := newVisibilityFixture()
	ctx := context.Background()

	if err := svc.AssignCaregiver(ctx, &CaregiverAssignment{}); err == nil {
		t.Error("missing IDs accepted")
	}

	bad := &CaregiverAssignment{
		CaregiverID: uuid.New(),
		PatientID:   uuid.New(),
		StartDate:   date(2025, 6, 10),
		EndDate:     date(2025, 6, 1),
	}
	if err := svc.AssignCaregiver(ctx, bad); err == nil {
		t.Error("end before start accepted")
	}

	good := &CaregiverAssignment{
		CaregiverID: uuid.New(),
		PatientID:   uuid.New(),
		StartDate:   date(2025, 6, 1),
		EndDate:     date(2025, 6, 30),
	}
	if err := svc.AssignCaregiver(ctx, good); err != nil {
		t.Errorf("valid assignment rejected: %v", err)
	}
}

func TestCreatePatient_RequiresDisplayName(t *testing.T) {
	svc, _, _, _ := newVisibilityFixture()

	if err := svc.CreatePatient(context.Background(), &Patient{}); err == nil {
		t.Error("empty display name accepted")
	}
}
