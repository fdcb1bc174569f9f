package carelog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockCareLogRepo struct {
	store  []*CareLog
	nextID int64
}

func (m *mockCareLogRepo) Create(_ context.Context, l *CareLog) error {
	m.nextID++
	l.ID = m.nextID
	m.store = append(m.store, l)
	return nil
}

func (m *mockCareLogRepo) ListByPatient(_ context.Context, patientID uuid.UUID, since time.Time) ([]*CareLog, error) {
	items := []*CareLog{}
	for _, l := range m.store {
		if l.PatientID == patientID && !l.OccurredAt.Before(since) {
			items = append(items, l)
		}
	}
	return items, nil
}

func (m *mockCareLogRepo) SetCompleted(_ context.Context, id int64, completed bool) error {
	for _, l := range m.store {
		if l.ID == id {
			l.Completed = completed
		}
	}
	return nil
}

func (m *mockCareLogRepo) Delete(_ context.Context, id int64) error { return nil }

func TestRecordEntry_SlotValidation(t *testing.T) {
	svc := NewService(&mockCareLogRepo{})
	ctx := context.Background()
	patientID := uuid.New()

	for _, slot := range []string{SlotMorning, SlotNoon, SlotAfternoon, SlotEvening} {
		if err := svc.RecordEntry(ctx, &CareLog{PatientID: patientID, Slot: slot}); err != nil {
			t.Errorf("slot %s rejected: %v", slot, err)
		}
	}

	if err := svc.RecordEntry(ctx, &CareLog{PatientID: patientID, Slot: "night"}); err == nil {
		t.Error("unknown slot accepted")
	}
	if err := svc.RecordEntry(ctx, &CareLog{Slot: SlotMorning}); err == nil {
		t.Error("missing patient accepted")
	}
}

func TestListEntries_DefaultsToOneWeek(t *testing.T) {
	repo := &mockCareLogRepo{}
	svc := NewService(repo)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	patientID := uuid.New()
	repo.store = []*CareLog{
		{ID: 1, PatientID: patientID, Slot: SlotMorning, OccurredAt: now.AddDate(0, 0, -2)},
		{ID: 2, PatientID: patientID, Slot: SlotEvening, OccurredAt: now.AddDate(0, 0, -10)},
	}

	got, err := svc.ListEntries(context.Background(), patientID, 0)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("got %d entries, want only the recent one", len(got))
	}
}

func TestSetCompleted(t *testing.T) {
	repo := &mockCareLogRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	l := &CareLog{PatientID: uuid.New(), Slot: SlotNoon}
	if err := svc.RecordEntry(ctx, l); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if err := svc.SetCompleted(ctx, l.ID, true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	if !repo.store[0].Completed {
		t.Error("entry not marked completed")
	}
}
