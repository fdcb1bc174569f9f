package carelog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	logs CareLogRepository

	now func() time.Time
}

func NewService(logs CareLogRepository) *Service {
	return &Service{logs: logs, now: time.Now}
}

var validSlots = map[string]bool{
	SlotMorning:   true,
	SlotNoon:      true,
	SlotAfternoon: true,
	SlotEvening:   true,
}

func (s *Service) RecordEntry(ctx context.Context, l *CareLog) error {
	if l.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if !validSlots[l.Slot] {
		return fmt.Errorf("invalid slot: %s", l.Slot)
	}
	if l.OccurredAt.IsZero() {
		l.OccurredAt = s.now()
	}
	return s.logs.Create(ctx, l)
}

// ListEntries returns the last N days of entries, newest first. The
// dashboard shows one week by default.
func (s *Service) ListEntries(ctx context.Context, patientID uuid.UUID, days int) ([]*CareLog, error) {
	if days <= 0 || days > 30 {
		days = 7
	}
	since := s.now().AddDate(0, 0, -days)
	return s.logs.ListByPatient(ctx, patientID, since)
}

func (s *Service) SetCompleted(ctx context.Context, id int64, completed bool) error {
	return s.logs.SetCompleted(ctx, id, completed)
}
