package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	tasks TaskRepository
}

func NewService(tasks TaskRepository) *Service {
	return &Service{tasks: tasks}
}

var validStatuses = map[string]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusDone:       true,
}

func (s *Service) CreateTask(ctx context.Context, t *Task) error {
	if t.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if !validStatuses[t.Status] {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	return s.tasks.Create(ctx, t)
}

func (s *Service) ListTasks(ctx context.Context, patientID uuid.UUID) ([]*Task, error) {
	return s.tasks.ListByPatient(ctx, patientID)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	return s.tasks.UpdateStatus(ctx, id, status)
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	return s.tasks.Delete(ctx, id)
}
