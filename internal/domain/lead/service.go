package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/careconnect/careconnect/pkg/pagination"
)

type Service struct {
	repo LeadRepository
}

func NewService(repo LeadRepository) *Service {
	return &Service{repo: repo}
}

// Submit validates and stores an inquiry from the public landing page.
// The endpoint is unauthenticated, so validation stays strict.
func (s *Service) Submit(ctx context.Context, l *Lead) error {
	if !l.Type.Valid() {
		return fmt.Errorf("invalid lead type: %s", l.Type)
	}
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(strings.ToLower(l.Email))
	l.Phone = strings.TrimSpace(l.Phone)
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	if l.Email == "" || !strings.Contains(l.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if l.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if l.Message != nil {
		msg := strings.TrimSpace(*l.Message)
		if msg == "" {
			l.Message = nil
		} else {
			l.Message = &msg
		}
	}
	return s.repo.Create(ctx, l)
}

func (s *Service) List(ctx context.Context, params pagination.Params) ([]*Lead, int, error) {
	return s.repo.List(ctx, params)
}
