package lead

import (
	"context"

	"github.com/careconnect/careconnect/pkg/pagination"
)

type LeadRepository interface {
	Create(ctx context.Context, l *Lead) error
	List(ctx context.Context, params pagination.Params) ([]*Lead, int, error)
}
