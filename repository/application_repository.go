package repository

import (
	"context"
	"errors"

	"solar-sizer/domain"
)

var ErrNotFound = errors.New("application not found")

// ApplicationRepository stores applications keyed by application number.
// Save is an upsert: an existing record is replaced, except for CreatedAt
// which keeps its first value.
type ApplicationRepository interface {
	Save(ctx context.Context, app domain.Application) error
	Get(ctx context.Context, number string) (domain.Application, error)
	List(ctx context.Context) ([]domain.Application, error)
}
