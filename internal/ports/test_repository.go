package ports

import (
	"context"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

// TestRepository stores test definitions and their lifecycle state. Lookups
// return (nil, nil) when the id resolves to nothing; absence is not an error.
type TestRepository interface {
	Create(ctx context.Context, test *domain.Test) error
	GetByID(ctx context.Context, id string) (*domain.Test, error)
	List(ctx context.Context) ([]*domain.Test, error)
	ListByStatus(ctx context.Context, status domain.TestStatus) ([]*domain.Test, error)
	Update(ctx context.Context, test *domain.Test) error
}
