package deals

import "context"

// Repo manages deal persistence. Update enforces optimistic concurrency:
// it fails with errors.ErrVersionConflict when the stored version differs
// from the version on the passed deal, and bumps the version on success.
type Repo interface {
	Create(ctx context.Context, deal *Deal) error
	Update(ctx context.Context, deal *Deal) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Deal, error)
	List(ctx context.Context, offset, limit int) ([]*Deal, error)
	ListByCreator(ctx context.Context, userID int64, offset, limit int) ([]*Deal, error)
	SetProcessing(ctx context.Context, id int64, status ProcessingStatus) error
}
