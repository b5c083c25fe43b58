package documents

import "context"

// Repo manages document persistence. Update enforces optimistic
// concurrency the same way deals.Repo does.
type Repo interface {
	Create(ctx context.Context, doc *Document) error
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, offset, limit int) ([]*Document, error)
	ListByDeal(ctx context.Context, dealID int64, offset, limit int) ([]*Document, error)
	ListByUploader(ctx context.Context, userID int64, offset, limit int) ([]*Document, error)
	SetStatus(ctx context.Context, id int64, status Status, processingError string) error
}
