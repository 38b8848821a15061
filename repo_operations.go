package calc

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// DefaultHistoryLimit is how many entries the history listing returns.
const DefaultHistoryLimit = 10

// Operations records and lists arithmetic history
type Operations interface {
	Record(ctx context.Context, op *Operation) (*Operation, error)
	Latest(ctx context.Context, limit int) ([]*Operation, error)
}

type operations struct {
	db *bun.DB
}

var _ Operations = (*operations)(nil)

// NewOperationsRepository returns an Operations repository backed by bun
func NewOperationsRepository(db *bun.DB) Operations {
	return &operations{db: db}
}

// Record persists a single operation, attributed to the authorized user.
func (r *operations) Record(ctx context.Context, op *Operation) (*Operation, error) {
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now().UTC()
	}

	if _, err := r.db.NewInsert().
		Model(op).
		Returning("id").
		Exec(ctx); err != nil {
		return nil, wrapStoreError(err, "failed to record operation")
	}

	return op, nil
}

// Latest returns the most recent operations, newest first.
func (r *operations) Latest(ctx context.Context, limit int) ([]*Operation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	ops := make([]*Operation, 0, limit)
	if err := r.db.NewSelect().
		Model(&ops).
		Order("timestamp DESC", "id DESC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, wrapStoreError(err, "failed to fetch history")
	}

	return ops, nil
}
