package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/repository"
)

type inventoryLedger struct {
	pool *pgxpool.Pool
}

// NewInventoryLedger returns the Postgres-backed copy-count ledger. Both
// operations are guarded single-row updates; run inside a Transactor scope
// they serialize against concurrent borrows and returns on the same book.
func NewInventoryLedger(pool *pgxpool.Pool) repository.InventoryLedger {
	return &inventoryLedger{pool: pool}
}

func (l *inventoryLedger) Reserve(ctx context.Context, bookID int64) error {
	q := conn(ctx, l.pool)

	const query = `
	UPDATE books
	SET available_copies = available_copies - 1,
		updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL AND available_copies > 0
	`
	tag, err := q.Exec(ctx, query, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Distinguish a missing book from an exhausted one.
	var exists bool
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1 AND deleted_at IS NULL)`
	if err := q.QueryRow(ctx, existsQuery, bookID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrBookNotFound
	}
	return domain.ErrBookOutOfStock
}

func (l *inventoryLedger) Release(ctx context.Context, bookID int64) error {
	q := conn(ctx, l.pool)

	// LEAST caps the count so a double release cannot exceed total_copies.
	const query = `
	UPDATE books
	SET available_copies = LEAST(available_copies + 1, total_copies),
		updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}
