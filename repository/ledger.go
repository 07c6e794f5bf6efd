package repository

import "context"

// InventoryLedger owns a book's available-copy count. Both operations are
// single guarded updates so they stay serializable with respect to
// concurrent callers on the same book when run inside a Transactor scope.
type InventoryLedger interface {
	// Reserve takes one copy: decrements available_copies iff it is
	// currently positive. Returns domain.ErrBookOutOfStock when no copy is
	// left and domain.ErrBookNotFound for missing or deleted books.
	Reserve(ctx context.Context, bookID int64) error

	// Release puts one copy back, capped at total_copies so a double
	// release can never oversupply the catalog.
	Release(ctx context.Context, bookID int64) error
}
