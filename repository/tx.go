package repository

import "context"

// Transactor runs fn inside one storage transaction. Repository calls made
// with the context passed to fn join that transaction, so a check-and-modify
// sequence commits or rolls back as a unit. Implementations retry transient
// serialization failures a bounded number of times before giving up.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
