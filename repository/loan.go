package repository

import (
	"context"
	"time"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/pkg/filterquery"
)

// LoanFilter narrows loan listings. Nil fields add no constraint.
type LoanFilter struct {
	MemberID *int64
	BookID   *int64
}

func (f LoanFilter) Fields() []filterquery.Field {
	return []filterquery.Field{
		filterquery.ID("memberId", f.MemberID),
		filterquery.ID("bookId", f.BookID),
	}
}

type LoanRepository interface {
	// GetByID returns the active (non-deleted) loan or domain.ErrLoanNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)
	List(ctx context.Context, filter LoanFilter, page Page) ([]domain.Loan, int64, error)
	Create(ctx context.Context, loan *domain.Loan) error
	Update(ctx context.Context, loan *domain.Loan) error
	SoftDelete(ctx context.Context, id int64) error

	// MarkReturned sets returned_at exactly once; a loan that is already
	// returned yields domain.ErrLoanAlreadyReturned.
	MarkReturned(ctx context.Context, id int64, returnedAt time.Time) error

	// CountActiveByMember counts the member's loans with no return date,
	// excluding soft-deleted rows.
	CountActiveByMember(ctx context.Context, memberID int64) (int64, error)
	// HasOverdue reports whether the member holds any active loan whose
	// due date lies before now.
	HasOverdue(ctx context.Context, memberID int64, now time.Time) (bool, error)
}
