package loan

import (
	"context"
	"time"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/repository"
)

// Policy evaluates the borrowing rules for a member and a book. It only
// reads; the checks run in a fixed order and stop at the first violation
// so rejections carry one stable reason.
type Policy struct {
	loans          repository.LoanRepository
	maxActiveLoans int
}

func NewPolicy(loans repository.LoanRepository, maxActiveLoans int) *Policy {
	return &Policy{loans: loans, maxActiveLoans: maxActiveLoans}
}

// Validate checks, in order: the active-loan ceiling, the overdue lockout,
// and the book's availability. The availability read must happen in the
// same transaction scope as the subsequent ledger reservation; callers are
// expected to pass a book fetched under the borrow transaction's row lock.
func (p *Policy) Validate(ctx context.Context, member *domain.Member, book *domain.Book, now time.Time) error {
	active, err := p.loans.CountActiveByMember(ctx, member.ID)
	if err != nil {
		return err
	}
	if active >= int64(p.maxActiveLoans) {
		return domain.MaxLoansExceeded(p.maxActiveLoans)
	}

	overdue, err := p.loans.HasOverdue(ctx, member.ID, now)
	if err != nil {
		return err
	}
	if overdue {
		return domain.ErrHasOverdueLoan
	}

	if !book.HasAvailableCopies() {
		return domain.NoCopiesAvailable(book.Title)
	}
	return nil
}
