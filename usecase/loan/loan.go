// Package loan implements the lending engine: borrowing policy
// enforcement, the atomic borrow/return transitions against the inventory
// ledger, and the administrative loan paths.
package loan

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/repository"
)

// Config carries the borrowing policy parameters.
type Config struct {
	MaxActiveLoans   int
	LoanDurationDays int
}

const (
	defaultMaxActiveLoans   = 5
	defaultLoanDurationDays = 14
)

type UseCase struct {
	loans   repository.LoanRepository
	books   repository.BookRepository
	members repository.MemberRepository
	ledger  repository.InventoryLedger
	tx      repository.Transactor
	policy  *Policy
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

func New(
	loans repository.LoanRepository,
	books repository.BookRepository,
	members repository.MemberRepository,
	ledger repository.InventoryLedger,
	tx repository.Transactor,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxActiveLoans <= 0 {
		cfg.MaxActiveLoans = defaultMaxActiveLoans
	}
	if cfg.LoanDurationDays <= 0 {
		cfg.LoanDurationDays = defaultLoanDurationDays
	}
	return &UseCase{
		loans:   loans,
		books:   books,
		members: members,
		ledger:  ledger,
		tx:      tx,
		policy:  NewPolicy(loans, cfg.MaxActiveLoans),
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Borrow lends one copy of a book to a member. The policy reads, the
// ledger reservation and the loan insert run in one transaction with the
// book row locked, so two borrows racing for the last copy resolve to
// exactly one success.
func (uc *UseCase) Borrow(ctx context.Context, memberID, bookID int64) (*domain.Loan, error) {
	var loan *domain.Loan

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		member, err := uc.members.GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		book, err := uc.books.GetForUpdate(ctx, bookID)
		if err != nil {
			return err
		}

		now := uc.now()
		if err := uc.policy.Validate(ctx, member, book, now); err != nil {
			return err
		}

		if err := uc.ledger.Reserve(ctx, book.ID); err != nil {
			if errors.Is(err, domain.ErrBookOutOfStock) {
				// Stock drained between the availability check and the
				// reservation; surface it as the same user-facing rejection.
				return domain.NoCopiesAvailable(book.Title)
			}
			return err
		}

		loan = &domain.Loan{
			MemberID:   member.ID,
			BookID:     book.ID,
			BorrowedAt: now,
			DueDate:    now.AddDate(0, 0, uc.cfg.LoanDurationDays),
		}
		return uc.loans.Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("loan created",
		zap.Int64("loan_id", loan.ID),
		zap.Int64("member_id", memberID),
		zap.Int64("book_id", bookID))
	return loan, nil
}

// Return marks a loan returned and releases its copy back to the ledger.
// Both writes commit together; a second return of the same loan fails
// without touching stock.
func (uc *UseCase) Return(ctx context.Context, loanID int64) (*domain.Loan, error) {
	var loan *domain.Loan

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = uc.loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.ReturnedAt != nil {
			return domain.ErrLoanAlreadyReturned
		}

		now := uc.now()
		if err := uc.loans.MarkReturned(ctx, loan.ID, now); err != nil {
			return err
		}
		loan.ReturnedAt = &now
		return uc.ledger.Release(ctx, loan.BookID)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("loan returned", zap.Int64("loan_id", loanID))
	return loan, nil
}

func (uc *UseCase) List(ctx context.Context, filter repository.LoanFilter, page repository.Page) ([]domain.Loan, int64, error) {
	return uc.loans.List(ctx, filter, page)
}

// Get returns the loan without ownership checks; the caller enforces
// ownership against the loan's MemberID.
func (uc *UseCase) Get(ctx context.Context, loanID int64) (*domain.Loan, error) {
	return uc.loans.GetByID(ctx, loanID)
}

// Create is the administrative path: it resolves the references but runs
// no borrowing policy and does not touch the ledger.
func (uc *UseCase) Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	if loan == nil {
		return nil, domain.ErrInvalidPayload
	}
	if _, err := uc.members.GetByID(ctx, loan.MemberID); err != nil {
		return nil, err
	}
	if _, err := uc.books.GetByID(ctx, loan.BookID); err != nil {
		return nil, err
	}

	if loan.BorrowedAt.IsZero() {
		loan.BorrowedAt = uc.now()
	}
	if loan.DueDate.IsZero() {
		loan.DueDate = loan.BorrowedAt.AddDate(0, 0, uc.cfg.LoanDurationDays)
	}

	if err := uc.loans.Create(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// Update applies a partial administrative edit; nil patch fields keep the
// existing values and no policy is re-evaluated.
func (uc *UseCase) Update(ctx context.Context, loanID int64, patch domain.LoanPatch) (*domain.Loan, error) {
	loan, err := uc.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if patch.MemberID != nil && *patch.MemberID != loan.MemberID {
		if _, err := uc.members.GetByID(ctx, *patch.MemberID); err != nil {
			return nil, err
		}
	}
	if patch.BookID != nil && *patch.BookID != loan.BookID {
		if _, err := uc.books.GetByID(ctx, *patch.BookID); err != nil {
			return nil, err
		}
	}

	patch.Apply(loan)
	if err := uc.loans.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

func (uc *UseCase) Delete(ctx context.Context, loanID int64) error {
	return uc.loans.SoftDelete(ctx, loanID)
}
