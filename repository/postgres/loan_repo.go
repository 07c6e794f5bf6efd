package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/pkg/filterquery"
	"github.com/demandlane/booklending/repository"
)

var loanSchema = filterquery.NewSchema(map[string]filterquery.Column{
	"memberId": {Name: "member_id", Kind: filterquery.Relation},
	"bookId":   {Name: "book_id", Kind: filterquery.Relation},
})

var loanColumns = []any{
	"id", "member_id", "book_id", "borrowed_at", "due_date", "returned_at",
	"created_at", "updated_at",
}

type loanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository returns a Postgres-backed implementation of LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) repository.LoanRepository {
	return &loanRepository{pool: pool}
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	const query = `
	SELECT id, member_id, book_id, borrowed_at, due_date, returned_at, created_at, updated_at
	FROM loans
	WHERE id = $1 AND deleted_at IS NULL
	`
	row := conn(ctx, r.pool).QueryRow(ctx, query, id)
	return scanLoan(row)
}

func (r *loanRepository) List(ctx context.Context, filter repository.LoanFilter, page repository.Page) ([]domain.Loan, int64, error) {
	where := translate(loanSchema, filter.Fields())
	listSQL, listArgs, countSQL, countArgs, err := listQuery("loans", loanColumns, where, page)
	if err != nil {
		return nil, 0, err
	}

	q := conn(ctx, r.pool)
	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, 0, err
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, q, countSQL, countArgs)
	if err != nil {
		return nil, 0, err
	}
	return loans, total, nil
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	if loan == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO loans (member_id, book_id, borrowed_at, due_date, returned_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		loan.MemberID,
		loan.BookID,
		loan.BorrowedAt,
		loan.DueDate,
		loan.ReturnedAt,
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	if loan == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE loans
	SET member_id = $2,
		book_id = $3,
		borrowed_at = $4,
		due_date = $5,
		returned_at = $6,
		updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL
	RETURNING updated_at
	`
	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		loan.ID,
		loan.MemberID,
		loan.BookID,
		loan.BorrowedAt,
		loan.DueDate,
		loan.ReturnedAt,
	).Scan(&loan.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrLoanNotFound
		}
		return err
	}
	return nil
}

func (r *loanRepository) MarkReturned(ctx context.Context, id int64, returnedAt time.Time) error {
	// The returned_at IS NULL guard makes the transition single-shot even
	// under concurrent return requests for the same loan.
	const query = `
	UPDATE loans
	SET returned_at = $2, updated_at = NOW()
	WHERE id = $1 AND returned_at IS NULL AND deleted_at IS NULL
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, id, returnedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanAlreadyReturned
	}
	return nil
}

func (r *loanRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `
	UPDATE loans
	SET deleted_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

func (r *loanRepository) CountActiveByMember(ctx context.Context, memberID int64) (int64, error) {
	const query = `
	SELECT COUNT(*)
	FROM loans
	WHERE member_id = $1 AND returned_at IS NULL AND deleted_at IS NULL
	`
	var count int64
	if err := conn(ctx, r.pool).QueryRow(ctx, query, memberID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *loanRepository) HasOverdue(ctx context.Context, memberID int64, now time.Time) (bool, error) {
	const query = `
	SELECT EXISTS (
		SELECT 1 FROM loans
		WHERE member_id = $1 AND returned_at IS NULL AND due_date < $2 AND deleted_at IS NULL
	)
	`
	var overdue bool
	if err := conn(ctx, r.pool).QueryRow(ctx, query, memberID, now).Scan(&overdue); err != nil {
		return false, err
	}
	return overdue, nil
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var loan domain.Loan
	if err := row.Scan(
		&loan.ID,
		&loan.MemberID,
		&loan.BookID,
		&loan.BorrowedAt,
		&loan.DueDate,
		&loan.ReturnedAt,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}
