package domain

import "time"

// Loan tracks one borrowed copy of a book. A loan is active while
// ReturnedAt is nil; setting it is the only lifecycle transition and
// it happens exactly once.
type Loan struct {
	ID         int64      `json:"id"`
	MemberID   int64      `json:"member_id"`
	BookID     int64      `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`
}

func (l *Loan) IsActive() bool {
	return l != nil && l.ReturnedAt == nil && l.DeletedAt == nil
}

// IsOverdue reports whether the loan is active and past its due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && now.After(l.DueDate)
}

// LoanPatch carries optional field overrides for the administrative
// update path. Nil fields keep the existing value; no borrowing policy
// is re-evaluated.
type LoanPatch struct {
	MemberID   *int64
	BookID     *int64
	BorrowedAt *time.Time
	DueDate    *time.Time
	ReturnedAt *time.Time
}

func (p LoanPatch) Apply(l *Loan) {
	if l == nil {
		return
	}
	if p.MemberID != nil {
		l.MemberID = *p.MemberID
	}
	if p.BookID != nil {
		l.BookID = *p.BookID
	}
	if p.BorrowedAt != nil {
		l.BorrowedAt = *p.BorrowedAt
	}
	if p.DueDate != nil {
		l.DueDate = *p.DueDate
	}
	if p.ReturnedAt != nil {
		l.ReturnedAt = p.ReturnedAt
	}
}
