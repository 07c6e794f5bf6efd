package transport

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BookRequest doubles as create payload and partial-update patch; nil
// fields are left untouched on update.
type BookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	TotalCopies     *int64  `json:"total_copies"`
	AvailableCopies *int64  `json:"available_copies"`
}

// MemberRequest is the partial-update payload for membership administration.
type MemberRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// LoanRequest is the administrative create/update payload; timestamps are
// RFC3339. Nil fields are left untouched on update.
type LoanRequest struct {
	MemberID   *int64  `json:"member_id"`
	BookID     *int64  `json:"book_id"`
	BorrowedAt *string `json:"borrowed_at"`
	DueDate    *string `json:"due_date"`
	ReturnedAt *string `json:"returned_at"`
}

type BorrowRequest struct {
	BookID int64 `json:"book_id"`
}
