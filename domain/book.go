package domain

import "time"

// Book represents a catalog title with copy-count bookkeeping.
// AvailableCopies is owned by the inventory ledger; TotalCopies is
// only changed through catalog administration.
type Book struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	TotalCopies     int64      `json:"total_copies"`
	AvailableCopies int64      `json:"available_copies"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"-"`
}

func (b *Book) HasAvailableCopies() bool {
	return b != nil && b.AvailableCopies > 0
}

// BookPatch carries optional field overrides for partial updates.
// Nil fields keep the existing value.
type BookPatch struct {
	Title           *string
	Author          *string
	ISBN            *string
	TotalCopies     *int64
	AvailableCopies *int64
}

func (p BookPatch) Apply(b *Book) {
	if b == nil {
		return
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.TotalCopies != nil {
		b.TotalCopies = *p.TotalCopies
	}
	if p.AvailableCopies != nil {
		b.AvailableCopies = *p.AvailableCopies
	}
}
