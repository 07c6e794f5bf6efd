package repository

import (
	"context"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/pkg/filterquery"
)

// BookFilter narrows book listings. Blank fields add no constraint.
type BookFilter struct {
	Title  string
	Author string
	ISBN   string
}

func (f BookFilter) Fields() []filterquery.Field {
	return []filterquery.Field{
		filterquery.String("title", f.Title),
		filterquery.String("author", f.Author),
		filterquery.String("isbn", f.ISBN),
	}
}

type BookRepository interface {
	// GetByID returns the active (non-deleted) book or domain.ErrBookNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
	// GetForUpdate is GetByID with an exclusive row lock; only meaningful
	// inside a Transactor scope.
	GetForUpdate(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context, filter BookFilter, page Page) ([]domain.Book, int64, error)
	Create(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, book *domain.Book) error
	SoftDelete(ctx context.Context, id int64) error
}
