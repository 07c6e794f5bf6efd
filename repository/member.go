package repository

import (
	"context"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/pkg/filterquery"
)

// MemberFilter narrows member listings. Blank fields add no constraint;
// an unrecognized role value is dropped rather than rejected.
type MemberFilter struct {
	Name  string
	Email string
	Role  string
}

func (f MemberFilter) Fields() []filterquery.Field {
	return []filterquery.Field{
		filterquery.String("name", f.Name),
		filterquery.String("email", f.Email),
		filterquery.String("role", f.Role),
	}
}

type MemberRepository interface {
	// GetByID returns the active (non-deleted) member or domain.ErrMemberNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	List(ctx context.Context, filter MemberFilter, page Page) ([]domain.Member, int64, error)
	Create(ctx context.Context, member *domain.Member) error
	Update(ctx context.Context, member *domain.Member) error
	SoftDelete(ctx context.Context, id int64) error
	// CountAll counts members including soft-deleted ones; used by boot seeding.
	CountAll(ctx context.Context) (int64, error)
}
