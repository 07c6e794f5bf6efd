// Package member implements membership administration.
package member

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/repository"
)

type UseCase struct {
	members repository.MemberRepository
	logger  *zap.Logger
}

func New(members repository.MemberRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{members: members, logger: logger}
}

func (uc *UseCase) List(ctx context.Context, filter repository.MemberFilter, page repository.Page) ([]domain.Member, int64, error) {
	return uc.members.List(ctx, filter, page)
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.Member, error) {
	return uc.members.GetByID(ctx, id)
}

func (uc *UseCase) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return uc.members.GetByEmail(ctx, email)
}

// Update applies a partial edit; nil patch fields keep existing values.
func (uc *UseCase) Update(ctx context.Context, id int64, patch domain.MemberPatch) (*domain.Member, error) {
	member, err := uc.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != member.Email {
		if _, err := uc.members.GetByEmail(ctx, *patch.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrMemberNotFound) {
			return nil, err
		}
	}

	patch.Apply(member)
	if err := uc.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.members.SoftDelete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("member deleted", zap.Int64("member_id", id))
	return nil
}
