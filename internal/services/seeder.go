package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/internal/config"
	"github.com/demandlane/booklending/repository"
)

// Seeder creates the first administrator account on an empty database so
// a fresh deployment can be managed without manual SQL.
type Seeder struct {
	members repository.MemberRepository
	cfg     config.SeedConfig
	logger  *zap.Logger
}

func NewSeeder(members repository.MemberRepository, cfg config.SeedConfig, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{members: members, cfg: cfg, logger: logger}
}

func (s *Seeder) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}
	if s.cfg.AdminPassword == "" {
		s.logger.Warn("seeding enabled but no admin password configured, skipping")
		return nil
	}

	total, err := s.members.CountAll(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &domain.Member{
		Name:         s.cfg.AdminName,
		Email:        s.cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := s.members.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("seeded administrator account", zap.String("email", admin.Email))
	return nil
}
