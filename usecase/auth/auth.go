// Package auth implements registration and credential-based login with
// signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/repository"
)

type Config struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

type UseCase struct {
	members repository.MemberRepository
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

func New(members repository.MemberRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &UseCase{
		members: members,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates a MEMBER account with a bcrypt-hashed password.
func (uc *UseCase) Register(ctx context.Context, name, email, password string) (*domain.Member, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidPayload
	}

	if _, err := uc.members.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	member := &domain.Member{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
	}
	if err := uc.members.Create(ctx, member); err != nil {
		return nil, err
	}

	uc.logger.Info("member registered", zap.Int64("member_id", member.ID))
	return member, nil
}

// LoginResult carries the signed token alongside the account identity.
type LoginResult struct {
	Token     string
	Member    *domain.Member
	ExpiresAt time.Time
}

// Login verifies the credentials and issues an HS256 token carrying the
// member id, email and role. Lookup and password failures are folded into
// one answer so login cannot be used to probe for accounts.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	member, err := uc.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.now()
	expiresAt := now.Add(uc.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"member_id": member.ID,
		"email":     member.Email,
		"role":      string(member.Role),
		"iss":       uc.cfg.Issuer,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	uc.logger.Info("member logged in", zap.Int64("member_id", member.ID))
	return &LoginResult{Token: token, Member: member, ExpiresAt: expiresAt}, nil
}
