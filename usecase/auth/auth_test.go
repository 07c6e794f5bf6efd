package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/repository"
)

type memberStore struct {
	members map[int64]*domain.Member
	nextID  int64
}

func newMemberStore() *memberStore {
	return &memberStore{members: make(map[int64]*domain.Member), nextID: 1}
}

func (s *memberStore) GetByID(_ context.Context, id int64) (*domain.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return m, nil
}

func (s *memberStore) GetByEmail(_ context.Context, email string) (*domain.Member, error) {
	for _, m := range s.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (s *memberStore) List(context.Context, repository.MemberFilter, repository.Page) ([]domain.Member, int64, error) {
	return nil, 0, nil
}

func (s *memberStore) Create(_ context.Context, m *domain.Member) error {
	m.ID = s.nextID
	s.nextID++
	s.members[m.ID] = m
	return nil
}

func (s *memberStore) Update(_ context.Context, m *domain.Member) error {
	s.members[m.ID] = m
	return nil
}

func (s *memberStore) SoftDelete(_ context.Context, id int64) error {
	delete(s.members, id)
	return nil
}

func (s *memberStore) CountAll(context.Context) (int64, error) {
	return int64(len(s.members)), nil
}

const testSecret = "test-secret"

func newTestUseCase(store *memberStore) *UseCase {
	return New(store, Config{JWTSecret: testSecret, Issuer: "booklending", TokenTTL: time.Hour}, nil)
}

func TestRegisterHashesPasswordAndAssignsMemberRole(t *testing.T) {
	store := newMemberStore()
	uc := newTestUseCase(store)

	member, err := uc.Register(context.Background(), "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleMember, member.Role)
	assert.NotEqual(t, "s3cret", member.PasswordHash)
	assert.NotEmpty(t, member.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := newMemberStore()
	uc := newTestUseCase(store)

	_, err := uc.Register(context.Background(), "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), "Eve", "ada@example.com", "other")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterRejectsBlankCredentials(t *testing.T) {
	uc := newTestUseCase(newMemberStore())

	_, err := uc.Register(context.Background(), "Ada", "", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = uc.Register(context.Background(), "Ada", "ada@example.com", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	store := newMemberStore()
	uc := newTestUseCase(store)
	issuedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return issuedAt }

	member, err := uc.Register(context.Background(), "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)

	result, err := uc.Login(context.Background(), "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, member.ID, result.Member.ID)
	assert.Equal(t, issuedAt.Add(time.Hour), result.ExpiresAt)

	parsed, err := jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(member.ID), claims["member_id"])
	assert.Equal(t, "ada@example.com", claims["email"])
	assert.Equal(t, "MEMBER", claims["role"])
	assert.Equal(t, "booklending", claims["iss"])
	assert.Equal(t, float64(issuedAt.Add(time.Hour).Unix()), claims["exp"])
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMemberStore()
	uc := newTestUseCase(store)

	_, err := uc.Register(context.Background(), "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmailFoldsIntoInvalidCredentials(t *testing.T) {
	uc := newTestUseCase(newMemberStore())

	_, err := uc.Login(context.Background(), "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
