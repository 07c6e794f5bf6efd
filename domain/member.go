package domain

import (
	"strings"
	"time"
)

// Role classifies a member account.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ParseRole normalizes a role string. Unknown values return false.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMember:
		return RoleMember, true
	default:
		return "", false
	}
}

// Member represents a registered library account.
type Member struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// MemberPatch carries optional field overrides for partial updates.
type MemberPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
}

func (p MemberPatch) Apply(m *Member) {
	if m == nil {
		return
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Email != nil {
		m.Email = *p.Email
	}
	if p.PasswordHash != nil {
		m.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		m.Role = *p.Role
	}
}
