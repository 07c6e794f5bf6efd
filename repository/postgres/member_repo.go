package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/pkg/filterquery"
	"github.com/demandlane/booklending/repository"
)

var memberSchema = filterquery.NewSchema(map[string]filterquery.Column{
	"name":  {Name: "name", Kind: filterquery.Text},
	"email": {Name: "email", Kind: filterquery.Text},
	"role":  {Name: "role", Kind: filterquery.Enum, Values: []string{string(domain.RoleAdmin), string(domain.RoleMember)}},
})

var memberColumns = []any{
	"id", "name", "email", "password_hash", "role", "created_at", "updated_at",
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed implementation of MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) repository.MemberRepository {
	return &memberRepository{pool: pool}
}

func (r *memberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	const query = `
	SELECT id, name, email, password_hash, role, created_at, updated_at
	FROM members
	WHERE id = $1 AND deleted_at IS NULL
	`
	row := conn(ctx, r.pool).QueryRow(ctx, query, id)
	return scanMember(row)
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	const query = `
	SELECT id, name, email, password_hash, role, created_at, updated_at
	FROM members
	WHERE email = $1 AND deleted_at IS NULL
	`
	row := conn(ctx, r.pool).QueryRow(ctx, query, email)
	return scanMember(row)
}

func (r *memberRepository) List(ctx context.Context, filter repository.MemberFilter, page repository.Page) ([]domain.Member, int64, error) {
	where := translate(memberSchema, filter.Fields())
	listSQL, listArgs, countSQL, countArgs, err := listQuery("members", memberColumns, where, page)
	if err != nil {
		return nil, 0, err
	}

	q := conn(ctx, r.pool)
	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, q, countSQL, countArgs)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO members (name, email, password_hash, role)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, updated_at
	`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		member.Name,
		member.Email,
		member.PasswordHash,
		member.Role,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE members
	SET name = $2,
		email = $3,
		password_hash = $4,
		role = $5,
		updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL
	RETURNING updated_at
	`
	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		member.ID,
		member.Name,
		member.Email,
		member.PasswordHash,
		member.Role,
	).Scan(&member.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrMemberNotFound
		}
		return err
	}
	return nil
}

func (r *memberRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `
	UPDATE members
	SET deleted_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *memberRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var member domain.Member
	if err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Email,
		&member.PasswordHash,
		&member.Role,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}
