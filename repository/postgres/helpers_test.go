package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandlane/booklending/repository"
)

func TestListQueryBuildsPagedSelectAndCount(t *testing.T) {
	where := translate(loanSchema, repository.LoanFilter{MemberID: ptr(int64(7))}.Fields())

	listSQL, listArgs, countSQL, countArgs, err := listQuery("loans", loanColumns, where, repository.Page{Number: 2, Size: 20})
	require.NoError(t, err)

	assert.Contains(t, listSQL, `FROM "loans"`)
	assert.Contains(t, listSQL, `"deleted_at" IS NULL`)
	assert.Contains(t, listSQL, `"member_id" = $1`)
	assert.Contains(t, listSQL, `ORDER BY "id" ASC`)
	assert.Contains(t, listSQL, "LIMIT")
	assert.Contains(t, listSQL, "OFFSET")
	require.NotEmpty(t, listArgs)
	assert.Equal(t, int64(7), listArgs[0])

	assert.Contains(t, countSQL, `COUNT(*)`)
	assert.Contains(t, countSQL, `"member_id" = $1`)
	assert.NotContains(t, countSQL, "LIMIT")
	require.NotEmpty(t, countArgs)
	assert.Equal(t, int64(7), countArgs[0])
}

func TestListQueryFilterSchemasIgnoreBlankFields(t *testing.T) {
	where := translate(bookSchema, repository.BookFilter{Title: "clean"}.Fields())

	listSQL, _, _, _, err := listQuery("books", bookColumns, where, repository.Page{})
	require.NoError(t, err)

	assert.Contains(t, listSQL, `"title" ILIKE $1`)
	assert.NotContains(t, listSQL, "author")
	assert.NotContains(t, listSQL, "isbn")
}

func TestMemberSchemaDropsUnknownRole(t *testing.T) {
	where := translate(memberSchema, repository.MemberFilter{Role: "librarian"}.Fields())

	// soft-delete guard only
	assert.Len(t, where, 1)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isRetryable(errors.New("boom")))
}

func ptr[T any](v T) *T { return &v }
