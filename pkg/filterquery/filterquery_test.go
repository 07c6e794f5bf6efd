package filterquery_test

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandlane/booklending/pkg/filterquery"
)

var bookSchema = filterquery.NewSchema(map[string]filterquery.Column{
	"title":  {Name: "title", Kind: filterquery.Text},
	"author": {Name: "author", Kind: filterquery.Text},
	"isbn":   {Name: "isbn", Kind: filterquery.Text},
})

var memberSchema = filterquery.NewSchema(map[string]filterquery.Column{
	"name":  {Name: "name", Kind: filterquery.Text},
	"email": {Name: "email", Kind: filterquery.Text},
	"role":  {Name: "role", Kind: filterquery.Enum, Values: []string{"ADMIN", "MEMBER"}},
})

var loanSchema = filterquery.NewSchema(map[string]filterquery.Column{
	"memberId": {Name: "member_id", Kind: filterquery.Relation},
	"bookId":   {Name: "book_id", Kind: filterquery.Relation},
})

func render(t *testing.T, table string, exprs []goqu.Expression) string {
	t.Helper()
	sql, _, err := goqu.Dialect("postgres").From(table).Select("id").Where(exprs...).ToSQL()
	require.NoError(t, err)
	return sql
}

func TestTranslateAlwaysIncludesSoftDeleteGuard(t *testing.T) {
	exprs := filterquery.Translate(bookSchema, nil)

	require.Len(t, exprs, 1)
	assert.Contains(t, render(t, "books", exprs), `"deleted_at" IS NULL`)
}

func TestTranslateTextFieldBecomesSubstringMatch(t *testing.T) {
	exprs := filterquery.Translate(bookSchema, []filterquery.Field{
		filterquery.String("title", "clean"),
		filterquery.String("isbn", ""),
	})

	require.Len(t, exprs, 2) // guard + title only, blank isbn contributes nothing
	sql := render(t, "books", exprs)
	assert.Contains(t, sql, `"title" ILIKE '%clean%'`)
	assert.NotContains(t, sql, "isbn")
}

func TestTranslateRelationFieldMatchesForeignKey(t *testing.T) {
	memberID := int64(7)
	exprs := filterquery.Translate(loanSchema, []filterquery.Field{
		filterquery.ID("memberId", &memberID),
		filterquery.ID("bookId", nil),
	})

	require.Len(t, exprs, 2)
	sql := render(t, "loans", exprs)
	assert.Contains(t, sql, `"member_id" = 7`)
	assert.NotContains(t, sql, "book_id")
}

func TestTranslateEnumFieldNormalizesCase(t *testing.T) {
	exprs := filterquery.Translate(memberSchema, []filterquery.Field{
		filterquery.String("role", "admin"),
	})

	require.Len(t, exprs, 2)
	assert.Contains(t, render(t, "members", exprs), `"role" = 'ADMIN'`)
}

func TestTranslateUnknownEnumValueIsDropped(t *testing.T) {
	exprs := filterquery.Translate(memberSchema, []filterquery.Field{
		filterquery.String("role", "superuser"),
	})

	require.Len(t, exprs, 1)
}

func TestTranslateUnknownFieldIsIgnored(t *testing.T) {
	exprs := filterquery.Translate(bookSchema, []filterquery.Field{
		filterquery.String("publisher", "acme"),
	})

	require.Len(t, exprs, 1)
}

func TestTranslateIsDeterministic(t *testing.T) {
	fields := []filterquery.Field{
		filterquery.String("title", "go"),
		filterquery.String("author", "donovan"),
	}

	first := render(t, "books", filterquery.Translate(bookSchema, fields))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, render(t, "books", filterquery.Translate(bookSchema, fields)))
	}
}
