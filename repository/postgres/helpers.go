package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration

	"github.com/demandlane/booklending/pkg/filterquery"
	"github.com/demandlane/booklending/repository"
)

var dialect = goqu.Dialect("postgres")

// listQuery builds the paged select and matching count statement for a
// translated predicate set. Ordering by id keeps listings stable.
func listQuery(table string, columns []any, where []goqu.Expression, page repository.Page) (listSQL string, listArgs []any, countSQL string, countArgs []any, err error) {
	listSQL, listArgs, err = dialect.From(table).
		Select(columns...).
		Where(where...).
		Order(goqu.C("id").Asc()).
		Limit(page.Limit()).
		Offset(page.Offset()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}

	countSQL, countArgs, err = dialect.From(table).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}
	return listSQL, listArgs, countSQL, countArgs, nil
}

func countRows(ctx context.Context, q querier, countSQL string, countArgs []any) (int64, error) {
	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// translate is a small alias to keep the repositories readable.
func translate(schema filterquery.Schema, fields []filterquery.Field) []goqu.Expression {
	return filterquery.Translate(schema, fields)
}
