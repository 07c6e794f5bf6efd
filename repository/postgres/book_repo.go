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

var bookSchema = filterquery.NewSchema(map[string]filterquery.Column{
	"title":  {Name: "title", Kind: filterquery.Text},
	"author": {Name: "author", Kind: filterquery.Text},
	"isbn":   {Name: "isbn", Kind: filterquery.Text},
})

var bookColumns = []any{
	"id", "title", "author", "isbn", "total_copies", "available_copies",
	"created_at", "updated_at",
}

type bookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository returns a Postgres-backed implementation of BookRepository.
func NewBookRepository(pool *pgxpool.Pool) repository.BookRepository {
	return &bookRepository{pool: pool}
}

const bookSelect = `
	SELECT id, title, author, isbn, total_copies, available_copies, created_at, updated_at
	FROM books
	WHERE id = $1 AND deleted_at IS NULL
`

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, bookSelect, id)
	return scanBook(row)
}

func (r *bookRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Book, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, bookSelect+" FOR UPDATE", id)
	return scanBook(row)
}

func (r *bookRepository) List(ctx context.Context, filter repository.BookFilter, page repository.Page) ([]domain.Book, int64, error) {
	where := translate(bookSchema, filter.Fields())
	listSQL, listArgs, countSQL, countArgs, err := listQuery("books", bookColumns, where, page)
	if err != nil {
		return nil, 0, err
	}

	q := conn(ctx, r.pool)
	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, q, countSQL, countArgs)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO books (title, author, isbn, total_copies, available_copies)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		book.Title,
		book.Author,
		book.ISBN,
		book.TotalCopies,
		book.AvailableCopies,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE books
	SET title = $2,
		author = $3,
		isbn = $4,
		total_copies = $5,
		available_copies = $6,
		updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL
	RETURNING updated_at
	`
	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.TotalCopies,
		book.AvailableCopies,
	).Scan(&book.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookNotFound
		}
		return err
	}
	return nil
}

func (r *bookRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `
	UPDATE books
	SET deleted_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	var book domain.Book
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.CreatedAt,
		&book.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}
