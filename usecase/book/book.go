// Package book implements catalog administration.
package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/repository"
)

type UseCase struct {
	books  repository.BookRepository
	logger *zap.Logger
}

func New(books repository.BookRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{books: books, logger: logger}
}

func (uc *UseCase) List(ctx context.Context, filter repository.BookFilter, page repository.Page) ([]domain.Book, int64, error) {
	return uc.books.List(ctx, filter, page)
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.Book, error) {
	return uc.books.GetByID(ctx, id)
}

func (uc *UseCase) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, domain.ErrInvalidPayload
	}
	if book.AvailableCopies == 0 {
		book.AvailableCopies = book.TotalCopies
	}
	if err := uc.books.Create(ctx, book); err != nil {
		return nil, err
	}
	uc.logger.Info("book created", zap.Int64("book_id", book.ID), zap.String("isbn", book.ISBN))
	return book, nil
}

// Update applies a partial edit; nil patch fields keep existing values.
func (uc *UseCase) Update(ctx context.Context, id int64, patch domain.BookPatch) (*domain.Book, error) {
	book, err := uc.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(book)
	if err := uc.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.books.SoftDelete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("book deleted", zap.Int64("book_id", id))
	return nil
}
