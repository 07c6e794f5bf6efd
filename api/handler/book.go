package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/demandlane/booklending/api/transport"
	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/pkg/httpcontext"
	"github.com/demandlane/booklending/repository"
	bookUC "github.com/demandlane/booklending/usecase/book"
)

type BookHandler struct {
	baseHandler
	uc *bookUC.UseCase
}

func NewBookHandler(uc *bookUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List catalog books
// @Tags books
// @Router /api/v1/books [get]
func (h *BookHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.BookFilter{
		Title:  string(ctx.QueryArgs().Peek("title")),
		Author: string(ctx.QueryArgs().Peek("author")),
		ISBN:   string(ctx.QueryArgs().Peek("isbn")),
	}
	page := parsePage(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	books, total, err := h.uc.List(stdCtx, filter, page)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, books, transport.NewPageMeta(page.Number, page.Size, total))
}

// @Summary Get one book
// @Tags books
// @Router /api/v1/books/{id} [get]
func (h *BookHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid book id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	book, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, book)
}

// @Summary Add a book to the catalog
// @Tags books
// @Router /api/v1/books [post]
func (h *BookHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.BookRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	book := &domain.Book{}
	domain.BookPatch{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
	}.Apply(book)

	if book.Title == "" || book.ISBN == "" {
		h.respondInvalid(ctx, "title and isbn are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, book)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a book
// @Tags books
// @Router /api/v1/books/{id} [put]
func (h *BookHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid book id")
		return
	}

	var req transport.BookRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, id, domain.BookPatch{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Remove a book from the catalog
// @Tags books
// @Router /api/v1/books/{id} [delete]
func (h *BookHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid book id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
