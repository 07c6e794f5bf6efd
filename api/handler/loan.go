package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/demandlane/booklending/api/transport"
	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/pkg/httpcontext"
	"github.com/demandlane/booklending/repository"
	loanUC "github.com/demandlane/booklending/usecase/loan"
)

type LoanHandler struct {
	baseHandler
	uc *loanUC.UseCase
}

func NewLoanHandler(uc *loanUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List all loans
// @Tags loans
// @Router /api/v1/loans [get]
func (h *LoanHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.LoanFilter{
		MemberID: queryInt64(ctx, "member_id"),
		BookID:   queryInt64(ctx, "book_id"),
	}
	h.list(ctx, filter)
}

// @Summary List the requester's own loans
// @Tags loans
// @Router /api/v1/loans/owned [get]
func (h *LoanHandler) ListOwned(ctx *fasthttp.RequestCtx) {
	memberID, ok := h.memberID(ctx)
	if !ok {
		return
	}
	filter := repository.LoanFilter{
		MemberID: &memberID,
		BookID:   queryInt64(ctx, "book_id"),
	}
	h.list(ctx, filter)
}

func (h *LoanHandler) list(ctx *fasthttp.RequestCtx, filter repository.LoanFilter) {
	page := parsePage(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	loans, total, err := h.uc.List(stdCtx, filter, page)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, loans, transport.NewPageMeta(page.Number, page.Size, total))
}

// @Summary Get one loan
// @Tags loans
// @Router /api/v1/loans/{id} [get]
func (h *LoanHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid loan id")
		return
	}
	memberID, ok := h.memberID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	loan, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if !h.isAdmin(ctx) && loan.MemberID != memberID {
		h.respondError(ctx, domain.ErrAccessDenied)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, loan)
}

// @Summary Borrow a book
// @Tags loans
// @Router /api/v1/loans/borrow [post]
func (h *LoanHandler) Borrow(ctx *fasthttp.RequestCtx) {
	memberID, ok := h.memberID(ctx)
	if !ok {
		return
	}

	var req transport.BorrowRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.BookID <= 0 {
		h.respondInvalid(ctx, "book_id is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	loan, err := h.uc.Borrow(stdCtx, memberID, req.BookID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, loan)
}

// @Summary Return a borrowed book
// @Tags loans
// @Router /api/v1/loans/{id}/return [post]
func (h *LoanHandler) Return(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid loan id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	loan, err := h.uc.Return(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, loan)
}

// @Summary Create a loan record directly
// @Tags loans
// @Router /api/v1/loans [post]
func (h *LoanHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.LoanRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if req.MemberID == nil || req.BookID == nil {
		h.respondInvalid(ctx, "member_id and book_id are required")
		return
	}

	loan := &domain.Loan{MemberID: *req.MemberID, BookID: *req.BookID}
	if t := parseTimestamp(req.BorrowedAt); t != nil {
		loan.BorrowedAt = *t
	}
	if t := parseTimestamp(req.DueDate); t != nil {
		loan.DueDate = *t
	}
	loan.ReturnedAt = parseTimestamp(req.ReturnedAt)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, loan)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a loan record directly
// @Tags loans
// @Router /api/v1/loans/{id} [put]
func (h *LoanHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid loan id")
		return
	}

	var req transport.LoanRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	patch := domain.LoanPatch{
		MemberID:   req.MemberID,
		BookID:     req.BookID,
		BorrowedAt: parseTimestamp(req.BorrowedAt),
		DueDate:    parseTimestamp(req.DueDate),
		ReturnedAt: parseTimestamp(req.ReturnedAt),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a loan record
// @Tags loans
// @Router /api/v1/loans/{id} [delete]
func (h *LoanHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid loan id")
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

func parseTimestamp(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil
	}
	return &parsed
}
