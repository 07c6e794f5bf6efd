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
	memberUC "github.com/demandlane/booklending/usecase/member"
)

type MemberHandler struct {
	baseHandler
	uc *memberUC.UseCase
}

func NewMemberHandler(uc *memberUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List members
// @Tags members
// @Router /api/v1/members [get]
func (h *MemberHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.MemberFilter{
		Name:  string(ctx.QueryArgs().Peek("name")),
		Email: string(ctx.QueryArgs().Peek("email")),
		Role:  string(ctx.QueryArgs().Peek("role")),
	}
	page := parsePage(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	members, total, err := h.uc.List(stdCtx, filter, page)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, members, transport.NewPageMeta(page.Number, page.Size, total))
}

// @Summary Get one member
// @Tags members
// @Router /api/v1/members/{id} [get]
func (h *MemberHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid member id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	member, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, member)
}

// @Summary Update a member
// @Tags members
// @Router /api/v1/members/{id} [put]
func (h *MemberHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid member id")
		return
	}

	var req transport.MemberRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	patch := domain.MemberPatch{
		Name:  req.Name,
		Email: req.Email,
	}
	if req.Role != nil {
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			h.respondInvalid(ctx, "unknown role")
			return
		}
		patch.Role = &role
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

// @Summary Remove a member
// @Tags members
// @Router /api/v1/members/{id} [delete]
func (h *MemberHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "invalid member id")
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
