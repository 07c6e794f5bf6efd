package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/demandlane/booklending/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	pool *pgxpool.Pool
}

func NewHealthHandler(pool *pgxpool.Pool, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		pool:        pool,
	}
}

// @Summary Service health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := h.pool.Ping(stdCtx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	h.respondSuccess(ctx, code, map[string]string{"status": status})
}
