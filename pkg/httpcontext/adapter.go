// Package httpcontext bridges fasthttp request handling and the stdlib
// context used by the use case layer.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/demandlane/booklending/pkg/logger"
)

// Adapter derives a deadline-bound stdlib context from a fasthttp request,
// propagating the request id for log correlation.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach returns a context that expires with the adapter's timeout. The
// request id is taken from the X-Request-ID header when the client sent
// one, generated otherwise, and echoed back on the response.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	id := requestID(ctx)
	ctx.Response.Header.Set("X-Request-ID", id)
	return logger.ContextWithRequestID(stdCtx, id), cancel
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if ctx != nil {
		if header := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID"))); header != "" {
			return header
		}
	}
	return uuid.NewString()
}
