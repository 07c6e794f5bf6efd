package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/demandlane/booklending/api/handler"
	"github.com/demandlane/booklending/internal/middleware"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Book   *apiHandler.BookHandler
	Member *apiHandler.MemberHandler
	Loan   *apiHandler.LoanHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	admin := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return authMiddleware(middleware.RequireAdmin(h))
	}

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)

	// Catalog
	r.GET("/api/v1/books", authMiddleware(handlers.Book.List))
	r.GET("/api/v1/books/{id}", authMiddleware(handlers.Book.Get))
	r.POST("/api/v1/books", admin(handlers.Book.Create))
	r.PUT("/api/v1/books/{id}", admin(handlers.Book.Update))
	r.DELETE("/api/v1/books/{id}", admin(handlers.Book.Delete))

	// Membership
	r.GET("/api/v1/members", admin(handlers.Member.List))
	r.GET("/api/v1/members/{id}", admin(handlers.Member.Get))
	r.PUT("/api/v1/members/{id}", admin(handlers.Member.Update))
	r.DELETE("/api/v1/members/{id}", admin(handlers.Member.Delete))

	// Lending
	r.GET("/api/v1/loans", admin(handlers.Loan.List))
	r.GET("/api/v1/loans/owned", authMiddleware(handlers.Loan.ListOwned))
	r.GET("/api/v1/loans/{id}", authMiddleware(handlers.Loan.Get))
	r.POST("/api/v1/loans/borrow", authMiddleware(handlers.Loan.Borrow))
	r.POST("/api/v1/loans/{id}/return", authMiddleware(handlers.Loan.Return))
	r.POST("/api/v1/loans", admin(handlers.Loan.Create))
	r.PUT("/api/v1/loans/{id}", admin(handlers.Loan.Update))
	r.DELETE("/api/v1/loans/{id}", admin(handlers.Loan.Delete))

	return r
}
