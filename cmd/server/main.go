package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/demandlane/booklending/api/handler"
	"github.com/demandlane/booklending/internal/config"
	pgInfra "github.com/demandlane/booklending/internal/infrastructure/postgres"
	"github.com/demandlane/booklending/internal/middleware"
	"github.com/demandlane/booklending/internal/router"
	"github.com/demandlane/booklending/internal/services"
	"github.com/demandlane/booklending/internal/services/lifecycle"
	"github.com/demandlane/booklending/pkg/httpcontext"
	"github.com/demandlane/booklending/pkg/logger"
	"github.com/demandlane/booklending/repository/postgres"
	authUC "github.com/demandlane/booklending/usecase/auth"
	bookUC "github.com/demandlane/booklending/usecase/book"
	loanUC "github.com/demandlane/booklending/usecase/loan"
	memberUC "github.com/demandlane/booklending/usecase/member"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	memberRepo := postgres.NewMemberRepository(pool)
	bookRepo := postgres.NewBookRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	ledger := postgres.NewInventoryLedger(pool)
	txManager := postgres.NewTxManager(pool)

	seeder := services.NewSeeder(memberRepo, cfg.Seed, zapLogger)
	if err := seeder.Run(appCtx); err != nil {
		zapLogger.Fatal("seeding failed", zap.Error(err))
	}

	authUseCase := authUC.New(memberRepo, authUC.Config{
		JWTSecret: cfg.JWT.Secret,
		Issuer:    cfg.JWT.Issuer,
		TokenTTL:  cfg.JWT.TokenTTL,
	}, zapLogger)
	bookUseCase := bookUC.New(bookRepo, zapLogger)
	memberUseCase := memberUC.New(memberRepo, zapLogger)
	loanUseCase := loanUC.New(loanRepo, bookRepo, memberRepo, ledger, txManager, loanUC.Config{
		MaxActiveLoans:   cfg.Library.MaxActiveLoans,
		LoanDurationDays: cfg.Library.LoanDurationDays,
	}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Book:   apiHandler.NewBookHandler(bookUseCase, ctxAdapter, zapLogger),
		Member: apiHandler.NewMemberHandler(memberUseCase, ctxAdapter, zapLogger),
		Loan:   apiHandler.NewLoanHandler(loanUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(pool, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
