package main

import (
	"context"
	"database/sql"
	"errors"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nasik90/listmarket/cmd/listmarket/settings"
	"github.com/nasik90/listmarket/internal/app/catalog"
	"github.com/nasik90/listmarket/internal/app/handler"
	"github.com/nasik90/listmarket/internal/app/logger"
	middleware "github.com/nasik90/listmarket/internal/app/middlewares"
	"github.com/nasik90/listmarket/internal/app/nowpayments"
	"github.com/nasik90/listmarket/internal/app/server"
	"github.com/nasik90/listmarket/internal/app/service"
	"github.com/nasik90/listmarket/internal/app/storage/file"
	"github.com/nasik90/listmarket/internal/app/storage/pg"
	"go.uber.org/zap"
)

func main() {
	options := new(settings.Options)
	settingsErr := settings.ParseFlags(options)

	if err := logger.Initialize(options.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Log.Sync()
	if settingsErr != nil {
		logger.Log.Warn("ignored settings", zap.String("error", settingsErr.Error()))
	}

	repo, closeRepo := openRepository(options)
	defer closeRepo()

	cat, err := catalog.Load(options.CatalogFile, options.DataDir)
	if err != nil {
		logger.Log.Fatal("load catalog", zap.String("file", options.CatalogFile), zap.String("error", err.Error()))
	}

	if options.JWTSecret == "" {
		logger.Log.Warn("JWT_SECRET is not set, admin routes are disabled")
	}
	middleware.Configure(options.JWTSecret)
	if options.IPNSecret == "" {
		logger.Log.Warn("NOWPAYMENTS_IPN_SECRET is not set, crypto webhooks will be rejected")
	}

	gateway := nowpayments.NewClient(options.PaymentsAPIKey, nowpayments.WithBaseURL(options.PaymentsBaseURL))
	s := service.NewService(repo, cat, gateway,
		service.WithWebhook(options.WebhookURL, options.IPNSecret),
		service.WithAdmin(options.AdminLogin, options.AdminHash),
	)
	h := handler.NewHandler(s)
	serv := server.NewServer(h, options.ServerAddress)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		s.RunPaymentPoller(ctx, options.PollInterval)
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- serv.RunServer()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			logger.Log.Error("server stopped", zap.String("error", err.Error()))
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
	defer cancel()
	if err := serv.StopServer(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Error("stop server", zap.String("error", err.Error()))
	}
	<-pollerDone
}

func openRepository(options *settings.Options) (service.Repository, func()) {
	if options.DatabaseURI == "" {
		repo, err := file.NewStore(options.DBFile)
		if err != nil {
			logger.Log.Fatal("create file repo", zap.String("file", options.DBFile), zap.String("error", err.Error()))
		}
		logger.Log.Info("using file storage", zap.String("file", options.DBFile))
		return repo, func() {}
	}

	conn, err := sql.Open("pgx", options.DatabaseURI)
	if err != nil {
		logger.Log.Fatal("open pgx conn", zap.String("error", err.Error()))
	}
	repo, err := pg.NewStore(conn, options.MigrationsDir)
	if err != nil {
		logger.Log.Fatal("create pg repo", zap.String("error", err.Error()))
	}
	logger.Log.Info("using postgres storage")
	return repo, func() {
		if err := repo.Close(); err != nil {
			logger.Log.Error("close pg repo", zap.String("error", err.Error()))
		}
	}
}
