package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/nasik90/listmarket/internal/app/handler"
	"github.com/nasik90/listmarket/internal/app/logger"
	middleware "github.com/nasik90/listmarket/internal/app/middlewares"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	handler *handler.Handler
}

func NewServer(handler *handler.Handler, serverAddress string) *Server {
	s := &Server{}
	s.Addr = serverAddress
	s.handler = handler
	s.Handler = logger.RequestLogger(middleware.GzipMiddleware(s.Router().ServeHTTP))
	return s
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/user/{id}", s.handler.GetUser())
	r.Get("/user/{id}/purchases", s.handler.GetUserPurchases())
	r.Get("/products", s.handler.GetProducts())
	r.Post("/purchase", s.handler.Purchase())
	r.Post("/deposit", s.handler.Deposit())
	r.Get("/next_line/{product}", middleware.Auth(s.handler.NextLine()))

	r.Route("/crypto", func(r chi.Router) {
		r.Get("/currencies", s.handler.GetCurrencies())
		r.Post("/create-payment", s.handler.CreatePayment())
		r.Get("/payment-status/{payment_id}", s.handler.PaymentStatus())
		r.Post("/webhook", s.handler.Webhook())
		r.Get("/user-payments/{user_id}", s.handler.GetUserPayments())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.handler.AdminLogin())
		r.Post("/credit", middleware.Auth(s.handler.AdminCredit()))
		r.Get("/stats", middleware.Auth(s.handler.AdminStats()))
	})
	return r
}

func (s *Server) RunServer() error {
	logger.Log.Info("Running server", zap.String("address", s.Addr))
	err := s.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) StopServer(ctx context.Context) error {
	return s.Shutdown(ctx)
}
