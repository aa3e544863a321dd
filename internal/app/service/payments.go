package service

import (
	"context"
	"time"

	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/shopspring/decimal"
)

func (s *Service) Currencies() map[string]Currency {
	return SupportedCurrencies()
}

func (s *Service) CreatePayment(ctx context.Context, userID int64, amountEUR decimal.Decimal, cryptoCurrency string) (*PaymentHandle, error) {
	return s.reconciler.CreatePayment(ctx, userID, amountEUR, cryptoCurrency)
}

func (s *Service) PaymentStatus(ctx context.Context, paymentID string) (*storage.CryptoPayment, error) {
	return s.reconciler.PollStatus(ctx, paymentID)
}

func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (*storage.CryptoPayment, error) {
	return s.reconciler.HandleWebhook(ctx, body, signature)
}

func (s *Service) UserPayments(ctx context.Context, userID int64) ([]storage.CryptoPayment, error) {
	return s.reconciler.UserPayments(ctx, userID)
}

// RunPaymentPoller blocks until ctx is done. A non-positive interval disables
// polling.
func (s *Service) RunPaymentPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.reconciler.Run(ctx, interval)
}
