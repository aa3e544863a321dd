package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nasik90/listmarket/internal/app/logger"
	"github.com/nasik90/listmarket/internal/app/nowpayments"
	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const priceCurrency = "eur"

type Currency struct {
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	Icon      string          `json:"icon"`
	MinAmount decimal.Decimal `json:"min_amount"`
	Network   string          `json:"network"`
	APICode   string          `json:"api_code"`
}

var supportedCurrencies = map[string]Currency{
	"btc": {Name: "Bitcoin", Symbol: "BTC", Icon: "₿", MinAmount: decimal.NewFromInt(10), Network: "Bitcoin", APICode: "btc"},
	"sol": {Name: "Solana", Symbol: "SOL", Icon: "🌞", MinAmount: decimal.NewFromInt(5), Network: "Solana", APICode: "sol"},
	"eth": {Name: "Ethereum", Symbol: "ETH", Icon: "⟠", MinAmount: decimal.NewFromInt(10), Network: "Ethereum", APICode: "eth"},
	"ltc": {Name: "Litecoin", Symbol: "LTC", Icon: "Ł", MinAmount: decimal.NewFromInt(5), Network: "Litecoin", APICode: "ltc"},
}

func SupportedCurrencies() map[string]Currency {
	out := make(map[string]Currency, len(supportedCurrencies))
	for code, c := range supportedCurrencies {
		out[code] = c
	}
	return out
}

func supportedCodes() []string {
	codes := make([]string, 0, len(supportedCurrencies))
	for code := range supportedCurrencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

type PaymentHandle struct {
	Success       bool                  `json:"success"`
	PaymentID     string                `json:"payment_id"`
	PayAddress    string                `json:"pay_address"`
	PayAmount     decimal.Decimal       `json:"pay_amount"`
	PayCurrency   string                `json:"pay_currency"`
	PriceAmount   decimal.Decimal       `json:"price_amount"`
	PriceCurrency string                `json:"price_currency"`
	OrderID       string                `json:"order_id"`
	PaymentStatus storage.PaymentStatus `json:"payment_status"`
	CryptoInfo    Currency              `json:"crypto_info"`
}

type StatusUpdate struct {
	PaymentID    string
	Status       storage.PaymentStatus
	ActuallyPaid *decimal.Decimal
}

// Reconciler turns payment provider state into ledger credits. The credited
// flag of a payment is flipped in the same Update as the credit, so a payment
// is credited at most once however many times its status is delivered.
type Reconciler struct {
	repo        Repository
	gateway     PaymentGateway
	callbackURL string
	ipnSecret   string
	now         func() time.Time
}

func NewReconciler(repo Repository, gateway PaymentGateway) *Reconciler {
	return &Reconciler{repo: repo, gateway: gateway, now: time.Now}
}

func (r *Reconciler) CreatePayment(ctx context.Context, userID int64, amountEUR decimal.Decimal, cryptoCurrency string) (*PaymentHandle, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	code := strings.ToLower(strings.TrimSpace(cryptoCurrency))
	info, ok := supportedCurrencies[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q, available: %s", ErrUnsupportedCurrency, cryptoCurrency, strings.Join(supportedCodes(), ", "))
	}
	if amountEUR.LessThan(info.MinAmount) {
		return nil, fmt.Errorf("%w: minimum for %s is %s EUR", ErrBelowMinimum, code, info.MinAmount)
	}

	now := r.now().UTC()
	orderID := fmt.Sprintf("user%d_%d", userID, now.Unix())
	req := nowpayments.PaymentRequest{
		PriceAmount:      amountEUR,
		PriceCurrency:    priceCurrency,
		PayCurrency:      info.APICode,
		OrderID:          orderID,
		OrderDescription: fmt.Sprintf("Deposit of %s EUR for user %d", amountEUR, userID),
	}
	if r.callbackURL != "" {
		req.IPNCallbackURL = strings.TrimRight(r.callbackURL, "/") + "/crypto/webhook"
	}

	// No store lock is held while the provider is called.
	p, err := r.gateway.CreatePayment(ctx, req)
	if err != nil {
		logger.Log.Error("create crypto payment", zap.Int64("user_id", userID), zap.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	status := storage.PaymentStatus(p.PaymentStatus)
	if !status.Valid() {
		status = storage.StatusWaiting
	}
	record := &storage.CryptoPayment{
		PaymentID:      string(p.PaymentID),
		UserID:         userID,
		OrderID:        orderID,
		AmountEUR:      amountEUR,
		CryptoCurrency: code,
		PayAmount:      p.PayAmount,
		PayAddress:     p.PayAddress,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = r.repo.Update(ctx, func(doc *storage.Document) error {
		if _, exists := doc.CryptoPayments[record.PaymentID]; exists {
			return fmt.Errorf("%w: duplicate payment id %s", ErrProvider, record.PaymentID)
		}
		doc.CryptoPayments[record.PaymentID] = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PaymentHandle{
		Success:       true,
		PaymentID:     record.PaymentID,
		PayAddress:    record.PayAddress,
		PayAmount:     record.PayAmount,
		PayCurrency:   strings.ToUpper(code),
		PriceAmount:   amountEUR,
		PriceCurrency: strings.ToUpper(priceCurrency),
		OrderID:       orderID,
		PaymentStatus: status,
		CryptoInfo:    info,
	}, nil
}

func (r *Reconciler) ApplyStatusUpdate(ctx context.Context, upd StatusUpdate) (*storage.CryptoPayment, error) {
	if !upd.Status.Valid() {
		return nil, ValidationError{Field: "payment_status", Message: fmt.Sprintf("unknown status %q", upd.Status)}
	}
	var (
		out      storage.CryptoPayment
		credited bool
	)
	err := r.repo.Update(ctx, func(doc *storage.Document) error {
		p, ok := doc.CryptoPayments[upd.PaymentID]
		if !ok || p == nil {
			return fmt.Errorf("%w: %s", ErrPaymentNotFound, upd.PaymentID)
		}
		credited = applyStatus(doc, p, upd, r.now().UTC())
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if credited {
		logger.Log.Info("crypto payment credited",
			zap.String("payment_id", out.PaymentID),
			zap.Int64("user_id", out.UserID),
			zap.String("amount_eur", out.AmountEUR.String()),
			zap.String("status", string(out.Status)),
		)
	}
	return &out, nil
}

// applyStatus reports whether the payment was credited by this update.
func applyStatus(doc *storage.Document, p *storage.CryptoPayment, upd StatusUpdate, now time.Time) bool {
	p.UpdatedAt = now
	if upd.ActuallyPaid != nil {
		paid := *upd.ActuallyPaid
		p.ActuallyPaid = &paid
	}
	if p.Status.Terminal() && upd.Status != p.Status {
		logger.Log.Warn("ignoring status change of settled payment",
			zap.String("payment_id", p.PaymentID),
			zap.String("status", string(p.Status)),
			zap.String("reported", string(upd.Status)),
		)
	} else {
		p.Status = upd.Status
	}
	if !p.Status.Creditable() || p.Credited {
		return false
	}
	credit(doc.User(p.UserID), p.AmountEUR)
	p.Credited = true
	p.CreditedAt = &now
	return true
}

// PollStatus asks the provider for the current status and applies it.
func (r *Reconciler) PollStatus(ctx context.Context, paymentID string) (*storage.CryptoPayment, error) {
	local, err := r.payment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	p, err := r.gateway.PaymentStatus(ctx, paymentID)
	if err != nil {
		logger.Log.Error("poll crypto payment", zap.String("payment_id", paymentID), zap.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	status := storage.PaymentStatus(p.PaymentStatus)
	if !status.Valid() {
		logger.Log.Warn("provider reported unknown payment status",
			zap.String("payment_id", paymentID), zap.String("status", p.PaymentStatus))
		return local, nil
	}
	return r.ApplyStatusUpdate(ctx, StatusUpdate{PaymentID: paymentID, Status: status, ActuallyPaid: p.ActuallyPaid})
}

// HandleWebhook verifies the IPN signature over the raw body before anything
// in it is trusted.
func (r *Reconciler) HandleWebhook(ctx context.Context, body []byte, signature string) (*storage.CryptoPayment, error) {
	if !nowpayments.VerifySignature(r.ipnSecret, body, signature) {
		logger.Log.Warn("rejected crypto webhook", zap.Bool("secret_configured", r.ipnSecret != ""), zap.Bool("signed", signature != ""))
		return nil, ErrAuthenticity
	}
	var p nowpayments.Payment
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, ValidationError{Field: "body", Message: err.Error()}
	}
	if p.PaymentID == "" {
		return nil, ValidationError{Field: "payment_id", Message: "is required"}
	}
	logger.Log.Info("crypto webhook received",
		zap.String("payment_id", string(p.PaymentID)), zap.String("status", p.PaymentStatus))
	status := storage.PaymentStatus(p.PaymentStatus)
	if !status.Valid() {
		// Acknowledged so the provider stops retrying; the record is left as is.
		logger.Log.Warn("webhook reported unknown payment status",
			zap.String("payment_id", string(p.PaymentID)), zap.String("status", p.PaymentStatus))
		return r.payment(ctx, string(p.PaymentID))
	}
	return r.ApplyStatusUpdate(ctx, StatusUpdate{
		PaymentID:    string(p.PaymentID),
		Status:       status,
		ActuallyPaid: p.ActuallyPaid,
	})
}

func (r *Reconciler) payment(ctx context.Context, paymentID string) (*storage.CryptoPayment, error) {
	doc, err := r.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := doc.CryptoPayments[paymentID]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}
	return p, nil
}

// UserPayments returns the user's payments, newest first.
func (r *Reconciler) UserPayments(ctx context.Context, userID int64) ([]storage.CryptoPayment, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	doc, err := r.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	payments := []storage.CryptoPayment{}
	for _, p := range doc.CryptoPayments {
		if p != nil && p.UserID == userID {
			payments = append(payments, *p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

// PendingPayments lists payments that are neither settled nor credited.
func (r *Reconciler) PendingPayments(ctx context.Context) ([]string, error) {
	doc, err := r.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for id, p := range doc.CryptoPayments {
		if p != nil && !p.Status.Terminal() && !p.Credited {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Run polls pending payments every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.PollPending(ctx)
		}
	}
}

func (r *Reconciler) PollPending(ctx context.Context) {
	ids, err := r.PendingPayments(ctx)
	if err != nil {
		logger.Log.Error("list pending payments", zap.String("error", err.Error()))
		return
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.PollStatus(ctx, id); err != nil {
			logger.Log.Error("payment status handling error", zap.String("payment_id", id), zap.String("error", err.Error()))
		}
	}
}
