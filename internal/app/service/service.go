package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nasik90/listmarket/internal/app/catalog"
	"github.com/nasik90/listmarket/internal/app/nowpayments"
	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the durable document store. Update re-reads the document,
// applies fn and persists the result as one serialized step; nothing is
// written when fn fails.
type Repository interface {
	Load(ctx context.Context) (*storage.Document, error)
	Update(ctx context.Context, fn func(doc *storage.Document) error) error
}

type PaymentGateway interface {
	CreatePayment(ctx context.Context, req nowpayments.PaymentRequest) (*nowpayments.Payment, error)
	PaymentStatus(ctx context.Context, paymentID string) (*nowpayments.Payment, error)
}

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrLineSourceMissing   = fmt.Errorf("%w: line source missing", ErrProductNotFound)
	ErrOutOfStock          = errors.New("out of stock")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrUnsupportedCurrency = errors.New("unsupported crypto currency")
	ErrBelowMinimum        = errors.New("amount below minimum")
	ErrProvider            = errors.New("payment provider error")
	ErrAuthenticity        = errors.New("webhook signature mismatch")
)

// ValidationError reports input rejected before any state is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var MinDeposit = decimal.NewFromInt(10)

type Service struct {
	repo       Repository
	catalog    *catalog.Catalog
	ledger     *Ledger
	allocator  *Allocator
	reconciler *Reconciler

	adminLogin        string
	adminPasswordHash string
	now               func() time.Time
}

type Option func(*Service)

func WithWebhook(callbackURL, ipnSecret string) Option {
	return func(s *Service) {
		s.reconciler.callbackURL = callbackURL
		s.reconciler.ipnSecret = ipnSecret
	}
}

func WithAdmin(login, passwordHash string) Option {
	return func(s *Service) {
		s.adminLogin = login
		s.adminPasswordHash = passwordHash
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.reconciler.now = now
	}
}

func NewService(repo Repository, cat *catalog.Catalog, gateway PaymentGateway, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		catalog:    cat,
		ledger:     NewLedger(repo),
		allocator:  NewAllocator(repo, cat),
		reconciler: NewReconciler(repo, gateway),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Ledger() *Ledger {
	return s.ledger
}

func (s *Service) Allocator() *Allocator {
	return s.allocator
}

func (s *Service) Reconciler() *Reconciler {
	return s.reconciler
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*storage.User, error) {
	return s.ledger.User(ctx, userID)
}

func (s *Service) UserPurchases(ctx context.Context, userID int64) ([]storage.Sale, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	purchases := []storage.Sale{}
	for _, sale := range doc.Sales {
		if sale.UserID == userID {
			purchases = append(purchases, sale)
		}
	}
	return purchases, nil
}

// Deposit is the manual bank-style credit.
func (s *Service) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validateUserID(userID); err != nil {
		return decimal.Zero, err
	}
	if amount.LessThan(MinDeposit) {
		return decimal.Zero, ValidationError{Field: "amount", Message: "minimum deposit is " + MinDeposit.String()}
	}
	return s.ledger.Credit(ctx, userID, amount)
}

// AdminCredit credits any positive amount.
func (s *Service) AdminCredit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.ledger.Credit(ctx, userID, amount)
}

func (s *Service) NextLine(ctx context.Context, product string) (*Allocation, error) {
	a, err := s.allocator.Allocate(ctx, product)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) AdminIsValid(login, password string) bool {
	if s.adminLogin == "" || s.adminPasswordHash == "" || login != s.adminLogin {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)) == nil
}

func validateUserID(userID int64) error {
	if userID <= 0 {
		return ValidationError{Field: "user_id", Message: "must be positive"}
	}
	return nil
}
