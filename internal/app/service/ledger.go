package service

import (
	"context"
	"strconv"

	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/shopspring/decimal"
)

// Ledger keeps user balances and counters. Every operation re-reads the user
// from the Repository inside the same Update that persists the change.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// User returns the user, creating and persisting it on first reference.
func (l *Ledger) User(ctx context.Context, userID int64) (*storage.User, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	doc, err := l.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if u, ok := doc.Users[userKey(userID)]; ok && u != nil {
		return u, nil
	}
	var user storage.User
	err = l.repo.Update(ctx, func(doc *storage.Document) error {
		user = *doc.User(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (l *Ledger) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validateUserID(userID); err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, ValidationError{Field: "amount", Message: "must be positive"}
	}
	var balance decimal.Decimal
	err := l.repo.Update(ctx, func(doc *storage.Document) error {
		u := doc.User(userID)
		credit(u, amount)
		balance = u.Balance
		return nil
	})
	return balance, err
}

func (l *Ledger) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validateUserID(userID); err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, ValidationError{Field: "amount", Message: "must be positive"}
	}
	var balance decimal.Decimal
	err := l.repo.Update(ctx, func(doc *storage.Document) error {
		u := doc.User(userID)
		if err := debit(u, amount); err != nil {
			return err
		}
		balance = u.Balance
		return nil
	})
	return balance, err
}

func (l *Ledger) RecordPurchase(ctx context.Context, userID int64) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	return l.repo.Update(ctx, func(doc *storage.Document) error {
		doc.User(userID).TotalPurchases++
		return nil
	})
}

func credit(u *storage.User, amount decimal.Decimal) {
	u.Balance = u.Balance.Add(amount)
	u.TotalDeposits = u.TotalDeposits.Add(amount)
}

// debit leaves u untouched when the balance does not cover amount.
func debit(u *storage.User, amount decimal.Decimal) error {
	if u.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	u.Balance = u.Balance.Sub(amount)
	return nil
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
