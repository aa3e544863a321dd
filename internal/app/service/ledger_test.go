package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/nasik90/listmarket/internal/app/service"
	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedger_UserIsCreatedOnFirstReference(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := service.NewLedger(store)

	u, err := l.User(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.UserID)
	assert.Equal(t, storage.TierMember, u.Grade)
	assert.True(t, u.Balance.IsZero())

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, doc.Users, "7")
}

func TestLedger_CreditDebit(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := service.NewLedger(store)

	balance, err := l.Credit(ctx, 1, dec("20"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("20")))

	balance, err = l.Debit(ctx, 1, dec("15"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("5")))

	_, err = l.Debit(ctx, 1, dec("15"))
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	require.NoError(t, l.RecordPurchase(ctx, 1))

	u, err := l.User(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(dec("5")), "balance %s", u.Balance)
	assert.True(t, u.TotalDeposits.Equal(dec("20")))
	assert.Equal(t, 1, u.TotalPurchases)
}

func TestLedger_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	l := service.NewLedger(newStore(t))

	tests := []struct {
		name   string
		userID int64
		amount decimal.Decimal
	}{
		{name: "zero amount", userID: 1, amount: decimal.Zero},
		{name: "negative amount", userID: 1, amount: dec("-5")},
		{name: "bad user id", userID: 0, amount: dec("5")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Credit(ctx, tt.userID, tt.amount)
			var verr service.ValidationError
			assert.ErrorAs(t, err, &verr)

			_, err = l.Debit(ctx, tt.userID, tt.amount)
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestLedger_ConcurrentCreditsAreNotLost(t *testing.T) {
	ctx := context.Background()
	l := service.NewLedger(newStore(t))

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Credit(ctx, 3, dec("1.5"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u, err := l.User(ctx, 3)
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(dec("37.5")), "balance %s", u.Balance)
	assert.True(t, u.TotalDeposits.Equal(dec("37.5")))
}

func TestLedger_BalanceNeverNegative(t *testing.T) {
	ctx := context.Background()
	l := service.NewLedger(newStore(t))
	_, err := l.Credit(ctx, 9, dec("10"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Debit(ctx, 9, dec("3"))
		}()
	}
	wg.Wait()

	u, err := l.User(ctx, 9)
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(dec("1")), "balance %s", u.Balance)
}
