package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nasik90/listmarket/internal/app/catalog"
	"github.com/nasik90/listmarket/internal/app/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestService_Deposit(t *testing.T) {
	ctx := context.Background()
	s, _ := newShop(t, product("X", "1", "a"))

	tests := []struct {
		name    string
		amount  string
		wantErr bool
		balance string
	}{
		{name: "below minimum", amount: "9.99", wantErr: true, balance: "0"},
		{name: "minimum", amount: "10", balance: "10"},
		{name: "above minimum", amount: "25.5", balance: "35.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, err := s.Deposit(ctx, 4, dec(tt.amount))
			if tt.wantErr {
				var verr service.ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				require.NoError(t, err)
				assert.True(t, balance.Equal(dec(tt.balance)), "balance %s", balance)
			}
			u, err := s.GetUser(ctx, 4)
			require.NoError(t, err)
			assert.True(t, u.Balance.Equal(dec(tt.balance)))
		})
	}
}

func TestService_AdminCreditHasNoMinimum(t *testing.T) {
	ctx := context.Background()
	s, _ := newShop(t, product("X", "1", "a"))

	balance, err := s.AdminCredit(ctx, 4, dec("0.5"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("0.5")))

	_, err = s.AdminCredit(ctx, 4, decimal.Zero)
	var verr service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestService_ProductsAndStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newShop(t,
		product("Num List", "4", "a", "b", "c"),
		catalog.Product{
			Name:        "Mail List",
			Price:       decimal.NewFromInt(4),
			Description: "emails",
			Source:      catalog.FileSource{Path: filepath.Join(t.TempDir(), "missing.txt")},
		},
	)
	_, err := s.Deposit(ctx, 1, dec("10"))
	require.NoError(t, err)
	_, err = s.Purchase(ctx, 1, "Num List")
	require.NoError(t, err)

	products, err := s.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Num List", products[0].Filename)
	assert.Equal(t, 2, products[0].Available)
	assert.Equal(t, "Mail List", products[1].Filename)
	assert.Equal(t, 0, products[1].Available)
	assert.Equal(t, "emails", products[1].Description)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Users)
	assert.Equal(t, 1, st.Sales)
	assert.Equal(t, 1, st.TotalPurchases)
	assert.Equal(t, 2, st.TotalStock)
	assert.True(t, st.TotalBalance.Equal(dec("6")))
	assert.True(t, st.TotalDeposits.Equal(dec("10")))
	assert.True(t, st.Revenue.Equal(dec("4")))
}

func TestService_NextLine(t *testing.T) {
	ctx := context.Background()
	s, _ := newShop(t, product("X", "1", "a"))

	got, err := s.NextLine(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, &service.Allocation{Index: 0, Line: "a"}, got)

	_, err = s.NextLine(ctx, "X")
	assert.ErrorIs(t, err, service.ErrOutOfStock)
}

func TestService_AdminIsValid(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	s := service.NewService(newStore(t), newCatalog(t), nil, service.WithAdmin("admin", string(hash)))

	assert.True(t, s.AdminIsValid("admin", "s3cret"))
	assert.False(t, s.AdminIsValid("admin", "wrong"))
	assert.False(t, s.AdminIsValid("root", "s3cret"))

	unconfigured := service.NewService(newStore(t), newCatalog(t), nil)
	assert.False(t, unconfigured.AdminIsValid("", ""))
}
