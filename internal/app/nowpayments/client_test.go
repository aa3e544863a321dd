package nowpayments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient("test-key", WithBaseURL(url), WithRetry(3, time.Millisecond))
}

func TestClient_CreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 50.0, body["price_amount"])
		assert.Equal(t, "eur", body["price_currency"])
		assert.Equal(t, "btc", body["pay_currency"])
		assert.Equal(t, "user1_100", body["order_id"])

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"payment_id": 5077125051, "payment_status": "waiting",
			"pay_address": "bc1qxyz", "pay_amount": 0.00081, "pay_currency": "btc"}`)
	}))
	defer srv.Close()

	p, err := newTestClient(srv.URL).CreatePayment(context.Background(), PaymentRequest{
		PriceAmount:   decimal.NewFromInt(50),
		PriceCurrency: "eur",
		PayCurrency:   "btc",
		OrderID:       "user1_100",
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentID("5077125051"), p.PaymentID)
	assert.Equal(t, "waiting", p.PaymentStatus)
	assert.Equal(t, "bc1qxyz", p.PayAddress)
	assert.True(t, p.PayAmount.Equal(decimal.RequireFromString("0.00081")))
	assert.Nil(t, p.ActuallyPaid)
}

func TestClient_RetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"payment_id": "abc", "payment_status": "finished", "actually_paid": 0.5}`)
	}))
	defer srv.Close()

	p, err := newTestClient(srv.URL).PaymentStatus(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "finished", p.PaymentStatus)
	require.NotNil(t, p.ActuallyPaid)
	assert.Equal(t, "0.5", p.ActuallyPaid.String())
}

func TestClient_GivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PaymentStatus(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_RejectedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message": "amountTo is too small"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreatePayment(context.Background(), PaymentRequest{PriceAmount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, int32(1), calls.Load())
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"payment_id":1,"payment_status":"finished"}`)
	sig := Sign("secret", body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{"valid", "secret", body, sig, true},
		{"valid upper case hex", "secret", body, strings.ToUpper(sig), true},
		{"wrong secret", "other", body, sig, false},
		{"tampered body", "secret", append([]byte(" "), body...), sig, false},
		{"no secret configured", "", body, sig, false},
		{"no signature", "secret", body, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifySignature(tt.secret, tt.body, tt.signature))
		})
	}
}
