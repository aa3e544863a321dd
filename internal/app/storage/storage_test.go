package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "rfc3339", raw: `"2024-04-05T19:34:38Z"`, want: time.Date(2024, 4, 5, 19, 34, 38, 0, time.UTC)},
		{name: "epoch number", raw: `1712345000.5`, want: time.Unix(1712345000, 500000000).UTC()},
		{name: "epoch string", raw: `"1712345678.123"`, want: time.Unix(1712345678, 123000000).UTC()},
		{name: "integer epoch", raw: `1712345678`, want: time.Unix(1712345678, 0).UTC()},
		{name: "zero epoch", raw: `"0"`},
		{name: "null", raw: `null`},
		{name: "empty string", raw: `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestDecode_LegacyRecords(t *testing.T) {
	raw := `{
		"sales": [{"user_id": 7, "product": "Num List", "price": 15.0, "line": "0600000001",
			"timestamp": "1712345678.123"}],
		"sold_lines": {"Num List": [0]},
		"users": {"7": {"user_id": 7, "username": null, "grade": "Membre", "balance": 96.0,
			"total_purchases": 1, "total_deposits": 111.0}},
		"crypto_payments": {"5012345": {"user_id": 7, "order_id": "user7_1712345000",
			"amount_eur": 111.0, "crypto_currency": "btc", "pay_amount": null, "pay_address": null,
			"payment_id": 5012345, "payment_status": "finished", "created_at": 1712345000.5,
			"updated_at": 1712345100.25, "actually_paid": 0.0018, "credited": true,
			"credited_at": 1712345100.25}}
	}`

	doc, err := Decode([]byte(raw))
	require.NoError(t, err)

	require.Len(t, doc.Sales, 1)
	assert.Equal(t, "0600000001", doc.Sales[0].Line)
	assert.True(t, time.Unix(1712345678, 123000000).Equal(doc.Sales[0].Timestamp))

	p := doc.CryptoPayments["5012345"]
	require.NotNil(t, p)
	assert.Equal(t, "5012345", p.PaymentID)
	assert.Equal(t, StatusFinished, p.Status)
	assert.True(t, p.Credited)
	assert.True(t, time.Unix(1712345000, 500000000).Equal(p.CreatedAt))
	require.NotNil(t, p.CreditedAt)
	assert.True(t, time.Unix(1712345100, 250000000).Equal(*p.CreditedAt))
	assert.Equal(t, "96", doc.User(7).Balance.String())
	assert.Equal(t, "111", p.AmountEUR.String())
}

func TestDecode_RoundTripsEncodedDocument(t *testing.T) {
	doc := NewDocument()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	doc.Sales = append(doc.Sales, Sale{UserID: 1, Product: "X", Line: "a", Timestamp: at})
	doc.CryptoPayments["9"] = &CryptoPayment{PaymentID: "9", UserID: 1, Status: StatusWaiting, CreatedAt: at, UpdatedAt: at}

	raw, err := Encode(doc)
	require.NoError(t, err)
	back, err := Decode(raw)
	require.NoError(t, err)

	assert.True(t, at.Equal(back.Sales[0].Timestamp))
	assert.Equal(t, "9", back.CryptoPayments["9"].PaymentID)
	assert.True(t, at.Equal(back.CryptoPayments["9"].CreatedAt))
	assert.Nil(t, back.CryptoPayments["9"].CreditedAt)
}
