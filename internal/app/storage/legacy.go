package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp decodes times written either as RFC 3339 strings or as Unix
// epoch seconds, given as a JSON number or as a numeric string. Epoch zero
// decodes to the zero time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t.Time = ts
			return nil
		}
		raw = s
	}
	secs, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("timestamp %s: %w", raw, err)
	}
	if secs.IsZero() {
		return nil
	}
	whole := secs.Truncate(0)
	t.Time = time.Unix(whole.IntPart(), secs.Sub(whole).Shift(9).IntPart()).UTC()
	return nil
}

// flexID accepts identifiers stored as JSON strings or numbers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

func (s *Sale) UnmarshalJSON(b []byte) error {
	type plain Sale
	aux := struct {
		*plain
		Timestamp Timestamp `json:"timestamp"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.Timestamp = aux.Timestamp.Time
	return nil
}

func (p *CryptoPayment) UnmarshalJSON(b []byte) error {
	type plain CryptoPayment
	aux := struct {
		*plain
		PaymentID  flexID     `json:"payment_id"`
		CreditedAt *Timestamp `json:"credited_at"`
		CreatedAt  Timestamp  `json:"created_at"`
		UpdatedAt  Timestamp  `json:"updated_at"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.PaymentID = string(aux.PaymentID)
	p.CreatedAt = aux.CreatedAt.Time
	p.UpdatedAt = aux.UpdatedAt.Time
	p.CreditedAt = nil
	if aux.CreditedAt != nil && !aux.CreditedAt.IsZero() {
		at := aux.CreditedAt.Time
		p.CreditedAt = &at
	}
	return nil
}
