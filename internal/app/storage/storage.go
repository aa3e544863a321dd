package storage

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted documents and API bodies carry amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrStorage           = errors.New("storage failure")
	ErrMalformedDocument = errors.New("malformed document")
)

type Tier string

const TierMember Tier = "Membre"

type User struct {
	UserID         int64           `json:"user_id"`
	Username       *string         `json:"username"`
	Grade          Tier            `json:"grade"`
	Balance        decimal.Decimal `json:"balance"`
	TotalPurchases int             `json:"total_purchases"`
	TotalDeposits  decimal.Decimal `json:"total_deposits"`
}

func NewUser(id int64) *User {
	return &User{UserID: id, Grade: TierMember}
}

type Sale struct {
	ID        string          `json:"id,omitempty"`
	UserID    int64           `json:"user_id"`
	Product   string          `json:"product"`
	Price     decimal.Decimal `json:"price"`
	Index     int             `json:"index"`
	Line      string          `json:"line"`
	Timestamp time.Time       `json:"timestamp"`
}

type PaymentStatus string

const (
	StatusWaiting       PaymentStatus = "waiting"
	StatusConfirming    PaymentStatus = "confirming"
	StatusConfirmed     PaymentStatus = "confirmed"
	StatusSending       PaymentStatus = "sending"
	StatusPartiallyPaid PaymentStatus = "partially_paid"
	StatusFinished      PaymentStatus = "finished"
	StatusFailed        PaymentStatus = "failed"
	StatusRefunded      PaymentStatus = "refunded"
	StatusExpired       PaymentStatus = "expired"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusConfirming, StatusConfirmed, StatusSending,
		StatusPartiallyPaid, StatusFinished, StatusFailed, StatusRefunded, StatusExpired:
		return true
	}
	return false
}

// Terminal statuses are absorbing.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusFinished, StatusFailed, StatusRefunded, StatusExpired:
		return true
	}
	return false
}

// Creditable reports whether funds for a payment in this status may be
// credited to the user.
func (s PaymentStatus) Creditable() bool {
	switch s {
	case StatusConfirmed, StatusSending, StatusFinished:
		return true
	}
	return false
}

type CryptoPayment struct {
	PaymentID      string           `json:"payment_id"`
	UserID         int64            `json:"user_id"`
	OrderID        string           `json:"order_id"`
	AmountEUR      decimal.Decimal  `json:"amount_eur"`
	CryptoCurrency string           `json:"crypto_currency"`
	PayAmount      decimal.Decimal  `json:"pay_amount"`
	PayAddress     string           `json:"pay_address"`
	Status         PaymentStatus    `json:"payment_status"`
	ActuallyPaid   *decimal.Decimal `json:"actually_paid,omitempty"`
	Credited       bool             `json:"credited"`
	CreditedAt     *time.Time       `json:"credited_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Document is the whole persisted state.
type Document struct {
	Sales          []Sale                    `json:"sales"`
	Leads          []json.RawMessage         `json:"leads"`
	SoldLines      map[string][]int          `json:"sold_lines"`
	Users          map[string]*User          `json:"users"`
	CryptoPayments map[string]*CryptoPayment `json:"crypto_payments"`
}

func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces nil collections left by older or hand-edited documents.
func (d *Document) Normalize() {
	if d.Sales == nil {
		d.Sales = []Sale{}
	}
	if d.Leads == nil {
		d.Leads = []json.RawMessage{}
	}
	if d.SoldLines == nil {
		d.SoldLines = map[string][]int{}
	}
	if d.Users == nil {
		d.Users = map[string]*User{}
	}
	if d.CryptoPayments == nil {
		d.CryptoPayments = map[string]*CryptoPayment{}
	}
}

// User returns the stored user, creating it in the document when absent.
func (d *Document) User(id int64) *User {
	key := strconv.FormatInt(id, 10)
	u, ok := d.Users[key]
	if !ok || u == nil {
		u = NewUser(id)
		d.Users[key] = u
	}
	return u
}

// Decode parses a persisted document. Empty input yields an empty document.
func Decode(data []byte) (*Document, error) {
	doc := NewDocument()
	if len(data) == 0 {
		return doc, nil
	}
	// Files written by some editors start with a UTF-8 BOM.
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Join(ErrMalformedDocument, err)
	}
	doc.Normalize()
	return doc, nil
}

func Encode(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
