// Package nowpayments is a small client for the NowPayments crypto payment API.
package nowpayments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/nasik90/listmarket/internal/app/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "https://api.nowpayments.io/v1"
	SignatureHeader = "x-nowpayments-sig"
)

var (
	ErrUnavailable = errors.New("payment provider unavailable")
	ErrRejected    = errors.New("payment provider rejected request")
)

// PaymentID accepts both numeric and string ids from the API.
type PaymentID string

func (id *PaymentID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = PaymentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = PaymentID(n.String())
	return nil
}

type PaymentRequest struct {
	PriceAmount      decimal.Decimal `json:"price_amount"`
	PriceCurrency    string          `json:"price_currency"`
	PayCurrency      string          `json:"pay_currency"`
	OrderID          string          `json:"order_id"`
	OrderDescription string          `json:"order_description"`
	IPNCallbackURL   string          `json:"ipn_callback_url,omitempty"`
}

// MarshalJSON sends price_amount as a JSON number.
func (r PaymentRequest) MarshalJSON() ([]byte, error) {
	type plain PaymentRequest
	return json.Marshal(struct {
		plain
		PriceAmount json.Number `json:"price_amount"`
	}{plain(r), json.Number(r.PriceAmount.String())})
}

// Payment is the payment object returned by create, status and IPN calls.
type Payment struct {
	PaymentID     PaymentID        `json:"payment_id"`
	PaymentStatus string           `json:"payment_status"`
	PayAddress    string           `json:"pay_address"`
	PayAmount     decimal.Decimal  `json:"pay_amount"`
	PayCurrency   string           `json:"pay_currency"`
	PriceAmount   decimal.Decimal  `json:"price_amount"`
	PriceCurrency string           `json:"price_currency"`
	ActuallyPaid  *decimal.Decimal `json:"actually_paid"`
	OrderID       string           `json:"order_id"`
}

type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	maxTries    uint
	initialWait time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry bounds the number of attempts per call and the first backoff interval.
func WithRetry(maxTries uint, initialWait time.Duration) Option {
	return func(c *Client) {
		c.maxTries = maxTries
		c.initialWait = initialWait
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		maxTries:    3,
		initialWait: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var p Payment
	if err := c.do(ctx, http.MethodPost, "/payment", req, &p); err != nil {
		return nil, err
	}
	if p.PaymentID == "" {
		return nil, fmt.Errorf("%w: response without payment_id", ErrRejected)
	}
	return &p, nil
}

func (c *Client) PaymentStatus(ctx context.Context, paymentID string) (*Payment, error) {
	var p Payment
	if err := c.do(ctx, http.MethodGet, "/payment/"+paymentID, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}
	url := c.baseURL + path

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialWait
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		start := time.Now()
		err := c.attempt(ctx, method, url, payload, out)
		logger.Log.Debug("payment provider call",
			zap.String("method", method),
			zap.String("url", url),
			zap.Duration("duration", time.Since(start)),
			zap.Bool("ok", err == nil),
		)
		if err != nil && errors.Is(err, ErrUnavailable) {
			logger.Log.Warn("payment provider call failed", zap.String("url", url), zap.String("error", err.Error()))
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxTries))
	return err
}

// attempt returns a permanent error for anything a retry cannot fix.
func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(fmt.Errorf("%w: %w", ErrUnavailable, err))
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strconv.Quote(string(respBody))))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return backoff.Permanent(fmt.Errorf("%w: decode response: %w", ErrRejected, err))
	}
	return nil
}

// Sign computes the hex HMAC-SHA512 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the HMAC-SHA512 of body under
// secret. An empty secret never verifies.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	want := Sign(secret, body)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
