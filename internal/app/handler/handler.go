package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/nasik90/listmarket/internal/app/logger"
	middleware "github.com/nasik90/listmarket/internal/app/middlewares"
	"github.com/nasik90/listmarket/internal/app/nowpayments"
	"github.com/nasik90/listmarket/internal/app/service"
	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	GetUser(ctx context.Context, userID int64) (*storage.User, error)
	UserPurchases(ctx context.Context, userID int64) ([]storage.Sale, error)
	Products(ctx context.Context) ([]service.ProductView, error)
	Purchase(ctx context.Context, userID int64, productName string) (*service.Receipt, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	NextLine(ctx context.Context, product string) (*service.Allocation, error)
	Currencies() map[string]service.Currency
	CreatePayment(ctx context.Context, userID int64, amountEUR decimal.Decimal, cryptoCurrency string) (*service.PaymentHandle, error)
	PaymentStatus(ctx context.Context, paymentID string) (*storage.CryptoPayment, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*storage.CryptoPayment, error)
	UserPayments(ctx context.Context, userID int64) ([]storage.CryptoPayment, error)
	AdminIsValid(login, password string) bool
	AdminCredit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type (
	purchaseRequest struct {
		UserID  int64  `json:"user_id"`
		Product string `json:"product"`
	}

	purchaseResponse struct {
		Status  string          `json:"status"`
		Balance decimal.Decimal `json:"balance"`
		Line    string          `json:"line"`
		Price   decimal.Decimal `json:"price"`
	}

	amountRequest struct {
		UserID int64           `json:"user_id"`
		Amount decimal.Decimal `json:"amount"`
	}

	balanceResponse struct {
		Status  string          `json:"status"`
		Balance decimal.Decimal `json:"balance"`
	}

	createPaymentRequest struct {
		UserID         int64           `json:"user_id"`
		AmountEUR      decimal.Decimal `json:"amount_eur"`
		CryptoCurrency string          `json:"crypto_currency"`
	}

	loginRequest struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}

	errorResponse struct {
		Detail string `json:"detail"`
	}
)

func writeJSON(res http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	res.Write(body)
}

func writeError(res http.ResponseWriter, status int, detail string) {
	writeJSON(res, status, errorResponse{Detail: detail})
}

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	var verr service.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, service.ErrBelowMinimum),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAuthenticity):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrProvider):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeServiceError(res http.ResponseWriter, req *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("uri", req.RequestURI), zap.String("error", err.Error()))
	}
	writeError(res, status, err.Error())
}

func decodeJSON(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return service.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

func userIDParam(req *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, name), 10, 64)
	if err != nil {
		return 0, service.ValidationError{Field: name, Message: "must be an integer"}
	}
	return id, nil
}

func (h *Handler) GetUser() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		userID, err := userIDParam(req, "id")
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		user, err := h.service.GetUser(req.Context(), userID)
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, user)
	}
}

func (h *Handler) GetUserPurchases() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		userID, err := userIDParam(req, "id")
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		purchases, err := h.service.UserPurchases(req.Context(), userID)
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, map[string]any{"purchases": purchases})
	}
}

func (h *Handler) GetProducts() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		products, err := h.service.Products(req.Context())
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, map[string]any{"products": products})
	}
}

func (h *Handler) Purchase() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var input purchaseRequest
		if err := decodeJSON(req, &input); err != nil {
			writeServiceError(res, req, err)
			return
		}
		receipt, err := h.service.Purchase(req.Context(), input.UserID, input.Product)
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, purchaseResponse{
			Status:  "ok",
			Balance: receipt.Balance,
			Line:    receipt.Line,
			Price:   receipt.Price,
		})
	}
}

func (h *Handler) Deposit() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var input amountRequest
		if err := decodeJSON(req, &input); err != nil {
			writeServiceError(res, req, err)
			return
		}
		balance, err := h.service.Deposit(req.Context(), input.UserID, input.Amount)
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, balanceResponse{Status: "ok", Balance: balance})
	}
}

// NextLine hands out the next unsold line. Exhausted stock answers 200 with
// index -1.
func (h *Handler) NextLine() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		product := chi.URLParam(req, "product")
		alloc, err := h.service.NextLine(req.Context(), product)
		if errors.Is(err, service.ErrOutOfStock) {
			writeJSON(res, http.StatusOK, service.Allocation{Index: -1, Line: fmt.Sprintf("Stock épuisé pour %s", product)})
			return
		}
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, alloc)
	}
}

func (h *Handler) GetCurrencies() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		currencies := h.service.Currencies()
		available := make([]string, 0, len(currencies))
		for code := range currencies {
			available = append(available, code)
		}
		sort.Strings(available)
		writeJSON(res, http.StatusOK, map[string]any{"currencies": currencies, "available": available})
	}
}

func (h *Handler) CreatePayment() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var input createPaymentRequest
		if err := decodeJSON(req, &input); err != nil {
			writeServiceError(res, req, err)
			return
		}
		handle, err := h.service.CreatePayment(req.Context(), input.UserID, input.AmountEUR, input.CryptoCurrency)
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, handle)
	}
}

func (h *Handler) PaymentStatus() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		payment, err := h.service.PaymentStatus(req.Context(), chi.URLParam(req, "payment_id"))
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, payment)
	}
}

// Webhook receives provider notifications. The signature is checked against
// the raw body, so the body is read as bytes and never re-encoded.
func (h *Handler) Webhook() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			writeError(res, http.StatusBadRequest, err.Error())
			return
		}
		payment, err := h.service.HandleWebhook(req.Context(), body, req.Header.Get(nowpayments.SignatureHeader))
		if errors.Is(err, service.ErrPaymentNotFound) {
			writeJSON(res, http.StatusOK, map[string]string{"status": "payment_not_found"})
			return
		}
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, map[string]any{"status": "ok", "payment_status": payment.Status})
	}
}

func (h *Handler) GetUserPayments() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		userID, err := userIDParam(req, "user_id")
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		payments, err := h.service.UserPayments(req.Context(), userID)
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, map[string]any{
			"user_id":        userID,
			"payments":       payments,
			"total_payments": len(payments),
		})
	}
}

func (h *Handler) AdminLogin() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var input loginRequest
		if err := decodeJSON(req, &input); err != nil {
			writeServiceError(res, req, err)
			return
		}
		if !h.service.AdminIsValid(input.Login, input.Password) {
			logger.Log.Warn("admin login rejected", zap.String("login", input.Login))
			writeError(res, http.StatusUnauthorized, "invalid credentials")
			return
		}
		token, err := middleware.SetAuthCookie(input.Login, res)
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, map[string]string{"status": "ok", "token": token})
	}
}

func (h *Handler) AdminCredit() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var input amountRequest
		if err := decodeJSON(req, &input); err != nil {
			writeServiceError(res, req, err)
			return
		}
		balance, err := h.service.AdminCredit(req.Context(), input.UserID, input.Amount)
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		logger.Log.Info("admin credit",
			zap.String("admin", middleware.LoginFromContext(req.Context())),
			zap.Int64("user_id", input.UserID),
			zap.String("amount", input.Amount.String()),
		)
		writeJSON(res, http.StatusOK, balanceResponse{Status: "ok", Balance: balance})
	}
}

func (h *Handler) AdminStats() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		stats, err := h.service.Stats(req.Context())
		if err != nil {
			writeServiceError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, stats)
	}
}
