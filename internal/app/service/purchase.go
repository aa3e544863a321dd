package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nasik90/listmarket/internal/app/logger"
	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Receipt struct {
	SaleID  string          `json:"sale_id"`
	Balance decimal.Decimal `json:"balance"`
	Line    string          `json:"line"`
	Index   int             `json:"index"`
	Price   decimal.Decimal `json:"price"`
}

// Purchase debits the product price and delivers the next unsold line.
//
// Debit, allocation, the purchase counter and the sale record are applied to
// one document inside a single Update. If any step fails the document is
// dropped, so a debit never outlives a failed allocation and the sold set and
// sale log stay as they were.
func (s *Service) Purchase(ctx context.Context, userID int64, productName string) (*Receipt, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(productName) == "" {
		return nil, ValidationError{Field: "product", Message: "is required"}
	}
	product, lines, err := s.allocator.lines(productName)
	if err != nil {
		return nil, err
	}

	var receipt Receipt
	err = s.repo.Update(ctx, func(doc *storage.Document) error {
		if available(doc, productName, lines) == 0 {
			return fmt.Errorf("%w: %q", ErrOutOfStock, productName)
		}
		user := doc.User(userID)
		if err := debit(user, product.Price); err != nil {
			return err
		}
		alloc, err := allocate(doc, productName, lines)
		if err != nil {
			return err
		}
		user.TotalPurchases++

		sale := storage.Sale{
			ID:        uuid.NewString(),
			UserID:    userID,
			Product:   productName,
			Price:     product.Price,
			Index:     alloc.Index,
			Line:      alloc.Line,
			Timestamp: s.now().UTC(),
		}
		doc.Sales = append(doc.Sales, sale)

		receipt = Receipt{
			SaleID:  sale.ID,
			Balance: user.Balance,
			Line:    alloc.Line,
			Index:   alloc.Index,
			Price:   product.Price,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("purchase completed",
		zap.Int64("user_id", userID),
		zap.String("product", productName),
		zap.Int("index", receipt.Index),
		zap.String("price", receipt.Price.String()),
	)
	return &receipt, nil
}
