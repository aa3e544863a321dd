package service

import (
	"context"
	"errors"

	"github.com/nasik90/listmarket/internal/app/logger"
	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductView struct {
	Filename    string          `json:"filename"`
	Available   int             `json:"available"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// Products lists the catalog with live stock. A product whose line source is
// missing is shown with zero stock.
func (s *Service) Products(ctx context.Context) ([]ProductView, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	products := s.catalog.Products()
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{
			Filename:    p.Name,
			Available:   s.liveStock(doc, p.Name),
			Price:       p.Price,
			Description: p.Description,
		})
	}
	return views, nil
}

func (s *Service) liveStock(doc *storage.Document, productName string) int {
	_, lines, err := s.allocator.lines(productName)
	if err != nil {
		if !errors.Is(err, ErrLineSourceMissing) {
			logger.Log.Error("read product lines", zap.String("product", productName), zap.String("error", err.Error()))
		}
		return 0
	}
	return available(doc, productName, lines)
}

type Stats struct {
	Users          int             `json:"users"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	TotalPurchases int             `json:"total_purchases"`
	TotalDeposits  decimal.Decimal `json:"total_deposits"`
	Revenue        decimal.Decimal `json:"revenue"`
	TotalStock     int             `json:"total_stock"`
	Sales          int             `json:"sales"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{Users: len(doc.Users), Sales: len(doc.Sales)}
	for _, u := range doc.Users {
		if u == nil {
			continue
		}
		st.TotalBalance = st.TotalBalance.Add(u.Balance)
		st.TotalDeposits = st.TotalDeposits.Add(u.TotalDeposits)
		st.TotalPurchases += u.TotalPurchases
	}
	st.Revenue = st.TotalDeposits.Sub(st.TotalBalance)
	for _, p := range s.catalog.Products() {
		st.TotalStock += s.liveStock(doc, p.Name)
	}
	return st, nil
}
