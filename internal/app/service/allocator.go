package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nasik90/listmarket/internal/app/catalog"
	"github.com/nasik90/listmarket/internal/app/storage"
)

type Allocation struct {
	Index int    `json:"index"`
	Line  string `json:"line"`
}

// Allocator hands out product lines lowest unsold index first. An index is
// recorded as sold in the same Update that returns it, and is never released.
type Allocator struct {
	repo    Repository
	catalog *catalog.Catalog
}

func NewAllocator(repo Repository, cat *catalog.Catalog) *Allocator {
	return &Allocator{repo: repo, catalog: cat}
}

func (a *Allocator) Allocate(ctx context.Context, productName string) (Allocation, error) {
	_, lines, err := a.lines(productName)
	if err != nil {
		return Allocation{}, err
	}
	var alloc Allocation
	err = a.repo.Update(ctx, func(doc *storage.Document) error {
		var err error
		alloc, err = allocate(doc, productName, lines)
		return err
	})
	if err != nil {
		return Allocation{}, err
	}
	return alloc, nil
}

// Available is the live count of unsold lines.
func (a *Allocator) Available(ctx context.Context, productName string) (int, error) {
	_, lines, err := a.lines(productName)
	if err != nil {
		return 0, err
	}
	doc, err := a.repo.Load(ctx)
	if err != nil {
		return 0, err
	}
	return available(doc, productName, lines), nil
}

func (a *Allocator) lines(productName string) (catalog.Product, []string, error) {
	product, ok := a.catalog.Get(productName)
	if !ok {
		return catalog.Product{}, nil, fmt.Errorf("%w: %q", ErrProductNotFound, productName)
	}
	lines, err := product.Source.Lines()
	if err != nil {
		if errors.Is(err, catalog.ErrSourceMissing) {
			return product, nil, fmt.Errorf("%w: %q", ErrLineSourceMissing, productName)
		}
		return product, nil, fmt.Errorf("read lines of %q: %w", productName, err)
	}
	return product, lines, nil
}

func soldSet(doc *storage.Document, productName string) map[int]struct{} {
	sold := make(map[int]struct{}, len(doc.SoldLines[productName]))
	for _, idx := range doc.SoldLines[productName] {
		sold[idx] = struct{}{}
	}
	return sold
}

func available(doc *storage.Document, productName string, lines []string) int {
	sold := soldSet(doc, productName)
	n := 0
	for i := range lines {
		if _, ok := sold[i]; !ok {
			n++
		}
	}
	return n
}

func allocate(doc *storage.Document, productName string, lines []string) (Allocation, error) {
	if len(lines) == 0 {
		return Allocation{}, fmt.Errorf("%w: %q has no lines", ErrOutOfStock, productName)
	}
	sold := soldSet(doc, productName)
	for i, line := range lines {
		if _, ok := sold[i]; ok {
			continue
		}
		doc.SoldLines[productName] = append(doc.SoldLines[productName], i)
		return Allocation{Index: i, Line: line}, nil
	}
	return Allocation{}, fmt.Errorf("%w: %q", ErrOutOfStock, productName)
}
