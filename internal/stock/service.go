// Package stock reconciles the local cart against live catalog stock.
package stock

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/revcart/storefront-gateway/internal/cart"
	"github.com/revcart/storefront-gateway/internal/catalog"
)

// Snapshot maps productID to the availableQuantity fetched for it. It is a
// point-in-time read, never persisted.
type Snapshot map[string]int

// InsufficientItem is one cart line whose requested quantity exceeds the
// quantity currently available.
type InsufficientItem struct {
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
}

// Verdict is the outcome of comparing the cart against fresh stock.
type Verdict struct {
	Valid             bool               `json:"isValid"`
	InsufficientItems []InsufficientItem `json:"insufficientItems"`
}

// ProductFetcher is the catalog lookup the service depends on.
type ProductFetcher interface {
	Get(ctx context.Context, productID string) (*catalog.Product, error)
}

// Service fetches live stock and computes validation verdicts.
type Service struct {
	products ProductFetcher
}

func NewService(products ProductFetcher) *Service {
	return &Service{products: products}
}

// FetchAvailableQuantity looks up the live available quantity for one
// product. Lookup failure is returned as-is: the service never invents a
// default quantity, the caller decides the fallback.
func (s *Service) FetchAvailableQuantity(ctx context.Context, productID string) (int, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.AvailableQuantity, nil
}

// Validate fans out one lookup per cart line in parallel, waits for all of
// them, and reports every line whose fetched quantity is below the requested
// one, in cart line order. An empty cart is immediately valid with no network
// calls. Any single lookup failure fails the whole validation: a partial
// verdict is unsafe to act on, and a missing product is a surfaced error, not
// zero stock.
func (s *Service) Validate(ctx context.Context, lines []cart.Line) (*Verdict, Snapshot, error) {
	if len(lines) == 0 {
		return &Verdict{Valid: true, InsufficientItems: []InsufficientItem{}}, Snapshot{}, nil
	}

	fetched := make([]int, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	for i := range lines {
		i := i
		g.Go(func() error {
			qty, err := s.FetchAvailableQuantity(gctx, lines[i].ProductID)
			if err != nil {
				return fmt.Errorf("stock lookup for product %s: %w", lines[i].ProductID, err)
			}
			fetched[i] = qty
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	snap := make(Snapshot, len(lines))
	verdict := &Verdict{Valid: true, InsufficientItems: []InsufficientItem{}}
	for i, l := range lines {
		snap[l.ProductID] = fetched[i]
		if fetched[i] < l.Quantity {
			verdict.InsufficientItems = append(verdict.InsufficientItems, InsufficientItem{
				ProductID:         l.ProductID,
				ProductName:       l.Name,
				RequestedQuantity: l.Quantity,
				AvailableQuantity: fetched[i],
			})
		}
	}
	verdict.Valid = len(verdict.InsufficientItems) == 0
	return verdict, snap, nil
}
