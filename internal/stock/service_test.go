package stock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revcart/storefront-gateway/internal/cart"
	"github.com/revcart/storefront-gateway/internal/catalog"
)

type fakeCatalog struct {
	mu       sync.Mutex
	stock    map[string]int
	failFor  map[string]error
	getCalls int
}

func (f *fakeCatalog) Get(ctx context.Context, productID string) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if err, ok := f.failFor[productID]; ok {
		return nil, err
	}
	qty, ok := f.stock[productID]
	if !ok {
		return nil, errors.New("product not found")
	}
	return &catalog.Product{
		Name:              "Product " + productID,
		Price:             decimal.RequireFromString("2.99"),
		AvailableQuantity: qty,
	}, nil
}

func line(id string, qty int) cart.Line {
	return cart.Line{ProductID: id, Name: "Product " + id, UnitPrice: decimal.RequireFromString("2.99"), Quantity: qty}
}

func TestValidateEmptyCartNoNetworkCalls(t *testing.T) {
	fc := &fakeCatalog{}
	svc := NewService(fc)

	verdict, snap, err := svc.Validate(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.InsufficientItems)
	assert.Empty(t, snap)
	assert.Equal(t, 0, fc.getCalls, "empty cart must not hit the catalog")
}

func TestValidateReportsInsufficientLinesInCartOrder(t *testing.T) {
	fc := &fakeCatalog{stock: map[string]int{"5": 1, "9": 10, "12": 0}}
	svc := NewService(fc)

	lines := []cart.Line{line("5", 2), line("9", 3), line("12", 1)}
	verdict, snap, err := svc.Validate(context.Background(), lines)

	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	require.Len(t, verdict.InsufficientItems, 2)

	first := verdict.InsufficientItems[0]
	assert.Equal(t, "5", first.ProductID)
	assert.Equal(t, "Product 5", first.ProductName)
	assert.Equal(t, 2, first.RequestedQuantity)
	assert.Equal(t, 1, first.AvailableQuantity)

	assert.Equal(t, "12", verdict.InsufficientItems[1].ProductID)

	assert.Equal(t, Snapshot{"5": 1, "9": 10, "12": 0}, snap)
}

func TestValidateAllSufficient(t *testing.T) {
	fc := &fakeCatalog{stock: map[string]int{"5": 2, "9": 3}}
	svc := NewService(fc)

	verdict, _, err := svc.Validate(context.Background(), []cart.Line{line("5", 2), line("9", 3)})

	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.InsufficientItems)
}

func TestValidateFailsWholeCallOnSingleLookupError(t *testing.T) {
	lookupErr := errors.New("catalog unavailable")
	fc := &fakeCatalog{
		stock:   map[string]int{"5": 5, "9": 5},
		failFor: map[string]error{"9": lookupErr},
	}
	svc := NewService(fc)

	verdict, snap, err := svc.Validate(context.Background(), []cart.Line{line("5", 1), line("9", 1)})

	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
	assert.Nil(t, verdict, "no partial verdict on lookup failure")
	assert.Nil(t, snap)
}

func TestFetchAvailableQuantityPropagatesError(t *testing.T) {
	lookupErr := errors.New("boom")
	fc := &fakeCatalog{failFor: map[string]error{"5": lookupErr}}
	svc := NewService(fc)

	_, err := svc.FetchAvailableQuantity(context.Background(), "5")
	assert.ErrorIs(t, err, lookupErr)
}
