package cart

import "github.com/shopspring/decimal"

// Product is the catalog view a line is created from.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	ImageRef  string
	Unit      string
}

// Line is one product entry in the cart. A line with Quantity <= 0 must not
// exist: decrementing to zero removes the line.
type Line struct {
	ProductID         string          `json:"id"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	ImageRef          string          `json:"image,omitempty"`
	Unit              string          `json:"unit,omitempty"`
	AvailableQuantity *int            `json:"availableQuantity,omitempty"` // stock snapshot, optional
}

// Subtotal is UnitPrice times Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// View is a read snapshot of the cart handed to subscribers and HTTP
// responses. Total and ItemCount are derived, never persisted.
type View struct {
	Items     []Line          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// persistedCart is the durable shape: lines only, derived values recomputed
// on load.
type persistedCart struct {
	Items []Line `json:"items"`
}
