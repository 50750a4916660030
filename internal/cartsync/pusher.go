// Package cartsync pushes the local cart to the commerce backend's cart
// representation. The push is one-directional and best-effort: the local cart
// stays the source of truth while shopping.
package cartsync

import (
	"context"
	"errors"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/cart"
)

// ErrNoValidProducts means no cart line carried a product id the backend can
// understand, so the push could not even begin.
var ErrNoValidProducts = errors.New("no valid products to sync")

// ServerCart is the backend cart surface the pusher writes to.
type ServerCart interface {
	ClearCart(ctx context.Context) error
	AddCartItem(ctx context.Context, productID int64, quantity int) error
}

// Result reports what a push actually did.
type Result struct {
	Pushed  int      // lines accepted by the backend
	Skipped []string // product ids dropped or rejected along the way
}

// Pusher synchronizes local cart lines to the server cart.
type Pusher struct {
	server ServerCart
	log    *logrus.Entry
}

func NewPusher(server ServerCart, log *logrus.Logger) *Pusher {
	return &Pusher{
		server: server,
		log:    log.WithField("component", "cartsync"),
	}
}

// Push makes the server-side cart equal to lines, best-effort.
//
// Lines whose product id does not parse as a positive backend id are dropped
// with a warning. If nothing parseable remains the push fails outright. The
// server cart is then cleared; a clear failure is logged and the push
// proceeds, since an empty or missing server cart is the common case.
// Remaining lines are added strictly one at a time, each response awaited
// before the next request goes out, so concurrent mutations never race on the
// server-side cart aggregate. A line the backend rejects (deleted product,
// inactive product, server fault) is logged and skipped; one bad line never
// blocks the rest.
func (p *Pusher) Push(ctx context.Context, lines []cart.Line) (*Result, error) {
	res := &Result{}

	type validLine struct {
		serverID int64
		quantity int
	}
	valid := make([]validLine, 0, len(lines))
	for _, l := range lines {
		id, err := strconv.ParseInt(l.ProductID, 10, 64)
		if err != nil || id <= 0 {
			p.log.WithField("product_id", l.ProductID).Warn("unparseable product id, dropping line")
			res.Skipped = append(res.Skipped, l.ProductID)
			continue
		}
		valid = append(valid, validLine{serverID: id, quantity: l.Quantity})
	}
	if len(valid) == 0 {
		return nil, ErrNoValidProducts
	}

	if err := p.server.ClearCart(ctx); err != nil {
		p.log.WithError(err).Warn("server cart clear failed, proceeding with adds")
	}

	for i, vl := range valid {
		err := p.server.AddCartItem(ctx, vl.serverID, vl.quantity)
		if err == nil {
			res.Pushed++
			continue
		}

		entry := p.log.WithFields(logrus.Fields{
			"product_id": vl.serverID,
			"position":   i,
		}).WithError(err)
		switch {
		case backend.IsNotFound(err):
			entry.Warn("product no longer exists, skipping line")
		case backend.IsValidation(err):
			entry.Warn("product rejected by backend, skipping line")
		default:
			entry.Warn("server fault while adding line, skipping")
		}
		res.Skipped = append(res.Skipped, strconv.FormatInt(vl.serverID, 10))
	}

	return res, nil
}
