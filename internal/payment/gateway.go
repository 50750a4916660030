// Package payment bridges the checkout flow and the externally hosted payment
// widget. Collect parks the flow until the widget's completion or dismissal
// callback arrives over the HTTP surface.
package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/checkout"
)

type outcome struct {
	dismissed bool
	response  backend.GatewayResponse
}

type pendingPayment struct {
	request checkout.PaymentRequest
	done    chan outcome
}

// CallbackGateway implements checkout.PaymentGateway. One collection may be
// pending per order reference; callbacks are routed by that reference.
type CallbackGateway struct {
	mu      sync.Mutex
	pending map[int64]*pendingPayment
	timeout time.Duration
	log     *logrus.Entry
}

func NewCallbackGateway(timeout time.Duration, log *logrus.Logger) *CallbackGateway {
	return &CallbackGateway{
		pending: map[int64]*pendingPayment{},
		timeout: timeout,
		log:     log.WithField("component", "payment"),
	}
}

// Collect blocks until the widget reports completion or dismissal for
// req.OrderRef. A timeout reads as dismissal: the customer walked away and
// the order stays pending server-side either way.
func (g *CallbackGateway) Collect(ctx context.Context, req checkout.PaymentRequest) (backend.GatewayResponse, error) {
	p := &pendingPayment{request: req, done: make(chan outcome, 1)}

	g.mu.Lock()
	if _, exists := g.pending[req.OrderRef]; exists {
		g.mu.Unlock()
		return nil, fmt.Errorf("payment already pending for order %d", req.OrderRef)
	}
	g.pending[req.OrderRef] = p
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, req.OrderRef)
		g.mu.Unlock()
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case out := <-p.done:
		if out.dismissed {
			return nil, checkout.ErrPaymentDismissed
		}
		return out.response, nil
	case <-timer.C:
		g.log.WithField("order_ref", req.OrderRef).Warn("payment widget timed out")
		return nil, checkout.ErrPaymentDismissed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pending lists the payment requests currently awaiting a widget callback, so
// the storefront can render the widget parameters.
func (g *CallbackGateway) Pending() []checkout.PaymentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	reqs := make([]checkout.PaymentRequest, 0, len(g.pending))
	for _, p := range g.pending {
		reqs = append(reqs, p.request)
	}
	return reqs
}

// Complete routes a successful widget callback to the waiting flow. Returns
// false when nothing is pending for orderRef.
func (g *CallbackGateway) Complete(orderRef int64, resp backend.GatewayResponse) bool {
	return g.resolve(orderRef, outcome{response: resp})
}

// Dismiss routes a widget dismissal to the waiting flow.
func (g *CallbackGateway) Dismiss(orderRef int64) bool {
	return g.resolve(orderRef, outcome{dismissed: true})
}

func (g *CallbackGateway) resolve(orderRef int64, out outcome) bool {
	g.mu.Lock()
	p, ok := g.pending[orderRef]
	g.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case p.done <- out:
		return true
	default:
		// a callback already landed for this collection
		return false
	}
}
