// Package checkout sequences the multi-step checkout flow: cart sync, address
// creation, order placement and the optional payment-gateway handoff.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/cart"
	"github.com/revcart/storefront-gateway/internal/cartsync"
	"github.com/revcart/storefront-gateway/internal/metrics"
	"github.com/revcart/storefront-gateway/internal/notify"
)

// State names one step of the linear checkout flow.
type State string

const (
	StateIdle             State = "idle"
	StateSyncingCart      State = "syncing_cart"
	StateCreatingAddress  State = "creating_address"
	StatePlacingOrder     State = "placing_order"
	StateAwaitingPayment  State = "awaiting_payment"
	StateVerifyingPayment State = "verifying_payment"
	StateComplete         State = "complete"
	StateError            State = "error"
)

// Payment methods accepted by the flow.
const (
	PaymentCard           = "card"
	PaymentCashOnDelivery = "cod"
)

// ErrPaymentDismissed is returned by a PaymentGateway when the customer
// closes the widget without paying.
var ErrPaymentDismissed = errors.New("payment widget dismissed")

// ErrFlowInProgress means Run was called while a previous flow is still
// between Idle and a terminal state.
var ErrFlowInProgress = errors.New("checkout already in progress")

// Request is the checkout form input.
type Request struct {
	FullName      string
	Phone         string
	Address       string
	City          string
	PostalCode    string
	PaymentMethod string
}

// Result reports a completed checkout.
type Result struct {
	OrderID     int64
	OrderNumber string
	Amount      decimal.Decimal
}

// FlowError is the Error state made concrete: the step that failed and a
// human-readable message. The raw cause is wrapped, never shown to the user.
type FlowError struct {
	Step    State
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("checkout failed at %s: %s: %v", e.Step, e.Message, e.Err)
	}
	return fmt.Sprintf("checkout failed at %s: %s", e.Step, e.Message)
}

func (e *FlowError) Unwrap() error { return e.Err }

// CartPusher syncs the local cart to the server cart (4.3).
type CartPusher interface {
	Push(ctx context.Context, lines []cart.Line) (*cartsync.Result, error)
}

// OrderPlacer is the backend surface the flow drives after the sync.
type OrderPlacer interface {
	CreateAddress(ctx context.Context, addr backend.Address) (int64, error)
	Checkout(ctx context.Context, addressID int64, paymentMethod string) (*backend.PlacedOrder, error)
	InitiatePayment(ctx context.Context, orderID int64) (*backend.PaymentIntent, error)
	VerifyPayment(ctx context.Context, orderID int64, resp backend.GatewayResponse) error
}

// PaymentRequest is the handoff to the external payment widget.
type PaymentRequest struct {
	OrderRef       int64
	GatewayOrderID string
	Amount         decimal.Decimal
	Currency       string
	Key            string
}

// PaymentGateway is the third-party widget collaborator. Collect blocks until
// the customer completes or dismisses the widget; dismissal is
// ErrPaymentDismissed.
type PaymentGateway interface {
	Collect(ctx context.Context, req PaymentRequest) (backend.GatewayResponse, error)
}

// EventPublisher receives the best-effort order-placed event on completion.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev notify.OrderEvent) error
}

// Orchestrator runs the checkout state machine. One orchestrator per
// storefront session; a single flow may be in flight at a time.
type Orchestrator struct {
	cart      *cart.Store
	pusher    CartPusher
	orders    OrderPlacer
	gateway   PaymentGateway
	publisher EventPublisher
	metrics   *metrics.Emitter
	log       *logrus.Entry

	mu           sync.Mutex
	state        State
	onTransition func(State)
}

// Option configures optional collaborators.
type Option func(*Orchestrator)

// WithPublisher wires the best-effort order-event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// WithMetrics wires the outcome counter emitter.
func WithMetrics(m *metrics.Emitter) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func NewOrchestrator(cartStore *cart.Store, pusher CartPusher, orders OrderPlacer, gateway PaymentGateway, log *logrus.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:    cartStore,
		pusher:  pusher,
		orders:  orders,
		gateway: gateway,
		log:     log.WithField("component", "checkout"),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current flow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// OnTransition registers a synchronous observer of state changes, used by the
// HTTP layer to drive loading indicators.
func (o *Orchestrator) OnTransition(fn func(State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onTransition = fn
}

func (o *Orchestrator) transition(next State) {
	o.mu.Lock()
	o.state = next
	fn := o.onTransition
	o.mu.Unlock()
	if fn != nil {
		fn(next)
	}
}

// fail enters Error with a user-facing message, then returns control to Idle.
func (o *Orchestrator) fail(ctx context.Context, step State, message string, cause error) *FlowError {
	o.log.WithError(cause).WithFields(logrus.Fields{
		"step":    string(step),
		"message": message,
	}).Warn("checkout flow stopped")
	o.transition(StateError)
	o.transition(StateIdle)
	if o.metrics != nil {
		o.metrics.CountCheckout(ctx, "error", string(step))
	}
	return &FlowError{Step: step, Message: message, Err: cause}
}

// Run drives one checkout from entry guard to Complete.
func (o *Orchestrator) Run(ctx context.Context, userID string, req Request) (*Result, error) {
	o.mu.Lock()
	if o.state != StateIdle && o.state != StateComplete {
		o.mu.Unlock()
		return nil, ErrFlowInProgress
	}
	o.state = StateIdle
	o.mu.Unlock()

	// Entry guard: no network calls before the cart and form check out.
	lines := o.cart.Lines()
	if len(lines) == 0 {
		return nil, o.fail(ctx, StateIdle, MsgCartEmpty, nil)
	}
	if req.FullName == "" || req.Phone == "" || req.Address == "" || req.City == "" || req.PostalCode == "" {
		return nil, o.fail(ctx, StateIdle, MsgMissingAddressFields, nil)
	}

	o.transition(StateSyncingCart)
	syncRes, err := o.pusher.Push(ctx, lines)
	if err != nil {
		return nil, o.fail(ctx, StateSyncingCart, MsgCartSyncFailed, err)
	}
	if o.metrics != nil {
		o.metrics.CountSyncSkippedLines(ctx, len(syncRes.Skipped))
	}

	o.transition(StateCreatingAddress)
	addressID, err := o.orders.CreateAddress(ctx, backend.Address{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Line1:      req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		if backend.IsValidation(err) {
			return nil, o.fail(ctx, StateCreatingAddress, backend.BusinessMessage(err, MsgAddressInvalid), err)
		}
		return nil, o.fail(ctx, StateCreatingAddress, MsgAddressCreateFailed, err)
	}

	o.transition(StatePlacingOrder)
	placed, err := o.orders.Checkout(ctx, addressID, req.PaymentMethod)
	if err != nil {
		return nil, o.fail(ctx, StatePlacingOrder, classifyOrderFailure(err), err)
	}

	result := &Result{
		OrderID:     placed.ID,
		OrderNumber: placed.OrderNumber,
		Amount:      placed.TotalAmount,
	}

	if req.PaymentMethod == PaymentCard {
		o.transition(StateAwaitingPayment)
		intent, err := o.orders.InitiatePayment(ctx, placed.ID)
		if err != nil {
			return nil, o.fail(ctx, StateAwaitingPayment, MsgPaymentInitFailed, err)
		}

		gatewayResp, err := o.gateway.Collect(ctx, PaymentRequest{
			OrderRef:       placed.ID,
			GatewayOrderID: intent.GatewayOrderID,
			Amount:         intent.Amount,
			Currency:       intent.Currency,
			Key:            intent.Key,
		})
		if err != nil {
			// The order row already exists server-side in an unpaid state.
			// That is intentional: nothing is rolled back client-side.
			if errors.Is(err, ErrPaymentDismissed) {
				return nil, o.fail(ctx, StateAwaitingPayment, MsgPaymentCancelled, err)
			}
			return nil, o.fail(ctx, StateAwaitingPayment, MsgPaymentInitFailed, err)
		}

		o.transition(StateVerifyingPayment)
		if err := o.orders.VerifyPayment(ctx, placed.ID, gatewayResp); err != nil {
			return nil, o.fail(ctx, StateVerifyingPayment, MsgPaymentVerifyFailed, err)
		}
	}

	o.complete(ctx, userID, req.PaymentMethod, result)
	return result, nil
}

// complete is the sole place the checkout flow clears the local cart.
func (o *Orchestrator) complete(ctx context.Context, userID, paymentMethod string, result *Result) {
	o.transition(StateComplete)

	if err := o.cart.Clear(ctx); err != nil {
		o.log.WithError(err).Warn("failed to clear local cart after checkout")
	}

	if o.publisher != nil {
		ev := notify.OrderEvent{
			EventID:       uuid.NewString(),
			EventType:     notify.EventOrderPlaced,
			OrderID:       result.OrderID,
			UserID:        userID,
			Amount:        result.Amount.StringFixed(2),
			PaymentMethod: paymentMethod,
			OccurredAt:    time.Now().UTC(),
		}
		if err := o.publisher.PublishOrderEvent(ctx, ev); err != nil {
			o.log.WithError(err).Warn("failed to publish order event")
		}
	}

	if o.metrics != nil {
		o.metrics.CountCheckout(ctx, "complete", string(StateComplete))
	}
}

// classifyOrderFailure maps a checkout rejection to its user-facing message,
// preferring the backend's business wording when it carries one.
func classifyOrderFailure(err error) string {
	switch {
	case backend.IsUnauthorized(err), backend.IsForbidden(err):
		return MsgAccessDenied
	case backend.IsValidation(err):
		msg := backend.BusinessMessage(err, "")
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "empty"):
			return MsgOrderCartEmpty
		case strings.Contains(lower, "insufficient"), strings.Contains(lower, "stock"):
			if msg != "" {
				return msg
			}
			return MsgInsufficientStock
		case msg != "":
			return msg
		}
		return MsgOrderFailed
	default:
		return MsgOrderFailed
	}
}
