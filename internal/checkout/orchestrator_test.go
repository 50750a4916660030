package checkout

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/cart"
	"github.com/revcart/storefront-gateway/internal/cartsync"
	"github.com/revcart/storefront-gateway/internal/notify"
	"github.com/revcart/storefront-gateway/internal/snapshot"
)

type fakePusher struct {
	calls int
	err   error
}

func (f *fakePusher) Push(ctx context.Context, lines []cart.Line) (*cartsync.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &cartsync.Result{Pushed: len(lines)}, nil
}

type fakeOrderPlacer struct {
	addressErr  error
	addressID   int64
	checkoutErr error
	placed      *backend.PlacedOrder
	initiateErr error
	intent      *backend.PaymentIntent
	verifyErr   error

	addressCalls  int
	checkoutCalls int
	verifyCalls   int
}

func (f *fakeOrderPlacer) CreateAddress(ctx context.Context, addr backend.Address) (int64, error) {
	f.addressCalls++
	if f.addressErr != nil {
		return 0, f.addressErr
	}
	return f.addressID, nil
}

func (f *fakeOrderPlacer) Checkout(ctx context.Context, addressID int64, paymentMethod string) (*backend.PlacedOrder, error) {
	f.checkoutCalls++
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return f.placed, nil
}

func (f *fakeOrderPlacer) InitiatePayment(ctx context.Context, orderID int64) (*backend.PaymentIntent, error) {
	if f.initiateErr != nil {
		return nil, f.initiateErr
	}
	return f.intent, nil
}

func (f *fakeOrderPlacer) VerifyPayment(ctx context.Context, orderID int64, resp backend.GatewayResponse) error {
	f.verifyCalls++
	return f.verifyErr
}

type fakeGateway struct {
	calls int
	resp  backend.GatewayResponse
	err   error
}

func (f *fakeGateway) Collect(ctx context.Context, req PaymentRequest) (backend.GatewayResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakePublisher struct {
	events []notify.OrderEvent
	err    error
}

func (f *fakePublisher) PublishOrderEvent(ctx context.Context, ev notify.OrderEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func cartWithItems(t *testing.T) *cart.Store {
	t.Helper()
	s, err := cart.NewStore(context.Background(), "sess", snapshot.NewMemoryStore(), testLogger())
	require.NoError(t, err)
	require.NoError(t, s.Add(context.Background(), cart.Product{ID: "5", Name: "Apples", UnitPrice: decimal.RequireFromString("2.99")}, 2))
	return s
}

func validRequest(method string) Request {
	return Request{
		FullName:      "Asha Verma",
		Phone:         "555-0101",
		Address:       "12 Market Road",
		City:          "Pune",
		PostalCode:    "411001",
		PaymentMethod: method,
	}
}

func placedOrder() *backend.PlacedOrder {
	return &backend.PlacedOrder{ID: 42, OrderNumber: "RC-42", TotalAmount: decimal.RequireFromString("5.98"), Status: "PLACED"}
}

func recordTransitions(o *Orchestrator) *[]State {
	var states []State
	o.OnTransition(func(s State) { states = append(states, s) })
	return &states
}

func TestEmptyCartFailsBeforeAnyNetworkCall(t *testing.T) {
	s, err := cart.NewStore(context.Background(), "sess", snapshot.NewMemoryStore(), testLogger())
	require.NoError(t, err)
	pusher := &fakePusher{}
	placer := &fakeOrderPlacer{}
	o := NewOrchestrator(s, pusher, placer, &fakeGateway{}, testLogger())

	_, err = o.Run(context.Background(), "u1", validRequest(PaymentCashOnDelivery))

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MsgCartEmpty, fe.Message)
	assert.Equal(t, 0, pusher.calls)
	assert.Equal(t, 0, placer.addressCalls, "empty cart must never reach address creation")
}

func TestMissingAddressFieldFailsBeforeAnyNetworkCall(t *testing.T) {
	pusher := &fakePusher{}
	o := NewOrchestrator(cartWithItems(t), pusher, &fakeOrderPlacer{}, &fakeGateway{}, testLogger())

	req := validRequest(PaymentCashOnDelivery)
	req.PostalCode = ""
	_, err := o.Run(context.Background(), "u1", req)

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MsgMissingAddressFields, fe.Message)
	assert.Equal(t, 0, pusher.calls)
}

func TestCashOnDeliveryCompletesWithoutGateway(t *testing.T) {
	cartStore := cartWithItems(t)
	gateway := &fakeGateway{}
	placer := &fakeOrderPlacer{addressID: 7, placed: placedOrder()}
	publisher := &fakePublisher{}
	o := NewOrchestrator(cartStore, &fakePusher{}, placer, gateway, testLogger(), WithPublisher(publisher))
	states := recordTransitions(o)

	res, err := o.Run(context.Background(), "u1", validRequest(PaymentCashOnDelivery))

	require.NoError(t, err)
	assert.Equal(t, int64(42), res.OrderID)
	assert.Equal(t, []State{StateSyncingCart, StateCreatingAddress, StatePlacingOrder, StateComplete}, *states)
	assert.Equal(t, 0, gateway.calls, "cod must not touch the payment widget")
	assert.Empty(t, cartStore.Lines(), "completion clears the local cart")

	require.Len(t, publisher.events, 1)
	assert.Equal(t, notify.EventOrderPlaced, publisher.events[0].EventType)
	assert.Equal(t, int64(42), publisher.events[0].OrderID)
	assert.Equal(t, "5.98", publisher.events[0].Amount)
}

func TestCardFlowClearsCartOnlyAfterVerification(t *testing.T) {
	cartStore := cartWithItems(t)
	placer := &fakeOrderPlacer{
		addressID: 7,
		placed:    placedOrder(),
		intent:    &backend.PaymentIntent{GatewayOrderID: "gw-1", Amount: decimal.RequireFromString("5.98"), Currency: "INR", Key: "k"},
	}
	gateway := &fakeGateway{resp: backend.GatewayResponse{"signature": "sig"}}
	o := NewOrchestrator(cartStore, &fakePusher{}, placer, gateway, testLogger())
	states := recordTransitions(o)

	res, err := o.Run(context.Background(), "u1", validRequest(PaymentCard))

	require.NoError(t, err)
	assert.Equal(t, int64(42), res.OrderID)
	assert.Equal(t, []State{StateSyncingCart, StateCreatingAddress, StatePlacingOrder, StateAwaitingPayment, StateVerifyingPayment, StateComplete}, *states)
	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, 1, placer.verifyCalls)
	assert.Empty(t, cartStore.Lines())
}

func TestCardVerificationFailureKeepsCart(t *testing.T) {
	cartStore := cartWithItems(t)
	placer := &fakeOrderPlacer{
		addressID: 7,
		placed:    placedOrder(),
		intent:    &backend.PaymentIntent{GatewayOrderID: "gw-1"},
		verifyErr: &backend.Error{Status: http.StatusBadRequest, Message: "signature mismatch"},
	}
	o := NewOrchestrator(cartStore, &fakePusher{}, placer, &fakeGateway{resp: backend.GatewayResponse{}}, testLogger())

	_, err := o.Run(context.Background(), "u1", validRequest(PaymentCard))

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StateVerifyingPayment, fe.Step)
	assert.Equal(t, MsgPaymentVerifyFailed, fe.Message)
	assert.NotEmpty(t, cartStore.Lines(), "cart must survive a failed card payment")
}

func TestGatewayDismissalIsDistinctAndKeepsCart(t *testing.T) {
	cartStore := cartWithItems(t)
	placer := &fakeOrderPlacer{
		addressID: 7,
		placed:    placedOrder(),
		intent:    &backend.PaymentIntent{GatewayOrderID: "gw-1"},
	}
	gateway := &fakeGateway{err: ErrPaymentDismissed}
	o := NewOrchestrator(cartStore, &fakePusher{}, placer, gateway, testLogger())

	_, err := o.Run(context.Background(), "u1", validRequest(PaymentCard))

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MsgPaymentCancelled, fe.Message)
	assert.Equal(t, 0, placer.verifyCalls, "dismissal never reaches verification")
	assert.NotEmpty(t, cartStore.Lines())
}

func TestSyncFailureStopsTheFlow(t *testing.T) {
	placer := &fakeOrderPlacer{}
	o := NewOrchestrator(cartWithItems(t), &fakePusher{err: cartsync.ErrNoValidProducts}, placer, &fakeGateway{}, testLogger())

	_, err := o.Run(context.Background(), "u1", validRequest(PaymentCashOnDelivery))

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StateSyncingCart, fe.Step)
	assert.Equal(t, MsgCartSyncFailed, fe.Message)
	assert.Equal(t, 0, placer.addressCalls)
}

func TestAddressValidationMessageSurfacedVerbatim(t *testing.T) {
	placer := &fakeOrderPlacer{addressErr: &backend.Error{Status: http.StatusBadRequest, Message: "Postal code must be 6 digits"}}
	o := NewOrchestrator(cartWithItems(t), &fakePusher{}, placer, &fakeGateway{}, testLogger())

	_, err := o.Run(context.Background(), "u1", validRequest(PaymentCashOnDelivery))

	var fe *FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StateCreatingAddress, fe.Step)
	assert.Equal(t, "Postal code must be 6 digits", fe.Message)
}

func TestOrderFailureClassification(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"insufficient stock verbatim", &backend.Error{Status: http.StatusBadRequest, Message: "Insufficient stock"}, "Insufficient stock"},
		{"cart empty", &backend.Error{Status: http.StatusBadRequest, Message: "Cart is empty"}, MsgOrderCartEmpty},
		{"access denied", &backend.Error{Status: http.StatusForbidden}, MsgAccessDenied},
		{"session expired", &backend.Error{Status: http.StatusUnauthorized}, MsgAccessDenied},
		{"server fault", &backend.Error{Status: http.StatusInternalServerError}, MsgOrderFailed},
		{"network failure", errors.New("dial tcp: timeout"), MsgOrderFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			placer := &fakeOrderPlacer{addressID: 7, checkoutErr: tc.err}
			o := NewOrchestrator(cartWithItems(t), &fakePusher{}, placer, &fakeGateway{}, testLogger())

			_, err := o.Run(context.Background(), "u1", validRequest(PaymentCashOnDelivery))

			var fe *FlowError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, StatePlacingOrder, fe.Step)
			assert.Equal(t, tc.wantMsg, fe.Message)
		})
	}
}

func TestErrorReturnsControlToIdle(t *testing.T) {
	o := NewOrchestrator(cartWithItems(t), &fakePusher{err: errors.New("boom")}, &fakeOrderPlacer{}, &fakeGateway{}, testLogger())

	_, err := o.Run(context.Background(), "u1", validRequest(PaymentCashOnDelivery))
	require.Error(t, err)
	assert.Equal(t, StateIdle, o.State())

	// a fresh run is possible after an error
	_, err = o.Run(context.Background(), "u1", validRequest(PaymentCashOnDelivery))
	require.Error(t, err)
}
