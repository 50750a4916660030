package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/checkout"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func paymentRequest() checkout.PaymentRequest {
	return checkout.PaymentRequest{
		OrderRef:       42,
		GatewayOrderID: "gw-1",
		Amount:         decimal.RequireFromString("5.98"),
		Currency:       "INR",
		Key:            "k",
	}
}

func TestCollectResolvesOnComplete(t *testing.T) {
	g := NewCallbackGateway(time.Second, testLogger())

	type result struct {
		resp backend.GatewayResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := g.Collect(context.Background(), paymentRequest())
		done <- result{resp, err}
	}()

	// wait for the collection to register
	require.Eventually(t, func() bool { return len(g.Pending()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int64(42), g.Pending()[0].OrderRef)

	require.True(t, g.Complete(42, backend.GatewayResponse{"signature": "sig"}))

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "sig", res.resp["signature"])
	assert.Empty(t, g.Pending(), "resolved collections are deregistered")
}

func TestCollectDismissal(t *testing.T) {
	g := NewCallbackGateway(time.Second, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := g.Collect(context.Background(), paymentRequest())
		done <- err
	}()

	require.Eventually(t, func() bool { return len(g.Pending()) == 1 }, time.Second, time.Millisecond)
	require.True(t, g.Dismiss(42))

	assert.ErrorIs(t, <-done, checkout.ErrPaymentDismissed)
}

func TestCollectTimeoutReadsAsDismissal(t *testing.T) {
	g := NewCallbackGateway(10*time.Millisecond, testLogger())

	_, err := g.Collect(context.Background(), paymentRequest())
	assert.ErrorIs(t, err, checkout.ErrPaymentDismissed)
}

func TestCallbackForUnknownOrderIsRejected(t *testing.T) {
	g := NewCallbackGateway(time.Second, testLogger())
	assert.False(t, g.Complete(99, backend.GatewayResponse{}))
	assert.False(t, g.Dismiss(99))
}

func TestDuplicateCollectionRejected(t *testing.T) {
	g := NewCallbackGateway(time.Second, testLogger())

	go func() {
		_, _ = g.Collect(context.Background(), paymentRequest())
	}()
	require.Eventually(t, func() bool { return len(g.Pending()) == 1 }, time.Second, time.Millisecond)

	_, err := g.Collect(context.Background(), paymentRequest())
	require.Error(t, err)

	g.Dismiss(42)
}
