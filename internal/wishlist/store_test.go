package wishlist

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revcart/storefront-gateway/internal/snapshot"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func apples() Item {
	return Item{ProductID: "5", Name: "Apples", UnitPrice: decimal.RequireFromString("2.99")}
}

func TestAddIsIdempotentPerProduct(t *testing.T) {
	snaps := snapshot.NewMemoryStore()
	s, err := NewStore(context.Background(), "wish-1", snaps, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Add(context.Background(), apples()))
	require.NoError(t, s.Add(context.Background(), apples()))

	assert.Len(t, s.Items(), 1)
	assert.True(t, s.Contains("5"))
}

func TestRemoveAndPersistence(t *testing.T) {
	snaps := snapshot.NewMemoryStore()
	ctx := context.Background()
	s, err := NewStore(ctx, "wish-1", snaps, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, apples()))
	require.NoError(t, s.Add(ctx, Item{ProductID: "9", Name: "Bananas", UnitPrice: decimal.RequireFromString("1.49")}))
	require.NoError(t, s.Remove(ctx, "5"))

	reloaded, err := NewStore(ctx, "wish-1", snaps, testLogger())
	require.NoError(t, err)
	items := reloaded.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "9", items[0].ProductID)
	assert.False(t, reloaded.Contains("5"))
}

func TestCorruptSnapshotResets(t *testing.T) {
	snaps := snapshot.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, snaps.Save(ctx, "wish-1", []byte("not-json")))

	s, err := NewStore(ctx, "wish-1", snaps, testLogger())
	require.NoError(t, err)
	assert.Empty(t, s.Items())
	assert.False(t, snaps.Contains("wish-1"))
}

func TestClearRemovesRecord(t *testing.T) {
	snaps := snapshot.NewMemoryStore()
	ctx := context.Background()
	s, err := NewStore(ctx, "wish-1", snaps, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, apples()))
	require.NoError(t, s.Clear(ctx))

	assert.Empty(t, s.Items())
	assert.False(t, snaps.Contains("wish-1"))
}
