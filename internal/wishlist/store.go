// Package wishlist is the durable per-session wishlist, persisted with the
// same write-through discipline as the cart.
package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/revcart/storefront-gateway/internal/snapshot"
)

// Item is one saved product.
type Item struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageRef  string          `json:"image,omitempty"`
	Unit      string          `json:"unit,omitempty"`
}

type persistedWishlist struct {
	Items []Item `json:"items"`
}

// Store holds the wishlist in memory and writes it through after every
// mutation.
type Store struct {
	mu        sync.Mutex
	storeKey  string
	items     []Item
	snapshots snapshot.Store
	log       *logrus.Entry
}

// NewStore loads the persisted wishlist for storeKey. A record that fails to
// parse is treated as "no wishlist": reset to empty, corrupt record removed.
func NewStore(ctx context.Context, storeKey string, snapshots snapshot.Store, log *logrus.Logger) (*Store, error) {
	s := &Store{
		storeKey:  storeKey,
		snapshots: snapshots,
		log:       log.WithField("component", "wishlist"),
	}

	payload, err := snapshots.Load(ctx, storeKey)
	if err != nil {
		return nil, fmt.Errorf("load wishlist snapshot: %w", err)
	}
	if len(payload) == 0 {
		return s, nil
	}

	var persisted persistedWishlist
	if err := json.Unmarshal(payload, &persisted); err != nil {
		s.log.WithField("store_key", storeKey).WithError(err).Warn("corrupt wishlist snapshot, resetting")
		if derr := snapshots.Delete(ctx, storeKey); derr != nil {
			return nil, fmt.Errorf("delete corrupt wishlist snapshot: %w", derr)
		}
		return s, nil
	}
	s.items = persisted.Items
	return s, nil
}

// Add saves item unless it is already on the list.
func (s *Store) Add(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ProductID == item.ProductID {
			return nil
		}
	}
	s.items = append(s.items, item)
	return s.persistLocked(ctx)
}

// Remove drops the item for productID; absent items are a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items {
		if existing.ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// Contains reports whether productID is on the list.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ProductID == productID {
			return true
		}
	}
	return false
}

// Items returns the wishlist in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item{}, s.items...)
}

// Clear empties the list and removes the persisted record.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.snapshots.Delete(ctx, s.storeKey); err != nil {
		return fmt.Errorf("delete wishlist snapshot: %w", err)
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(persistedWishlist{Items: s.items})
	if err != nil {
		return fmt.Errorf("marshal wishlist snapshot: %w", err)
	}
	if err := s.snapshots.Save(ctx, s.storeKey, payload); err != nil {
		return fmt.Errorf("save wishlist snapshot: %w", err)
	}
	return nil
}
