// Package cart holds the storefront-side shopping cart: the authoritative
// copy while the customer shops, mirrored (not owned) by the commerce
// backend. One Store per storefront session; every mutation is written
// through to durable snapshot storage.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/revcart/storefront-gateway/internal/snapshot"
)

// Store is the local cart state container. Mutations are synchronous and
// atomic from the caller's perspective; subscribers are notified synchronously
// after each change.
type Store struct {
	mu        sync.Mutex
	storeKey  string
	lines     []Line
	snapshots snapshot.Store
	subs      []func(View)
	log       *logrus.Entry
}

// NewStore loads the persisted cart for storeKey. A snapshot that fails to
// parse is treated as "no cart": the store resets to empty and the corrupt
// record is removed. That recovery is silent (a warn log only), not fatal.
func NewStore(ctx context.Context, storeKey string, snapshots snapshot.Store, log *logrus.Logger) (*Store, error) {
	s := &Store{
		storeKey:  storeKey,
		snapshots: snapshots,
		log:       log.WithField("component", "cart"),
	}

	payload, err := snapshots.Load(ctx, storeKey)
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	if len(payload) == 0 {
		return s, nil
	}

	var persisted persistedCart
	if err := json.Unmarshal(payload, &persisted); err != nil {
		s.log.WithField("store_key", storeKey).WithError(err).Warn("corrupt cart snapshot, resetting")
		if derr := snapshots.Delete(ctx, storeKey); derr != nil {
			return nil, fmt.Errorf("delete corrupt cart snapshot: %w", derr)
		}
		return s, nil
	}

	// drop any persisted line that violates the quantity invariant
	for _, l := range persisted.Items {
		if l.Quantity >= 1 {
			s.lines = append(s.lines, l)
		}
	}
	return s, nil
}

// Subscribe registers fn to be called synchronously after every mutation.
func (s *Store) Subscribe(fn func(View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Add merges quantity into an existing line for p.ID, or appends a new line
// at the end. A quantity below 1 is treated as 1.
func (s *Store) Add(ctx context.Context, p Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, func() {
		for i := range s.lines {
			if s.lines[i].ProductID == p.ID {
				s.lines[i].Quantity += quantity
				return
			}
		}
		s.lines = append(s.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  quantity,
			ImageRef:  p.ImageRef,
			Unit:      p.Unit,
		})
	})
}

// Remove deletes the line for productID. Removing an absent line is a no-op,
// not an error.
func (s *Store) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, func() {
		s.deleteLine(productID)
	})
}

// SetQuantity replaces the quantity of the line for productID in place,
// preserving its position. A quantity of zero or below removes the line.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return s.mutate(ctx, func() {
		if quantity <= 0 {
			s.deleteLine(productID)
			return
		}
		for i := range s.lines {
			if s.lines[i].ProductID == productID {
				s.lines[i].Quantity = quantity
				return
			}
		}
	})
}

// Clear empties the cart and removes the persisted snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.lines = nil
	view := s.viewLocked()
	err := s.snapshots.Delete(ctx, s.storeKey)
	subs := append([]func(View){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
	if err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

// ApplyStockSnapshot overwrites AvailableQuantity for every line present in
// snap; lines absent from snap keep their prior value. Quantities are never
// altered and no lines are removed.
func (s *Store) ApplyStockSnapshot(ctx context.Context, snap map[string]int) error {
	return s.mutate(ctx, func() {
		for i := range s.lines {
			if avail, ok := snap[s.lines[i].ProductID]; ok {
				v := avail
				s.lines[i].AvailableQuantity = &v
			}
		}
	})
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line{}, s.lines...)
}

// Total is the derived sum of unit price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalOf(s.lines)
}

// ItemCount is the derived sum of quantities over all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(s.lines)
}

// CurrentView returns the cart with its derived totals.
func (s *Store) CurrentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// mutate applies fn under the lock, persists the resulting snapshot and then
// notifies subscribers. The in-memory cart is authoritative even when the
// write-through fails; the error is returned for the caller to surface.
func (s *Store) mutate(ctx context.Context, fn func()) error {
	s.mu.Lock()
	fn()
	view := s.viewLocked()
	payload, err := json.Marshal(persistedCart{Items: s.lines})
	if err == nil {
		if serr := s.snapshots.Save(ctx, s.storeKey, payload); serr != nil {
			err = fmt.Errorf("save cart snapshot: %w", serr)
		}
	} else {
		err = fmt.Errorf("marshal cart snapshot: %w", err)
	}
	subs := append([]func(View){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
	return err
}

func (s *Store) deleteLine(productID string) {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

func (s *Store) viewLocked() View {
	return View{
		Items:     append([]Line{}, s.lines...),
		Total:     totalOf(s.lines),
		ItemCount: countOf(s.lines),
	}
}

func totalOf(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func countOf(lines []Line) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}
