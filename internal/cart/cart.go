// Package cart maintains the client-side representation of what the
// user intends to buy: an insertion-ordered collection of line items
// keyed by product id, with quantities clamped to the stock snapshot
// supplied at add time. Every mutation is written through to durable
// local storage so the cart survives restarts.
package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cura-service/pkg/logkey"
)

// StorageKey is the fixed key the serialized cart lives under.
const StorageKey = "cura-cart"

// ErrOutOfStock is returned when a product with no available stock is
// added to the cart.
var ErrOutOfStock = errors.New("product is out of stock")

// Storage is the durable key-value store the cart persists to.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

type Store struct {
	mu      sync.Mutex
	lines   []Line
	storage Storage
	subs    []func()
}

// NewStore loads any previously persisted cart from storage. A corrupt
// payload is logged and discarded; the store always comes up usable.
func NewStore(storage Storage) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	s := &Store{storage: storage}
	s.load()
	return s, nil
}

func (s *Store) load() {
	data, err := s.storage.Get(StorageKey)
	if err != nil {
		// Missing key and unreadable file are the same case here:
		// start empty, never fail construction.
		s.lines = nil
		return
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		slog.Warn("discarding unreadable cart state", slog.String(logkey.ERROR, err.Error()))
		s.lines = nil
		return
	}
	s.lines = lines
}

// AddItem appends a new line with quantity 1, or bumps the quantity of
// the existing line for the same product. The candidate's stock value
// replaces the stored bound, and the resulting quantity is clamped to
// it. Adding a product with no stock is rejected; a zero-stock line
// can never exist.
func (s *Store) AddItem(candidate Candidate) error {
	if candidate.Stock <= 0 {
		return ErrOutOfStock
	}

	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ProductID != candidate.ProductID {
			continue
		}
		s.lines[i].Stock = candidate.Stock
		s.lines[i].Quantity = min(s.lines[i].Quantity+1, candidate.Stock)
		s.persistLocked()
		s.mu.Unlock()
		s.notify()
		return nil
	}
	s.lines = append(s.lines, Line{
		ProductID:            candidate.ProductID,
		Name:                 candidate.Name,
		Price:                candidate.Price,
		Quantity:             1,
		Image:                candidate.Image,
		Stock:                candidate.Stock,
		RequiresPrescription: candidate.RequiresPrescription,
	})
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// RemoveItem deletes the line for productID. Removing an absent
// product is not an error.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// SetQuantity sets the requested quantity for an existing line,
// clamped to the line's stored stock bound. A quantity of zero or less
// removes the line. Setting quantity on an absent product is a no-op:
// a line cannot be created here because no price or stock snapshot is
// available.
func (s *Store) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = min(quantity, s.lines[i].Stock)
			break
		}
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// Lines returns the cart content in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalPrice returns the sum of price times quantity over all lines,
// in the smallest currency unit. Derived on demand, never cached.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, line := range s.lines {
		total += line.Price * int64(line.Quantity)
	}
	return total
}

// TotalItemCount returns the sum of quantities, used for the cart
// badge.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// Subscribe registers fn to run after every successful mutation.
// Callbacks run outside the store lock, so they may call back into the
// store.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// persistLocked serializes the full line list to storage. A failed
// write is logged and otherwise ignored; persistence trouble never
// surfaces to the caller, the worst case is starting over empty on the
// next load.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.linesOrEmpty())
	if err != nil {
		slog.Error("failed to serialize cart", slog.String(logkey.ERROR, err.Error()))
		return
	}
	if err := s.storage.Set(StorageKey, data); err != nil {
		slog.Error("failed to persist cart", slog.String(logkey.ERROR, err.Error()))
	}
}

// linesOrEmpty keeps the persisted form a JSON array even when the
// cart is empty; absence of items is the empty collection, not null.
func (s *Store) linesOrEmpty() []Line {
	if s.lines == nil {
		return []Line{}
	}
	return s.lines
}

// snapshotEquals reports whether the given serialized payload matches
// the current in-memory state. Used by the watcher to skip reloads
// triggered by our own writes.
func (s *Store) snapshotEquals(data []byte) bool {
	s.mu.Lock()
	current, err := json.Marshal(s.linesOrEmpty())
	s.mu.Unlock()
	if err != nil {
		return false
	}
	return bytes.Equal(current, data)
}

// replace swaps in externally loaded lines.
func (s *Store) replace(lines []Line) {
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	s.notify()
}
