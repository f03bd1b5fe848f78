// Package memory is an in-memory PurchaseWriter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"frogbudget/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []entry
}

type entry struct {
	purchase core.Purchase
	category string
}

func New() *Store {
	return &Store{}
}

// Append stores the purchase and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, p core.Purchase, categoryName string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, entry{purchase: p, category: categoryName})
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Len reports how many rows have been appended.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
