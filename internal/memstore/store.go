// Package memstore is a process-local backend for the stall service. It keeps
// the same unit-of-work contract as the Postgres backend: row locks held until
// commit or rollback, and writes that only become visible on commit.
package memstore

import (
	"sync"

	"github.com/fekuna/omnipos-stall-service/internal/model"
)

type Store struct {
	mu           sync.RWMutex
	products     map[string]*model.Product
	productOrder []string
	setItems     map[string][]model.SetItem // keyed by set product id
	sales        map[string]*model.Sale
	saleOrder    []string

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

func NewStore() *Store {
	return &Store{
		products: make(map[string]*model.Product),
		setItems: make(map[string][]model.SetItem),
		sales:    make(map[string]*model.Sale),
		locks:    make(map[string]chan struct{}),
	}
}

// rowLock returns the lock channel for a product row, creating it on first use.
func (s *Store) rowLock(id string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

// product returns a copy of the committed product row. Callers hold s.mu.
func (s *Store) product(id string) *model.Product {
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	return copyProduct(p)
}

// referenced reports whether any set or sale points at the product. Callers
// hold s.mu.
func (s *Store) referenced(id string) bool {
	for _, items := range s.setItems {
		for _, item := range items {
			if item.ComponentProductID == id {
				return true
			}
		}
	}
	for _, sale := range s.sales {
		for _, item := range sale.Items {
			if item.ProductID == id {
				return true
			}
		}
	}
	return false
}

func copyProduct(p *model.Product) *model.Product {
	cp := *p
	if p.SetItems != nil {
		cp.SetItems = append([]model.SetItem(nil), p.SetItems...)
	}
	return &cp
}

func copySale(s *model.Sale) *model.Sale {
	cp := *s
	cp.Items = append([]model.SaleItem(nil), s.Items...)
	return &cp
}
