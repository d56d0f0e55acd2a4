package memstore

import (
	"context"
	"errors"
)

var errNoTransaction = errors.New("memstore: operation requires a transaction")

type txKey struct{}

// op is one buffered write. check runs against committed state under the
// store's write lock and can veto the whole commit; apply cannot fail.
type op struct {
	check func(s *Store) error
	apply func(s *Store)
}

type tx struct {
	store *Store
	held  map[string]chan struct{}
	stock map[string]int64 // buffered stock writes, keyed by product id
	ops   []op
}

func txFrom(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok
}

// lock takes the product's row lock for the rest of the transaction. It is
// re-entrant within the same transaction and gives up when ctx is done.
func (t *tx) lock(ctx context.Context, id string) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	ch := t.store.rowLock(id)
	select {
	case ch <- struct{}{}:
		t.held[id] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *tx) release() {
	for id, ch := range t.held {
		<-ch
		delete(t.held, id)
	}
}

func (t *tx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range t.ops {
		if o.check == nil {
			continue
		}
		if err := o.check(s); err != nil {
			return err
		}
	}
	for id, qty := range t.stock {
		if p, ok := s.products[id]; ok {
			p.CurrentStock = qty
		}
	}
	for _, o := range t.ops {
		o.apply(s)
	}
	return nil
}

type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// WithinTransaction commits when fn returns nil. On error or panic every
// buffered write is dropped. Row locks are released either way. A nested call
// joins the outer transaction.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	t := &tx{
		store: m.store,
		held:  make(map[string]chan struct{}),
		stock: make(map[string]int64),
	}
	defer t.release()

	if err = fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	return t.commit()
}

// withRowLock runs fn holding the product's row lock. Inside a transaction the
// lock stays with the transaction; otherwise it is released when fn returns.
func (s *Store) withRowLock(ctx context.Context, id string, fn func() error) error {
	if t, ok := txFrom(ctx); ok {
		if err := t.lock(ctx, id); err != nil {
			return err
		}
		return fn()
	}

	ch := s.rowLock(id)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-ch }()
	return fn()
}

// write runs o inside the transaction bound to ctx, or applies it right away
// when there is none.
func (s *Store) write(ctx context.Context, o op) error {
	if t, ok := txFrom(ctx); ok {
		t.ops = append(t.ops, o)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if o.check != nil {
		if err := o.check(s); err != nil {
			return err
		}
	}
	o.apply(s)
	return nil
}
