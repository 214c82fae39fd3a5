// Package store is the client state container of the storefront: it holds
// the state tree, reduces intents into new states, notifies listeners and
// persists the cart, wishlist and user slices.
package store

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookstore/internal/domain"
	applog "bookstore/internal/log"
	"bookstore/internal/metrics"
	"bookstore/internal/storage"
)

// Listener is called with the new state after every change. Listeners run
// while the store is locked and must not call Dispatch.
type Listener func(State)

type listener struct {
	id uint64
	fn Listener
}

type Option func(*Store)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Store) { s.tracer = t }
}

// WithProducts seeds the catalog snapshot after rehydration.
func WithProducts(products []domain.Product) Option {
	return func(s *Store) { s.products = products }
}

type Store struct {
	mu        sync.Mutex
	state     State
	listeners []listener
	nextID    uint64

	writer   *writer
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	products []domain.Product
}

// New builds a store over kv and rehydrates the persisted slices before
// returning, so no intent can be processed ahead of rehydration.
func New(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	s := &Store{
		state:  InitialState(),
		tracer: otel.Tracer("bookstore/internal/store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if p := loadPersisted(ctx, kv, s.metrics); !p.Empty() {
		s.state = Reduce(s.state, LoadPersisted{Slices: p})
		applog.Info(nil, "store.rehydrate", map[string]any{
			"cart":     len(s.state.Cart),
			"wishlist": len(s.state.Wishlist),
			"user":     s.state.User != nil,
		})
	}
	if s.products != nil {
		s.state = Reduce(s.state, SetProducts{Products: s.products})
		s.products = nil
	}
	s.writer = newWriter(kv, s.metrics)
	return s
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces in against the current state, notifies listeners when
// anything changed and queues persistence of changed slices. It returns the
// resulting state.
func (s *Store) Dispatch(ctx context.Context, in Intent) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, in)
}

// Update builds an intent from the current state and dispatches it without
// releasing the lock in between. A nil intent leaves the state unchanged.
func (s *Store) Update(ctx context.Context, build func(State) Intent) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := build(s.state)
	if in == nil {
		return s.state
	}
	return s.dispatchLocked(ctx, in)
}

func (s *Store) dispatchLocked(ctx context.Context, in Intent) State {
	name := Name(in)
	_, span := s.tracer.Start(ctx, "store.dispatch", trace.WithAttributes(attribute.String("intent", name)))
	defer span.End()

	prev := s.state
	next := Reduce(prev, in)
	changed := Diff(prev, next)
	s.metrics.Intent(name, changed != 0)
	span.SetAttributes(attribute.String("changed", changed.String()))
	if changed == 0 {
		return prev
	}

	s.state = next
	s.persist(changed, next)
	for _, l := range s.listeners {
		l.fn(next)
	}
	return next
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()
	s.metrics.SubscriberAdded()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = without(s.listeners, i)
					break
				}
			}
			s.mu.Unlock()
			s.metrics.SubscriberRemoved()
		})
	}
}

// Flush waits until persistence writes queued so far have been applied.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close applies pending writes and stops the persistence goroutine. The
// store keeps reducing intents after Close but no longer persists them.
func (s *Store) Close() error {
	s.writer.close()
	return nil
}

func (s *Store) persist(changed Slice, st State) {
	if changed.Has(SliceCart) {
		if v, err := EncodeCart(st.Cart); err != nil {
			applog.Error(nil, "store.persist.encode", err, map[string]any{"key": KeyCart})
		} else {
			s.writer.enqueue(KeyCart, writeOp{value: v})
		}
	}
	if changed.Has(SliceWishlist) {
		if v, err := EncodeWishlist(st.Wishlist); err != nil {
			applog.Error(nil, "store.persist.encode", err, map[string]any{"key": KeyWishlist})
		} else {
			s.writer.enqueue(KeyWishlist, writeOp{value: v})
		}
	}
	if changed.Has(SliceUser) {
		if st.User == nil {
			s.writer.enqueue(KeyUser, writeOp{delete: true})
		} else if v, err := EncodeUser(*st.User); err != nil {
			applog.Error(nil, "store.persist.encode", err, map[string]any{"key": KeyUser})
		} else {
			s.writer.enqueue(KeyUser, writeOp{value: v})
		}
	}
}
