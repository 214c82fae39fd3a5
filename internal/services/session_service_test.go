package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/metrics"
	"bookstore/internal/services"
	"bookstore/internal/storage"
	"bookstore/internal/store"
)

func sessions(t *testing.T, kv storage.KV) (*services.SessionService, *services.CatalogService) {
	t.Helper()
	c := catalog(t)
	s := services.NewSessionService(kv, c, metrics.New(prometheus.NewRegistry()), services.SessionConfig{})
	t.Cleanup(func() { _ = s.Close() })
	return s, c
}

func TestSessionService_RequiresID(t *testing.T) {
	s, _ := sessions(t, storage.NewMemory())
	_, err := s.Store(context.Background(), "")
	assert.True(t, errors.Is(err, services.ErrNoSession))
}

func TestSessionService_SameStorePerSession(t *testing.T) {
	s, _ := sessions(t, storage.NewMemory())
	ctx := context.Background()
	a1, err := s.Store(ctx, "a")
	require.NoError(t, err)
	a2, err := s.Store(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a1, a2)

	st, err := s.State(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, st.Products, 10, "seeded with the catalog snapshot")
}

func TestSessionService_IsolatesSessions(t *testing.T) {
	s, c := sessions(t, storage.NewMemory())
	cart := services.NewCartService(s, c)
	ctx := context.Background()

	_, err := cart.Add(ctx, "a", "book-001")
	require.NoError(t, err)

	b, err := cart.View(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b.Items)
	assert.Equal(t, "4.99", b.Totals.Total)
}

func TestSessionService_RehydratesAfterRestart(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()

	first, c := sessions(t, kv)
	cart := services.NewCartService(first, c)
	wish := services.NewWishlistService(first, c)
	_, err := cart.Add(ctx, "a", "manga-003")
	require.NoError(t, err)
	_, err = cart.SetQuantity(ctx, "a", "manga-003", 4)
	require.NoError(t, err)
	require.NoError(t, wish.Save(ctx, "a", "comic-002"))
	require.NoError(t, first.Close())

	second, c2 := sessions(t, kv)
	v, err := services.NewCartService(second, c2).View(ctx, "a")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 4, v.Items[0].Quantity)
	assert.Equal(t, "43.96", v.Totals.Subtotal)
	assert.Equal(t, "0.00", v.Totals.Shipping)

	saved, err := services.NewWishlistService(second, c2).List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "comic-002", saved[0].ID)
}

func TestCartService(t *testing.T) {
	s, c := sessions(t, storage.NewMemory())
	cart := services.NewCartService(s, c)
	ctx := context.Background()

	_, err := cart.Add(ctx, "a", "missing")
	assert.ErrorIs(t, err, services.ErrUnknownProduct)

	st, err := cart.Add(ctx, "a", "book-002")
	require.NoError(t, err)
	assert.Equal(t, 1, store.CartItemCount(st))

	st, err = cart.Toggle(ctx, "a")
	require.NoError(t, err)
	assert.True(t, st.IsCartOpen)

	st, err = cart.Clear(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, st.Cart)
}

func TestWishlistService_Toggle(t *testing.T) {
	s, c := sessions(t, storage.NewMemory())
	wish := services.NewWishlistService(s, c)
	ctx := context.Background()

	saved, err := wish.Toggle(ctx, "a", "book-001")
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = wish.Toggle(ctx, "a", "book-001")
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = wish.Toggle(ctx, "a", "missing")
	assert.ErrorIs(t, err, services.ErrUnknownProduct)
}

func TestSessionService_PersistsUnderPrefix(t *testing.T) {
	kv := storage.NewMemory()
	s, c := sessions(t, kv)
	ctx := context.Background()
	_, err := services.NewCartService(s, c).Add(ctx, "abc", "book-001")
	require.NoError(t, err)

	st, err := s.Store(ctx, "abc")
	require.NoError(t, err)
	fctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, st.Flush(fctx))

	assert.ElementsMatch(t, []string{"session/abc/" + store.KeyCart}, kv.Keys())
}

// gatedKV blocks reads of one session's keys until released.
type gatedKV struct {
	*storage.Memory
	prefix  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedKV) Get(ctx context.Context, key string) (string, bool, error) {
	if strings.HasPrefix(key, g.prefix) {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.Memory.Get(ctx, key)
}

func TestSessionService_SlowRehydrateDoesNotBlockOthers(t *testing.T) {
	kv := &gatedKV{
		Memory:  storage.NewMemory(),
		prefix:  services.KeyPrefix("slow"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s, _ := sessions(t, kv)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() {
		_, err := s.Store(ctx, "slow")
		slow <- err
	}()
	<-kv.entered

	fast := make(chan error, 1)
	go func() {
		_, err := s.Store(ctx, "fast")
		fast <- err
	}()
	select {
	case err := <-fast:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(kv.release)
		t.Fatal("opening a session waited on another session's storage read")
	}

	close(kv.release)
	require.NoError(t, <-slow)
	assert.Equal(t, 2, s.Len())
}

func TestSessionService_ConcurrentFirstUseSharesStore(t *testing.T) {
	s, _ := sessions(t, storage.NewMemory())
	ctx := context.Background()

	stores := make([]*store.Store, 20)
	var wg sync.WaitGroup
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st, err := s.Store(ctx, "same")
			assert.NoError(t, err)
			stores[i] = st
		}(i)
	}
	wg.Wait()
	for _, st := range stores {
		assert.Same(t, stores[0], st)
	}
	assert.Equal(t, 1, s.Len())
}

func TestSessionService_EvictsLeastRecentlyUsed(t *testing.T) {
	kv := storage.NewMemory()
	reg := prometheus.NewRegistry()
	c := catalog(t)
	s := services.NewSessionService(kv, c, metrics.New(reg), services.SessionConfig{MaxSessions: 3})
	t.Cleanup(func() { _ = s.Close() })
	cart := services.NewCartService(s, c)
	ctx := context.Background()

	_, err := cart.Add(ctx, "s0", "book-001")
	require.NoError(t, err)
	for i := 1; i <= 50; i++ {
		_, err := s.Store(ctx, fmt.Sprintf("s%d", i))
		require.NoError(t, err)
		require.LessOrEqual(t, s.Len(), 3)
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3.0, gauge(t, reg, "bookstore_active_sessions"))

	// s0 was evicted; closing it flushed the cart, so it comes back
	raw, ok, err := kv.Get(ctx, services.KeyPrefix("s0")+store.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "book-001")

	v, err := cart.View(ctx, "s0")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "book-001", v.Items[0].ID)
}

func TestSessionService_RecentUseSurvivesEviction(t *testing.T) {
	c := catalog(t)
	s := services.NewSessionService(storage.NewMemory(), c, nil, services.SessionConfig{MaxSessions: 2})
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	a, err := s.Store(ctx, "a")
	require.NoError(t, err)
	_, err = s.Store(ctx, "b")
	require.NoError(t, err)
	again, err := s.Store(ctx, "a") // a is now most recent
	require.NoError(t, err)
	require.Same(t, a, again)

	_, err = s.Store(ctx, "c") // evicts b
	require.NoError(t, err)
	again, err = s.Store(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again, "a kept its store")
	assert.Equal(t, 2, s.Len())
}

func TestSessionService_SweepsIdleSessions(t *testing.T) {
	s, _ := sessions(t, storage.NewMemory())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	services.SetClock(s, func() time.Time { return now })
	ctx := context.Background()

	_, err := s.Store(ctx, "idle")
	require.NoError(t, err)
	_, err = s.Store(ctx, "busy")
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = s.Store(ctx, "busy")
	require.NoError(t, err)
	assert.Zero(t, s.Sweep())

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	now = now.Add(time.Hour)
	assert.Equal(t, 1, s.Sweep())
	assert.Zero(t, s.Len())
}

func TestSessionService_ClosedRejectsStore(t *testing.T) {
	s, _ := sessions(t, storage.NewMemory())
	require.NoError(t, s.Close())
	_, err := s.Store(context.Background(), "late")
	assert.ErrorIs(t, err, services.ErrSessionsClosed)
}

func gauge(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
