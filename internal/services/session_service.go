package services

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	applog "bookstore/internal/log"
	"bookstore/internal/metrics"
	"bookstore/internal/storage"
	"bookstore/internal/store"
)

var (
	ErrNoSession      = errors.New("missing session id")
	ErrSessionsClosed = errors.New("session service closed")
)

// SessionConfig bounds the number of open session stores. Zero fields take
// the values of DefaultSessionConfig.
type SessionConfig struct {
	// MaxSessions caps open stores; the least recently used is closed first.
	MaxSessions int
	// IdleTTL closes stores not used for this long.
	IdleTTL time.Duration
	// CleanupInterval is how often idle stores are swept.
	CleanupInterval time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxSessions:     10000,
		IdleTTL:         30 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

type session struct {
	id       string
	st       *store.Store
	lastUsed time.Time
}

// SessionService owns one store per session id. Each store persists under
// its own key namespace of the shared KV. Closing a store flushes its
// pending writes, so an evicted session rehydrates on its next request.
type SessionService struct {
	KV      storage.KV
	Catalog *CatalogService
	Metrics *metrics.Metrics

	cfg SessionConfig
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*list.Element
	lru      *list.List // front = most recently used
	done     chan struct{}
	stopped  bool
}

func NewSessionService(kv storage.KV, c *CatalogService, m *metrics.Metrics, cfg SessionConfig) *SessionService {
	def := DefaultSessionConfig()
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	s := &SessionService{
		KV:       kv,
		Catalog:  c,
		Metrics:  m,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*list.Element),
		lru:      list.New(),
		done:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// KeyPrefix is the storage namespace of a session.
func KeyPrefix(sid string) string { return "session/" + sid + "/" }

// Store returns the session's store, creating and rehydrating it on first use.
func (s *SessionService) Store(ctx context.Context, sid string) (*store.Store, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	if st, ok, err := s.lookup(sid); ok || err != nil {
		return st, err
	}

	// Rehydration reads storage; other sessions must not wait on it.
	st := store.New(ctx, storage.WithPrefix(s.KV, KeyPrefix(sid)),
		store.WithMetrics(s.Metrics),
		store.WithProducts(s.Catalog.Products()),
	)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = st.Close()
		return nil, ErrSessionsClosed
	}
	if el, ok := s.sessions[sid]; ok {
		// lost the race to a concurrent first request; ours has no writes
		s.touchLocked(el)
		winner := el.Value.(*session).st
		s.mu.Unlock()
		_ = st.Close()
		return winner, nil
	}
	s.sessions[sid] = s.lru.PushFront(&session{id: sid, st: st, lastUsed: s.now()})
	var evicted []*session
	for s.lru.Len() > s.cfg.MaxSessions {
		evicted = append(evicted, s.removeLocked(s.lru.Back()))
	}
	s.mu.Unlock()

	s.Metrics.SessionOpened()
	applog.Info(nil, "session.open", map[string]any{"sid": sid})
	s.closeSessions(evicted, "lru")
	return st, nil
}

func (s *SessionService) lookup(sid string) (*store.Store, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, false, ErrSessionsClosed
	}
	el, ok := s.sessions[sid]
	if !ok {
		return nil, false, nil
	}
	s.touchLocked(el)
	return el.Value.(*session).st, true, nil
}

func (s *SessionService) touchLocked(el *list.Element) {
	el.Value.(*session).lastUsed = s.now()
	s.lru.MoveToFront(el)
}

func (s *SessionService) removeLocked(el *list.Element) *session {
	sess := s.lru.Remove(el).(*session)
	delete(s.sessions, sess.id)
	return sess
}

// closeSessions flushes and closes stores already removed from the index.
func (s *SessionService) closeSessions(closing []*session, reason string) {
	for _, sess := range closing {
		_ = sess.st.Close()
		s.Metrics.SessionClosed()
		applog.Info(nil, "session.close", map[string]any{"sid": sess.id, "reason": reason})
	}
}

// Len is the number of open session stores.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// Sweep closes stores idle for longer than IdleTTL and reports how many.
func (s *SessionService) Sweep() int {
	var expired []*session
	s.mu.Lock()
	cutoff := s.now().Add(-s.cfg.IdleTTL)
	for el := s.lru.Back(); el != nil; {
		if el.Value.(*session).lastUsed.After(cutoff) {
			break
		}
		prev := el.Prev()
		expired = append(expired, s.removeLocked(el))
		el = prev
	}
	s.mu.Unlock()
	s.closeSessions(expired, "idle")
	return len(expired)
}

func (s *SessionService) cleanupLoop() {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.done:
			return
		}
	}
}

// Dispatch applies in to the session's store.
func (s *SessionService) Dispatch(ctx context.Context, sid string, in store.Intent) (store.State, error) {
	st, err := s.Store(ctx, sid)
	if err != nil {
		return store.State{}, err
	}
	return st.Dispatch(ctx, in), nil
}

// State returns the session's current state.
func (s *SessionService) State(ctx context.Context, sid string) (store.State, error) {
	st, err := s.Store(ctx, sid)
	if err != nil {
		return store.State{}, err
	}
	return st.State(), nil
}

// Close stops the sweeper, then flushes and closes every session store.
// Later calls to Store fail with ErrSessionsClosed.
func (s *SessionService) Close() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.done)
	all := make([]*session, 0, s.lru.Len())
	for el := s.lru.Front(); el != nil; el = el.Next() {
		all = append(all, el.Value.(*session))
	}
	s.lru.Init()
	clear(s.sessions)
	s.mu.Unlock()

	s.closeSessions(all, "shutdown")
	return nil
}
