package store

import (
	"context"
	"sync"

	applog "bookstore/internal/log"
	"bookstore/internal/metrics"
	"bookstore/internal/storage"
)

type writeOp struct {
	value  string
	delete bool
}

// writer applies persistence writes on its own goroutine. Pending writes
// are coalesced per key so only the latest value of a slice is written;
// keys are written in the order they were first queued.
type writer struct {
	kv      storage.KV
	metrics *metrics.Metrics

	mu      sync.Mutex
	pending map[string]writeOp
	order   []string
	closed  bool

	wake    chan struct{}
	flushes chan chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

func newWriter(kv storage.KV, m *metrics.Metrics) *writer {
	w := &writer{
		kv:      kv,
		metrics: m,
		pending: make(map[string]writeOp),
		wake:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) enqueue(key string, op writeOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		applog.Warn(nil, "store.persist.dropped", storage.ErrClosed, map[string]any{"key": key})
		return
	}
	if _, ok := w.pending[key]; !ok {
		w.order = append(w.order, key)
	}
	w.pending[key] = op
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flushes:
			w.drain()
			close(ack)
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	w.mu.Lock()
	pending, order := w.pending, w.order
	w.pending = make(map[string]writeOp)
	w.order = nil
	w.mu.Unlock()

	// Writes are best-effort: failures are logged and counted, never retried.
	ctx := context.Background()
	for _, key := range order {
		op := pending[key]
		var err error
		if op.delete {
			err = w.kv.Delete(ctx, key)
			w.metrics.PersistWrite(key, "delete", err)
		} else {
			err = w.kv.Set(ctx, key, op.value)
			w.metrics.PersistWrite(key, "set", err)
		}
		if err != nil {
			applog.Error(nil, "store.persist.fail", err, map[string]any{"key": key, "delete": op.delete})
		}
	}
}

// flush blocks until every write queued before the call has been applied.
func (w *writer) flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.flushes <- ack:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close applies what is pending and stops the goroutine. Safe to call twice.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.stop)
	<-w.done
}
