package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// KeyPrefix namespaces per-session carts in shared storage.
const KeyPrefix = "cart:"

// Registry hands out one Store per session, all backed by the same storage.
// Stores are opened lazily on first use and start hydrating immediately.
// Sweep drops stores that have gone idle.
type Registry struct {
	storage Storage
	opts    []Option
	now     func() time.Time

	mu     sync.Mutex
	stores map[string]*entry
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

func NewRegistry(storage Storage, opts ...Option) *Registry {
	return &Registry{storage: storage, opts: opts, now: time.Now, stores: make(map[string]*entry)}
}

// KeyFor maps a session id to its storage key. An empty session maps to
// DefaultKey.
func KeyFor(sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return DefaultKey
	}
	return KeyPrefix + sessionID
}

// Store returns the session's store, opening it on first use. Every call
// counts as activity for Sweep.
func (r *Registry) Store(ctx context.Context, sessionID string) *Store {
	key := KeyFor(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.stores[key]; ok {
		e.lastUsed = r.now()
		return e.store
	}
	opts := append(append([]Option(nil), r.opts...), WithKey(key))
	s := Open(ctx, r.storage, opts...)
	r.stores[key] = &entry{store: s, lastUsed: r.now()}
	return s
}

// Sweep closes and forgets every hydrated store unused for longer than idle.
// Their carts stay in storage; the next Store call hydrates them again.
// It returns the number of stores dropped.
func (r *Registry) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var evicted []*Store
	for key, e := range r.stores {
		if e.lastUsed.After(cutoff) {
			continue
		}
		select {
		case <-e.store.Ready():
		default:
			// still hydrating
			continue
		}
		evicted = append(evicted, e.store)
		delete(r.stores, key)
	}
	r.mu.Unlock()

	for _, s := range evicted {
		_ = s.Close(ctx)
	}
	return len(evicted)
}

// Run sweeps idle stores every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 || idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx, idle)
		}
	}
}

// Ready returns the session's store once hydration has finished.
func (r *Registry) Ready(ctx context.Context, sessionID string) (*Store, error) {
	s := r.Store(ctx, sessionID)
	select {
	case <-s.Ready():
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Ping checks the shared storage.
func (r *Registry) Ping(ctx context.Context) error {
	return r.storage.Ping(ctx)
}

// Close waits for every open store to finish hydrating, then closes the
// shared storage.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, e := range r.stores {
		stores = append(stores, e.store)
	}
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range stores {
		g.Go(func() error { return s.Close(gctx) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return r.storage.Close()
}
