package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dwikikusuma/storefront/internal/cart/codec"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

const (
	DefaultKey            = "cart"
	defaultPersistTimeout = 5 * time.Second
)

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseHydrating
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseHydrating:
		return "hydrating"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithErrorHandler observes every recovered persistence failure. fn may run
// with the store lock held and must not call back into the store.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Store) { s.onErr = fn }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Store) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithPersistTimeout bounds a single save.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// Store owns one cart. Commands are applied to memory synchronously in every
// phase; storage is written only once hydration has finished. Commands that
// arrive before then are replayed on top of the hydrated items and persisted
// together.
type Store struct {
	storage        Storage
	key            string
	log            *slog.Logger
	rec            Recorder
	onErr          func(error)
	tracer         trace.Tracer
	persistTimeout time.Duration

	mu      sync.Mutex
	phase   Phase
	state   domain.State
	pending []domain.Command

	once  sync.Once
	ready chan struct{}
}

func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:        storage,
		key:            DefaultKey,
		log:            slog.Default(),
		rec:            nopRecorder{},
		tracer:         otel.Tracer("github.com/dwikikusuma/storefront/internal/cart"),
		persistTimeout: defaultPersistTimeout,
		phase:          PhaseUninitialized,
		state:          domain.Initial(),
		ready:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("key", s.key))
	return s
}

// Open returns a store whose hydration is already running in the background.
func Open(ctx context.Context, storage Storage, opts ...Option) *Store {
	s := New(storage, opts...)
	s.mu.Lock()
	s.phase = PhaseHydrating
	s.mu.Unlock()
	go s.Hydrate(ctx)
	return s
}

// Hydrate reads the persisted cart exactly once per store. Later calls return
// immediately. Cancelling ctx does not abort the read.
func (s *Store) Hydrate(ctx context.Context) {
	s.once.Do(func() {
		s.hydrate(context.WithoutCancel(ctx))
	})
}

func (s *Store) hydrate(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "cart.hydrate", trace.WithAttributes(attribute.String("cart.key", s.key)))
	defer span.End()

	s.mu.Lock()
	s.phase = PhaseHydrating
	s.mu.Unlock()

	items := s.load(ctx, span)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(s.ready)

	state, _ := domain.Apply(s.state, domain.ReplaceItems{Items: items})

	dirty := false
	for _, cmd := range s.pending {
		next, err := domain.Apply(state, cmd)
		if err != nil {
			s.log.Debug("pending cart command dropped on replay", slog.String("command", cmd.Name()), slog.Any("err", err))
			continue
		}
		state = next
		dirty = dirty || domain.MutatesItems(cmd)
	}
	s.pending = nil
	s.state = state
	s.phase = PhaseReady

	span.SetAttributes(attribute.Int("cart.items", len(items)), attribute.Bool("cart.replayed", dirty))
	s.log.Info("cart hydrated", slog.Int("items", len(state.Items)), slog.String("subtotal", state.Subtotal.String()))

	if dirty {
		s.persistLocked(ctx)
	}
}

func (s *Store) load(ctx context.Context, span trace.Span) []domain.LineItem {
	data, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		span.RecordError(err)
		s.report("read", &PersistenceReadError{Key: s.key, Err: err})
		return nil
	}

	items, err := codec.Decode(data)
	if err != nil {
		span.RecordError(err)
		s.report("read", &PersistenceReadError{Key: s.key, Err: err})
		return nil
	}
	return items
}

// Dispatch applies cmd and returns the resulting snapshot. A rejected command
// leaves the state unchanged and returns the validation error. Storage
// failures are never returned.
func (s *Store) Dispatch(ctx context.Context, cmd domain.Command) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := domain.Apply(s.state, cmd)
	if err != nil {
		s.rec.CommandRejected(commandName(cmd))
		return s.state.Clone(), err
	}
	s.rec.CommandApplied(cmd.Name())

	if s.phase != PhaseReady {
		next.IsLoading = true
		s.state = next
		s.pending = append(s.pending, cmd)
		return s.state.Clone(), nil
	}

	s.state = next
	if domain.MutatesItems(cmd) {
		s.persistLocked(ctx)
	}
	return s.state.Clone(), nil
}

func (s *Store) AddItem(ctx context.Context, item domain.LineItem, quantity int) (domain.State, error) {
	return s.Dispatch(ctx, domain.AddItem{Item: item, Quantity: quantity})
}

func (s *Store) RemoveItem(ctx context.Context, id string) (domain.State, error) {
	return s.Dispatch(ctx, domain.RemoveItem{ID: id})
}

func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) (domain.State, error) {
	return s.Dispatch(ctx, domain.UpdateQuantity{ID: id, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) (domain.State, error) {
	return s.Dispatch(ctx, domain.ClearCart{})
}

func (s *Store) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Store) Key() string { return s.key }

// Ready is closed once hydration has finished.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Close waits for a running hydration to finish. It does not close the
// underlying storage, which may be shared between stores.
func (s *Store) Close(ctx context.Context) error {
	if s.Phase() == PhaseUninitialized {
		return nil
	}
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "cart.persist", trace.WithAttributes(
		attribute.String("cart.key", s.key),
		attribute.Int("cart.items", len(s.state.Items)),
	))
	defer span.End()

	data, err := codec.Encode(s.state.Items)
	if err == nil {
		err = s.storage.Save(ctx, s.key, data)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.report("write", &PersistenceWriteError{Key: s.key, Err: err})
	}
}

func (s *Store) report(op string, err error) {
	s.log.Warn("cart persistence failed", slog.String("op", op), slog.Any("err", err))
	s.rec.PersistenceFailed(op)
	if s.onErr != nil {
		s.onErr(err)
	}
}

func commandName(cmd domain.Command) string {
	if cmd == nil {
		return "unknown"
	}
	return cmd.Name()
}
