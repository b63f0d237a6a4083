package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/storefront/internal/cart/codec"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	loadErr error
	saveErr error
	gate    chan struct{}
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: map[string][]byte{}}
}

func (f *fakeStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	b, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (f *fakeStorage) Save(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.data[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStorage) Ping(ctx context.Context) error { return nil }
func (f *fakeStorage) Close() error                   { return nil }

func (f *fakeStorage) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *fakeStorage) stored(t *testing.T, key string) []domain.LineItem {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := codec.Decode(f.data[key])
	require.NoError(t, err)
	return items
}

type countingRecorder struct {
	mu                          sync.Mutex
	applied, rejected, failures map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{applied: map[string]int{}, rejected: map[string]int{}, failures: map[string]int{}}
}

func (r *countingRecorder) CommandApplied(c string) {
	r.mu.Lock()
	r.applied[c]++
	r.mu.Unlock()
}

func (r *countingRecorder) CommandRejected(c string) {
	r.mu.Lock()
	r.rejected[c]++
	r.mu.Unlock()
}

func (r *countingRecorder) PersistenceFailed(op string) {
	r.mu.Lock()
	r.failures[op]++
	r.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func lineItem(id, price string) domain.LineItem {
	return domain.LineItem{ID: id, Title: "item " + id, UnitPrice: decimal.RequireFromString(price)}
}

func seed(t *testing.T, f *fakeStorage, key string, items ...domain.LineItem) {
	t.Helper()
	data, err := codec.Encode(items)
	require.NoError(t, err)
	f.data[key] = data
}

func waitReady(t *testing.T, s *Store) {
	t.Helper()
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("store did not become ready")
	}
}

func openReady(t *testing.T, f *fakeStorage, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s := Open(context.Background(), f, opts...)
	waitReady(t, s)
	return s
}

func TestHydrate(t *testing.T) {
	t.Run("stored cart -> ready with items, no write", func(t *testing.T) {
		f := newFakeStorage()
		a := lineItem("a", "10")
		a.Quantity = 2
		seed(t, f, DefaultKey, a)

		s := openReady(t, f)

		snap := s.Snapshot()
		assert.Equal(t, PhaseReady, s.Phase())
		assert.False(t, snap.IsLoading)
		require.Len(t, snap.Items, 1)
		assert.True(t, snap.Subtotal.Equal(decimal.NewFromInt(20)))
		assert.Zero(t, f.saveCount())
	})

	t.Run("nothing stored -> empty ready cart", func(t *testing.T) {
		s := openReady(t, newFakeStorage())
		snap := s.Snapshot()
		assert.Empty(t, snap.Items)
		assert.False(t, snap.IsLoading)
	})

	t.Run("custom key", func(t *testing.T) {
		f := newFakeStorage()
		seed(t, f, "cart:abc", lineItem("x", "1"))
		s := openReady(t, f, WithKey("cart:abc"))
		assert.Equal(t, "cart:abc", s.Key())
		assert.Len(t, s.Snapshot().Items, 1)
	})

	t.Run("legacy array payload", func(t *testing.T) {
		f := newFakeStorage()
		f.data[DefaultKey] = []byte(`[{"id":"a","title":"Lamp","price":10,"quantity":3}]`)
		s := openReady(t, f)
		assert.True(t, s.Snapshot().Subtotal.Equal(decimal.NewFromInt(30)))
	})

	t.Run("second hydrate is a no-op", func(t *testing.T) {
		f := newFakeStorage()
		s := openReady(t, f)
		_, err := s.AddItem(context.Background(), lineItem("a", "1"), 1)
		require.NoError(t, err)

		s.Hydrate(context.Background())
		assert.Len(t, s.Snapshot().Items, 1)
	})

	t.Run("cancelled context still hydrates", func(t *testing.T) {
		f := newFakeStorage()
		seed(t, f, DefaultKey, lineItem("a", "4"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := Open(ctx, f, WithLogger(quietLogger()))
		waitReady(t, s)
		assert.Len(t, s.Snapshot().Items, 1)
	})
}

func TestCorruptStorageRecovery(t *testing.T) {
	for name, payload := range map[string]string{
		"non-json":  "definitely not json",
		"truncated": `{"version":1,"items":[{"id":"a","price":`,
	} {
		t.Run(name+" -> empty cart", func(t *testing.T) {
			f := newFakeStorage()
			f.data[DefaultKey] = []byte(payload)
			rec := newCountingRecorder()

			var reported []error
			s := openReady(t, f, WithRecorder(rec), WithErrorHandler(func(err error) { reported = append(reported, err) }))

			snap := s.Snapshot()
			assert.Empty(t, snap.Items)
			assert.False(t, snap.IsLoading)

			require.Len(t, reported, 1)
			var readErr *PersistenceReadError
			require.ErrorAs(t, reported[0], &readErr)
			assert.Equal(t, DefaultKey, readErr.Key)
			assert.ErrorIs(t, reported[0], codec.ErrCorrupt)
			assert.Equal(t, 1, rec.failures["read"])

			_, err := s.AddItem(context.Background(), lineItem("b", "2"), 1)
			require.NoError(t, err)
			assert.Len(t, f.stored(t, DefaultKey), 1)
		})
	}

	t.Run("read error -> empty cart, logged", func(t *testing.T) {
		f := newFakeStorage()
		f.loadErr = errors.New("connection refused")
		var buf bytes.Buffer

		s := Open(context.Background(), f, WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
		waitReady(t, s)

		assert.Empty(t, s.Snapshot().Items)
		assert.Contains(t, buf.String(), "cart persistence failed")
		assert.Contains(t, buf.String(), "connection refused")
	})
}

func TestPreHydrationWindow(t *testing.T) {
	f := newFakeStorage()
	stored := lineItem("a", "10")
	stored.Quantity = 1
	seed(t, f, DefaultKey, stored)
	f.gate = make(chan struct{})

	s := Open(context.Background(), f, WithLogger(quietLogger()))
	ctx := context.Background()

	snap, err := s.AddItem(ctx, lineItem("b", "5"), 1)
	require.NoError(t, err)
	assert.True(t, snap.IsLoading)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, PhaseHydrating, s.Phase())

	_, err = s.AddItem(ctx, lineItem("a", "10"), 1)
	require.NoError(t, err)

	_, err = s.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, s.Snapshot().IsLoading)

	_, err = s.AddItem(ctx, lineItem("c", "1.5"), 2)
	require.NoError(t, err)
	assert.Zero(t, f.saveCount(), "no writes before hydration")

	close(f.gate)
	waitReady(t, s)

	// Replay runs against the hydrated items, so the clear also drops "a".
	final := s.Snapshot()
	require.Len(t, final.Items, 1)
	assert.Equal(t, "c", final.Items[0].ID)
	assert.True(t, final.Subtotal.Equal(decimal.NewFromInt(3)))
	assert.False(t, final.IsLoading)

	assert.Equal(t, 1, f.saveCount(), "buffered commands persisted once")
	assert.Len(t, f.stored(t, DefaultKey), 1)
}

func TestPreHydrationWindowMergesWithStored(t *testing.T) {
	f := newFakeStorage()
	stored := lineItem("a", "10")
	stored.Quantity = 2
	seed(t, f, DefaultKey, stored)
	f.gate = make(chan struct{})

	s := Open(context.Background(), f, WithLogger(quietLogger()))
	_, err := s.AddItem(context.Background(), lineItem("a", "10"), 1)
	require.NoError(t, err)

	close(f.gate)
	waitReady(t, s)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Items[0].Quantity)
	assert.Equal(t, 3, f.stored(t, DefaultKey)[0].Quantity)
}

func TestDispatchScenarioPersists(t *testing.T) {
	f := newFakeStorage()
	s := openReady(t, f)
	ctx := context.Background()

	steps := []struct {
		name     string
		run      func() (domain.State, error)
		subtotal string
	}{
		{"add a", func() (domain.State, error) { return s.AddItem(ctx, lineItem("a", "10"), 0) }, "10"},
		{"add a again", func() (domain.State, error) { return s.AddItem(ctx, lineItem("a", "10"), 0) }, "20"},
		{"add b", func() (domain.State, error) { return s.AddItem(ctx, lineItem("b", "5"), 0) }, "25"},
		{"update a to 3", func() (domain.State, error) { return s.UpdateQuantity(ctx, "a", 3) }, "35"},
		{"remove b", func() (domain.State, error) { return s.RemoveItem(ctx, "b") }, "30"},
		{"clear", func() (domain.State, error) { return s.Clear(ctx) }, "0"},
	}

	for i, step := range steps {
		snap, err := step.run()
		require.NoError(t, err, step.name)
		assert.True(t, snap.Subtotal.Equal(decimal.RequireFromString(step.subtotal)), "%s: subtotal %s", step.name, snap.Subtotal)
		assert.Equal(t, i+1, f.saveCount(), "%s: one write per mutation", step.name)
		assert.Equal(t, len(snap.Items), len(f.stored(t, DefaultKey)))
	}
}

func TestDispatchRejects(t *testing.T) {
	f := newFakeStorage()
	rec := newCountingRecorder()
	s := openReady(t, f, WithRecorder(rec))
	ctx := context.Background()

	before, err := s.AddItem(ctx, lineItem("a", "10"), 2)
	require.NoError(t, err)
	saves := f.saveCount()

	for _, q := range []int{0, -5} {
		snap, err := s.UpdateQuantity(ctx, "a", q)
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)
		assert.Equal(t, 2, snap.Items[0].Quantity)
		assert.True(t, snap.Subtotal.Equal(before.Subtotal))
	}
	assert.Equal(t, saves, f.saveCount(), "rejected commands are not persisted")
	assert.Equal(t, 2, rec.rejected["update_quantity"])
	assert.Equal(t, 1, rec.applied["add_item"])

	_, err = s.Dispatch(ctx, nil)
	require.ErrorIs(t, err, domain.ErrUnknownCommand)
	assert.Equal(t, 1, rec.rejected["unknown"])
}

func TestCheckoutContextNotPersisted(t *testing.T) {
	f := newFakeStorage()
	s := openReady(t, f)
	ctx := context.Background()

	_, err := s.AddItem(ctx, lineItem("a", "10"), 1)
	require.NoError(t, err)
	saves := f.saveCount()

	_, err = s.Dispatch(ctx, domain.SetAddress{Address: domain.Address{
		Name: "Ann", Street1: "1 Main", City: "Austin", State: "TX", Zip: "78701", Country: "US",
	}})
	require.NoError(t, err)
	assert.Equal(t, saves, f.saveCount())
	assert.NotNil(t, s.Snapshot().Address)
}

func TestWriteFailureIsRecovered(t *testing.T) {
	f := newFakeStorage()
	rec := newCountingRecorder()
	var reported []error
	s := openReady(t, f, WithRecorder(rec), WithErrorHandler(func(err error) { reported = append(reported, err) }))

	f.mu.Lock()
	f.saveErr = errors.New("quota exceeded")
	f.mu.Unlock()

	snap, err := s.AddItem(context.Background(), lineItem("a", "3"), 1)
	require.NoError(t, err, "storage errors are not returned")
	assert.Len(t, snap.Items, 1, "memory advances regardless")

	require.Len(t, reported, 1)
	var writeErr *PersistenceWriteError
	require.ErrorAs(t, reported[0], &writeErr)
	assert.Equal(t, DefaultKey, writeErr.Key)
	assert.Equal(t, 1, rec.failures["write"])

	f.mu.Lock()
	f.saveErr = nil
	f.mu.Unlock()

	_, err = s.AddItem(context.Background(), lineItem("b", "1"), 1)
	require.NoError(t, err)
	assert.Len(t, f.stored(t, DefaultKey), 2, "next write carries the full cart")
}

func TestConcurrentAddItemIncrement(t *testing.T) {
	f := newFakeStorage()
	s := openReady(t, f)

	const N = 100
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := s.AddItem(ctx, lineItem("a", "1"), 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, N, snap.Items[0].Quantity)
	assert.Equal(t, N, f.stored(t, DefaultKey)[0].Quantity, "last write wins with the final state")
}

func TestClose(t *testing.T) {
	t.Run("never hydrated -> returns at once", func(t *testing.T) {
		s := New(newFakeStorage(), WithLogger(quietLogger()))
		assert.Equal(t, PhaseUninitialized, s.Phase())
		require.NoError(t, s.Close(context.Background()))
	})

	t.Run("waits for hydration", func(t *testing.T) {
		f := newFakeStorage()
		f.gate = make(chan struct{})
		s := Open(context.Background(), f, WithLogger(quietLogger()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, s.Close(ctx), context.DeadlineExceeded)

		close(f.gate)
		require.NoError(t, s.Close(context.Background()))
		assert.Equal(t, PhaseReady, s.Phase())
	})
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "uninitialized", PhaseUninitialized.String())
	assert.Equal(t, "hydrating", PhaseHydrating.String())
	assert.Equal(t, "ready", PhaseReady.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
