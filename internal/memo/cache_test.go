package memo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitResult[T any](t *testing.T, f *Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return f.Wait(ctx)
}

func TestLookupSharesOneComputation(t *testing.T) {
	c := New(Options[[]string]{})
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"cat"}, nil
	}

	var wg sync.WaitGroup
	futures := make([]*Future[[]string], 50)
	for i := range futures {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			futures[i] = c.Lookup("k", compute)
		}(i)
	}
	wg.Wait()
	close(release)

	for _, f := range futures {
		require.Same(t, futures[0], f)
		v, err := waitResult(t, f)
		require.NoError(t, err)
		assert.Equal(t, []string{"cat"}, v)
	}
	assert.Equal(t, int32(1), calls.Load())

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Computes)
	assert.Equal(t, uint64(49), stats.Hits)
	assert.Equal(t, 1, stats.Entries)
}

func TestSignalRecomputesExactlyOnce(t *testing.T) {
	signal := NewSignal()
	c := New(Options[int]{Signal: signal})
	defer c.Close()

	var calls atomic.Int32
	compute := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	before := c.Lookup("k", compute)
	v, err := waitResult(t, before)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	signal.Fire()

	var wg sync.WaitGroup
	after := make([]*Future[int], 20)
	for i := range after {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			after[i] = c.Lookup("k", compute)
		}(i)
	}
	wg.Wait()

	for _, f := range after {
		require.Same(t, after[0], f)
		v, err := waitResult(t, f)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	}
	assert.Equal(t, int32(2), calls.Load())

	// The handle delivered before the signal keeps its value.
	v, err = waitResult(t, before)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFailureIsSharedAndKept(t *testing.T) {
	c := New(Options[string]{})
	defer c.Close()

	var calls atomic.Int32
	boom := errors.New("backend down")
	compute := func(context.Context) (string, error) {
		calls.Add(1)
		return "", boom
	}

	first := c.Lookup("k", compute)
	_, err := waitResult(t, first)
	require.ErrorIs(t, err, boom)

	second := c.Lookup("k", compute)
	require.Same(t, first, second)
	_, err = waitResult(t, second)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), calls.Load())

	c.Evict("k")
	_, err = waitResult(t, c.Lookup("k", compute))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPanicBecomesError(t *testing.T) {
	c := New(Options[int]{})
	defer c.Close()

	_, err := waitResult(t, c.Lookup("k", func(context.Context) (int, error) {
		panic("kaboom")
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestWaitGivesUpWithoutCancellingOthers(t *testing.T) {
	c := New(Options[int]{})
	defer c.Close()

	release := make(chan struct{})
	f := c.Lookup("k", func(context.Context) (int, error) {
		<-release
		return 7, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	v, err := waitResult(t, f)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCloseCancelsComputeContext(t *testing.T) {
	c := New(Options[int]{})

	f := c.Lookup("k", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	c.Close()

	_, err := waitResult(t, f)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLRUStorageEvictsOldest(t *testing.T) {
	storage, err := NewLRUStorage[int](2)
	require.NoError(t, err)
	c := New(Options[int]{Storage: storage})
	defer c.Close()

	var calls atomic.Int32
	compute := func(context.Context) (int, error) { return int(calls.Add(1)), nil }

	for _, k := range []string{"a", "b", "c"} {
		_, err := waitResult(t, c.Lookup(k, compute))
		require.NoError(t, err)
	}
	require.Equal(t, 2, c.Stats().Entries)

	c.Lookup("a", compute)
	assert.Equal(t, int32(4), calls.Load(), "a was evicted and must be recomputed")
}

func TestLRUStorageKeepsRunningComputation(t *testing.T) {
	storage, err := NewLRUStorage[string](1)
	require.NoError(t, err)
	c := New(Options[string]{Storage: storage})
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	slow := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "a", nil
	}
	fast := func(context.Context) (string, error) { return "b", nil }

	first := c.Lookup("a", slow)
	c.Lookup("b", fast)
	again := c.Lookup("a", slow)
	require.Same(t, first, again, "a running computation must not be started twice")

	close(release)
	v, err := waitResult(t, again)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, uint64(2), c.Stats().Computes)
}

func TestEvictDropsRunningComputation(t *testing.T) {
	c := New(Options[string]{})
	defer c.Close()

	release := make(chan struct{})
	defer close(release)
	compute := func(context.Context) (string, error) {
		<-release
		return "x", nil
	}

	first := c.Lookup("k", compute)
	c.Evict("k")
	assert.NotSame(t, first, c.Lookup("k", compute))
}

func TestNewStorage(t *testing.T) {
	s, err := NewStorage[int](0)
	require.NoError(t, err)
	assert.IsType(t, &MapStorage[int]{}, s)

	s, err = NewStorage[int](8)
	require.NoError(t, err)
	assert.IsType(t, &LRUStorage[int]{}, s)
}

func TestKey(t *testing.T) {
	assert.Equal(t, `WordList_Search_["cat"]`, Key("WordList_Search", "cat"))
	assert.Equal(t, `p_[1,"x"]`, Key("p", 1, "x"))
	assert.Equal(t, `p_[]`, Key("p"))
	assert.NotEqual(t, Key("p", "a"), Key("q", "a"))
}

func TestWrap(t *testing.T) {
	c := New(Options[[]string]{})
	defer c.Close()

	var calls atomic.Int32
	search := Wrap("Backend_Search", c, func(_ context.Context, q string) ([]string, error) {
		calls.Add(1)
		return []string{q + "!"}, nil
	})

	ctx := context.Background()
	v, err := search(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat!"}, v)

	_, err = search(ctx, "cat")
	require.NoError(t, err)
	_, err = search(ctx, "dog")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())

	c.Signal().Fire()
	_, err = search(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPeek(t *testing.T) {
	f := Resolved(3, nil)
	v, err, ok := f.Peek()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	pending := newFuture[int]()
	_, _, ok = pending.Peek()
	assert.False(t, ok)
}
