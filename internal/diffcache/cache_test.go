package diffcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/epuerta/kori/internal/linediff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCache wraps the real engine and counts computations.
func countingCache(t *testing.T, maxEntries int) (*Cache, *atomic.Int64) {
	t.Helper()
	c := New(Options{MaxEntries: maxEntries})
	var calls atomic.Int64
	c.compute = func(oldText, newText string) linediff.Result {
		calls.Add(1)
		return linediff.Diff(oldText, newText)
	}
	return c, &calls
}

func TestCacheMemoizes(t *testing.T) {
	c, calls := countingCache(t, 4)
	ctx := context.Background()

	first, err := c.Diff(ctx, "a\nb", "a\nx\nb")
	require.NoError(t, err)
	second, err := c.Diff(ctx, "a\nb", "a\nx\nb")
	require.NoError(t, err)

	assert.Equal(t, linediff.Diff("a\nb", "a\nx\nb"), first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Entries: 1}, c.Stats())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, calls := countingCache(t, 2)
	ctx := context.Background()

	mustDiff := func(o, n string) {
		t.Helper()
		_, err := c.Diff(ctx, o, n)
		require.NoError(t, err)
	}

	mustDiff("a", "b")
	mustDiff("c", "d")
	mustDiff("a", "b") // hit, refreshes a/b
	mustDiff("e", "f") // evicts c/d
	require.EqualValues(t, 3, calls.Load())

	mustDiff("a", "b")
	assert.EqualValues(t, 3, calls.Load(), "a/b should still be cached")

	mustDiff("c", "d")
	assert.EqualValues(t, 4, calls.Load(), "c/d should have been evicted")

	st := c.Stats()
	assert.Equal(t, 2, st.Entries)
	assert.EqualValues(t, 2, st.Evictions)
}

func TestCacheCollapsesConcurrentRequests(t *testing.T) {
	c := New(Options{MaxEntries: 4})
	release := make(chan struct{})
	var calls atomic.Int64
	c.compute = func(oldText, newText string) linediff.Result {
		calls.Add(1)
		<-release
		return linediff.Diff(oldText, newText)
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]linediff.Result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Diff(context.Background(), "old", "new")
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, res := range results {
		assert.Equal(t, linediff.Diff("old", "new"), res)
	}
}

func TestCacheContextCancellation(t *testing.T) {
	c := New(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Diff(ctx, "a", "b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Stats{}, c.Stats())

	// A caller that gives up while the diff is running does not stop it from
	// being cached.
	release := make(chan struct{})
	c.compute = func(oldText, newText string) linediff.Result {
		<-release
		return linediff.Diff(oldText, newText)
	}
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Diff(ctx, "slow", "slower")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.Eventually(t, func() bool { return c.Stats().Entries == 1 }, time.Second, 5*time.Millisecond)

	res, err := c.Diff(context.Background(), "slow", "slower")
	require.NoError(t, err)
	assert.Equal(t, linediff.Diff("slow", "slower"), res)
	assert.EqualValues(t, 1, c.Stats().Hits)
}

func TestCachePurge(t *testing.T) {
	c, calls := countingCache(t, 4)
	ctx := context.Background()

	_, _ = c.Diff(ctx, "x", "y")
	c.Purge()
	assert.Equal(t, 0, c.Stats().Entries)

	_, _ = c.Diff(ctx, "x", "y")
	assert.EqualValues(t, 2, calls.Load())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("ab", "c"), Key("ab", "c"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, Key("a", "b"), Key("b", "a"))
	assert.Len(t, Key("", ""), 64)
}
