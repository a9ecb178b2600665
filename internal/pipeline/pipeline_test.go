package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(workers int) *Context {
	pc := NewContext("test")
	pc.Workers = workers
	return pc
}

func TestPipe(t *testing.T) {
	double := New("double", func(_ context.Context, _ *Context, in int) (int, error) {
		return in * 2, nil
	})
	describe := New("describe", func(_ context.Context, _ *Context, in int) (string, error) {
		return strconv.Itoa(in), nil
	})

	t.Run("Sequential composition", func(t *testing.T) {
		out, err := Run(context.Background(), testContext(1), Pipe(double, describe), 21)
		require.NoError(t, err)
		assert.Equal(t, "42", out)
	})

	t.Run("First failure short-circuits", func(t *testing.T) {
		boom := errors.New("boom")
		failing := New("failing", func(_ context.Context, _ *Context, _ int) (int, error) {
			return 0, boom
		})
		var secondRan atomic.Bool
		recording := New("recording", func(_ context.Context, _ *Context, in int) (string, error) {
			secondRan.Store(true)
			return "", nil
		})

		_, err := Run(context.Background(), testContext(1), Pipe(failing, recording), 1)
		assert.ErrorIs(t, err, boom)
		assert.False(t, secondRan.Load())
	})
}

func TestMap(t *testing.T) {
	t.Run("Results preserve input order", func(t *testing.T) {
		slow := New("slow", func(_ context.Context, _ *Context, in int) (int, error) {
			// Later elements finish first; the output order must not care.
			time.Sleep(time.Duration(10-in) * time.Millisecond)
			return in * in, nil
		})

		out, err := Run(context.Background(), testContext(8), Map(slow), []int{1, 2, 3, 4, 5})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4, 9, 16, 25}, out)
	})

	t.Run("Concurrency is bounded by the worker count", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		counting := New("counting", func(_ context.Context, _ *Context, _ int) (int, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return 0, nil
		})

		_, err := Run(context.Background(), testContext(2), Map(counting), make([]int, 10))
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("One failing element fails the step but siblings complete", func(t *testing.T) {
		boom := errors.New("boom")
		var completed atomic.Int32
		flaky := New("flaky", func(_ context.Context, _ *Context, in int) (int, error) {
			if in == 3 {
				return 0, boom
			}
			time.Sleep(2 * time.Millisecond)
			completed.Add(1)
			return in, nil
		})

		_, err := Run(context.Background(), testContext(8), Map(flaky), []int{1, 2, 3, 4, 5})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int32(4), completed.Load())
	})

	t.Run("Empty input yields empty output", func(t *testing.T) {
		id := New("id", func(_ context.Context, _ *Context, in int) (int, error) {
			return in, nil
		})
		out, err := Run(context.Background(), testContext(4), Map(id), nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestParallel(t *testing.T) {
	t.Run("Both branches see the same input and both outputs join", func(t *testing.T) {
		length := New("length", func(_ context.Context, _ *Context, in string) (int, error) {
			return len(in), nil
		})
		upper := New("upper", func(_ context.Context, _ *Context, in string) (string, error) {
			return fmt.Sprintf("%s!", in), nil
		})

		out, err := Run(context.Background(), testContext(2), Parallel2(length, upper), "hello")
		require.NoError(t, err)
		assert.Equal(t, 5, out.First)
		assert.Equal(t, "hello!", out.Second)
	})

	t.Run("A failing branch does not cancel its sibling", func(t *testing.T) {
		boom := errors.New("boom")
		failFast := New("failFast", func(_ context.Context, _ *Context, _ string) (int, error) {
			return 0, boom
		})
		var finished atomic.Bool
		slow := New("slow", func(_ context.Context, _ *Context, in string) (string, error) {
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			return in, nil
		})

		out, err := Run(context.Background(), testContext(2), Parallel2(failFast, slow), "x")
		assert.ErrorIs(t, err, boom)
		assert.True(t, finished.Load(), "sibling branch must run to completion")
		assert.Equal(t, "x", out.Second)
	})

	t.Run("Three-way join collects every branch error", func(t *testing.T) {
		errA := errors.New("a failed")
		errC := errors.New("c failed")
		a := New("a", func(_ context.Context, _ *Context, _ int) (int, error) { return 0, errA })
		b := New("b", func(_ context.Context, _ *Context, in int) (int, error) { return in, nil })
		c := New("c", func(_ context.Context, _ *Context, _ int) (int, error) { return 0, errC })

		out, err := Run(context.Background(), testContext(3), Parallel3(a, b, c), 7)
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errC)
		assert.Equal(t, 7, out.Second)
	})
}

func TestMapSharedContext(t *testing.T) {
	// Per-element invocations share the run context but must not share
	// any per-invocation state; writes go to distinct output slots.
	var mu sync.Mutex
	seen := make(map[string]bool)

	record := New("record", func(_ context.Context, pc *Context, in int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		seen[pc.RepoID] = true
		return fmt.Sprintf("%s#%d", pc.RepoID, in), nil
	})

	pc := testContext(4).WithRepo("acme/widgets")
	out, err := Run(context.Background(), pc, Map(record), []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets#1", "acme/widgets#2", "acme/widgets#3"}, out)
	assert.Equal(t, map[string]bool{"acme/widgets": true}, seen)
}
