package recognize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadigshawn/aiSpeech-2026/internal/timeline"
)

// fakeRecognizer scripts per-segment outcomes and records call counts.
type fakeRecognizer struct {
	mu      sync.Mutex
	calls   map[string]int
	outcome func(req Request, attempt int) (timeline.Result, error)
	active  int
	peak    int
}

func newFakeRecognizer(outcome func(req Request, attempt int) (timeline.Result, error)) *fakeRecognizer {
	return &fakeRecognizer{calls: make(map[string]int), outcome: outcome}
}

func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) Recognize(ctx context.Context, req Request) (timeline.Result, error) {
	f.mu.Lock()
	f.calls[req.SegmentID]++
	attempt := f.calls[req.SegmentID]
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	return f.outcome(req, attempt)
}

func poolConfig() PoolConfig {
	return PoolConfig{
		Workers:     2,
		CallTimeout: time.Second,
		Retries:     2,
		RetryDelay:  time.Millisecond,
	}
}

func TestPoolRunCollectsAllResults(t *testing.T) {
	rec := newFakeRecognizer(func(req Request, attempt int) (timeline.Result, error) {
		return timeline.Result{Transcript: "text for " + req.SegmentID}, nil
	})
	pool := NewPool(rec, poolConfig())

	reqs := []Request{
		{SegmentID: "chunk_001", AudioPath: "a.wav"},
		{SegmentID: "chunk_002", AudioPath: "b.wav"},
		{SegmentID: "chunk_003", AudioPath: "c.wav"},
	}
	results := pool.Run(context.Background(), reqs)

	require.Len(t, results, 3)
	for _, req := range reqs {
		res, ok := results[req.SegmentID]
		require.True(t, ok, "missing result for %s", req.SegmentID)
		assert.Equal(t, req.SegmentID, res.SegmentID)
		assert.Equal(t, "text for "+req.SegmentID, res.Transcript)
		assert.Empty(t, res.Err)
	}
}

func TestPoolRetriesTransientThenSucceeds(t *testing.T) {
	rec := newFakeRecognizer(func(req Request, attempt int) (timeline.Result, error) {
		if attempt < 3 {
			return timeline.Result{}, Transient(errors.New("daemon busy"))
		}
		return timeline.Result{Transcript: "recovered"}, nil
	})
	pool := NewPool(rec, poolConfig())

	results := pool.Run(context.Background(), []Request{{SegmentID: "chunk_001"}})

	res := results["chunk_001"]
	assert.Equal(t, "recovered", res.Transcript)
	assert.Empty(t, res.Err)
	assert.Equal(t, 3, rec.calls["chunk_001"])
}

func TestPoolStopsOnPermanentError(t *testing.T) {
	rec := newFakeRecognizer(func(req Request, attempt int) (timeline.Result, error) {
		return timeline.Result{}, errors.New("unsupported audio format")
	})
	pool := NewPool(rec, poolConfig())

	results := pool.Run(context.Background(), []Request{{SegmentID: "chunk_001"}})

	res := results["chunk_001"]
	assert.Empty(t, res.Transcript)
	assert.Contains(t, res.Err, "unsupported audio format")
	assert.Equal(t, 1, rec.calls["chunk_001"], "permanent errors must not retry")
}

func TestPoolFailureDoesNotBlockSiblings(t *testing.T) {
	rec := newFakeRecognizer(func(req Request, attempt int) (timeline.Result, error) {
		if req.SegmentID == "chunk_002" {
			return timeline.Result{}, Transient(errors.New("always failing"))
		}
		return timeline.Result{Transcript: "ok"}, nil
	})
	pool := NewPool(rec, poolConfig())

	results := pool.Run(context.Background(), []Request{
		{SegmentID: "chunk_001"},
		{SegmentID: "chunk_002"},
		{SegmentID: "chunk_003"},
	})

	assert.Equal(t, "ok", results["chunk_001"].Transcript)
	assert.Equal(t, "ok", results["chunk_003"].Transcript)

	failed := results["chunk_002"]
	assert.Empty(t, failed.Transcript)
	assert.Contains(t, failed.Err, "always failing")
	assert.Equal(t, 3, rec.calls["chunk_002"], "transient errors retry to exhaustion")
}

func TestPoolBoundsConcurrency(t *testing.T) {
	rec := newFakeRecognizer(func(req Request, attempt int) (timeline.Result, error) {
		return timeline.Result{Transcript: "ok"}, nil
	})
	cfg := poolConfig()
	cfg.Workers = 2
	pool := NewPool(rec, cfg)

	reqs := make([]Request, 12)
	for i := range reqs {
		reqs[i] = Request{SegmentID: string(rune('a' + i))}
	}
	pool.Run(context.Background(), reqs)

	assert.LessOrEqual(t, rec.peak, 2, "observed %d concurrent calls", rec.peak)
}

func TestPoolCanceledContext(t *testing.T) {
	rec := newFakeRecognizer(func(req Request, attempt int) (timeline.Result, error) {
		return timeline.Result{}, Transient(errors.New("flaky"))
	})
	cfg := poolConfig()
	cfg.RetryDelay = time.Minute // would stall without cancellation
	pool := NewPool(rec, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan map[string]timeline.Result, 1)
	go func() {
		done <- pool.Run(ctx, []Request{{SegmentID: "chunk_001"}})
	}()

	select {
	case results := <-done:
		assert.NotEmpty(t, results["chunk_001"].Err)
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not return after cancellation")
	}
}

func TestTransientErrorWrapping(t *testing.T) {
	base := errors.New("socket reset")
	err := Transient(base)

	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsTransient(errors.New("plain")))
	assert.NoError(t, Transient(nil))
}
