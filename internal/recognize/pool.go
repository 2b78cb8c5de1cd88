package recognize

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/datadigshawn/aiSpeech-2026/internal/timeline"
)

// PoolConfig bounds the per-segment recognition fan-out.
type PoolConfig struct {
	Workers     int
	CallTimeout time.Duration
	Retries     int           // retry attempts after the first call
	RetryDelay  time.Duration // base backoff, doubled per attempt
}

// DefaultPoolConfig returns sensible pool settings.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:     4,
		CallTimeout: 120 * time.Second,
		Retries:     2,
		RetryDelay:  2 * time.Second,
	}
}

// Pool runs recognition over segments with bounded concurrency. A segment
// whose recognition permanently fails yields an error placeholder for that
// segment only; it never blocks or fails siblings.
type Pool struct {
	rec Recognizer
	cfg PoolConfig
}

// NewPool wraps a recognizer with a bounded worker pool.
func NewPool(rec Recognizer, cfg PoolConfig) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Pool{rec: rec, cfg: cfg}
}

// Run recognizes every request and returns results keyed by segment ID.
// Every request gets an entry: failed segments carry an empty transcript
// and the final error. Run returns once all calls have completed.
func (p *Pool) Run(ctx context.Context, reqs []Request) map[string]timeline.Result {
	results := make([]timeline.Result, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, req := range reqs {
		i, req := i, req // per-iteration copies for the goroutine (pre-1.22 toolchain)
		g.Go(func() error {
			results[i] = p.recognizeWithRetry(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]timeline.Result, len(results))
	for _, res := range results {
		out[res.SegmentID] = res
	}
	return out
}

func (p *Pool) recognizeWithRetry(ctx context.Context, req Request) timeline.Result {
	fields := log.Fields{"segment_id": req.SegmentID, "backend": p.rec.Name()}

	delay := p.cfg.RetryDelay
	var lastErr error

	for attempt := 0; attempt <= p.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return timeline.Result{SegmentID: req.SegmentID, Err: ctx.Err().Error()}
			case <-time.After(delay):
			}
			delay *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		res, err := p.rec.Recognize(callCtx, req)
		cancel()

		if err == nil {
			res.SegmentID = req.SegmentID
			return res
		}

		lastErr = err
		if !IsTransient(err) {
			log.WithFields(fields).WithError(err).Warn("recognition failed permanently")
			break
		}
		log.WithFields(fields).WithError(err).WithField("attempt", attempt+1).
			Warn("transient recognition failure, retrying")

		if ctx.Err() != nil {
			break
		}
	}

	// Exhausted: record an empty result for this segment only.
	return timeline.Result{SegmentID: req.SegmentID, Err: lastErr.Error()}
}
