// Package pipeline wires the segmentation stages together: ingest,
// classify, build segments, establish the time base, recognize, align, and
// persist.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/datadigshawn/aiSpeech-2026/internal/audio"
	"github.com/datadigshawn/aiSpeech-2026/internal/config"
	"github.com/datadigshawn/aiSpeech-2026/internal/recognize"
	"github.com/datadigshawn/aiSpeech-2026/internal/report"
	"github.com/datadigshawn/aiSpeech-2026/internal/segment"
	"github.com/datadigshawn/aiSpeech-2026/internal/session"
	"github.com/datadigshawn/aiSpeech-2026/internal/store"
	"github.com/datadigshawn/aiSpeech-2026/internal/timeline"
	"github.com/datadigshawn/aiSpeech-2026/internal/vad"
)

// Pipeline processes recordings end to end. Recognizer and Store are
// optional: without a recognizer the run stops at the timeline, and
// without a store records only go to the report files.
type Pipeline struct {
	cfg config.Config
	rec recognize.Recognizer
	st  *store.Store
}

// Option customizes a pipeline.
type Option func(*Pipeline)

// WithRecognizer attaches a recognition back-end.
func WithRecognizer(rec recognize.Recognizer) Option {
	return func(p *Pipeline) { p.rec = rec }
}

// WithStore attaches record persistence.
func WithStore(st *store.Store) Option {
	return func(p *Pipeline) { p.st = st }
}

// New builds a pipeline from config.
func New(cfg config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) detectorConfig() vad.Config {
	return vad.Config{
		Engine:       vad.Engine(p.cfg.Engine),
		Threshold:    p.cfg.Threshold,
		MinSpeechMS:  p.cfg.MinSpeechMS,
		MinSilenceMS: p.cfg.MinSilenceMS,
		MaxChunkMS:   p.cfg.MaxChunkMS,
		FrameMS:      p.cfg.FrameMS,
		ModelPath:    p.cfg.ModelPath,
	}
}

// Process runs one recording through the whole pipeline and returns its
// summary. Configuration and integrity errors fail the session; per-segment
// recognition issues degrade it without failing it.
func (p *Pipeline) Process(ctx context.Context, path string) (*report.Summary, error) {
	vcfg := p.detectorConfig()
	if err := vcfg.Validate(); err != nil {
		return nil, err
	}

	src, err := audio.ReadWAV(path)
	if err != nil {
		return nil, err
	}

	flog := log.WithFields(log.Fields{"file": src.Name})
	flog.WithFields(log.Fields{
		"sample_rate": src.SampleRate,
		"channels":    src.Channels,
		"duration_s":  fmt.Sprintf("%.2f", src.DurationSeconds()),
	}).Info("processing recording")

	// The session records the recording as ingested; downmixing and
	// resampling produce a working copy for detection and extraction only.
	sess := session.New(src, session.WithMode(p.cfg.Mode))

	proc := src
	if proc.Channels > 1 {
		proc = proc.Downmix()
	}
	if vcfg.Engine == vad.EngineSilero && proc.SampleRate != vad.CanonicalRate {
		flog.WithField("target_rate", vad.CanonicalRate).Info("resampling for model-based detection")
		proc = proc.Resample(vad.CanonicalRate)
	}

	segs, err := p.segments(ctx, vcfg, proc)
	if err != nil {
		return nil, err
	}

	outDir := filepath.Join(p.cfg.OutputDir, stem(src.Name))

	if len(segs) == 0 {
		flog.Warn("no speech detected")
		return p.finishNoSpeech(sess, outDir)
	}

	segs, err = segment.Extract(proc, segs, filepath.Join(outDir, "chunks"))
	if err != nil {
		return nil, err
	}

	tl, err := timeline.Build(sess, segs)
	if err != nil {
		return nil, err
	}

	var events *timeline.Events
	var stats timeline.AlignStats
	results := map[string]timeline.Result{}
	if p.rec != nil {
		results = p.recognizeAll(ctx, proc, segs)
		events, stats = timeline.Align(tl, results, p.rec.Name())
	}

	sum := p.summarize(sess, src, segs, results, stats)

	if err := p.persist(sess, tl, events); err != nil {
		return nil, err
	}
	if err := report.Write(outDir, sess, tl, events, sum); err != nil {
		return nil, err
	}

	flog.WithFields(log.Fields{
		"segments": sum.Segments,
		"degraded": sum.Degraded,
		"gaps":     sum.AlignmentGaps,
		"clamped":  sum.ClampedTokens,
	}).Info("session complete")

	return &sum, nil
}

// segments runs the sequential single-pass scan: classify every frame,
// apply hysteresis, then cap segment duration.
func (p *Pipeline) segments(ctx context.Context, vcfg vad.Config, src *audio.Source) ([]segment.Segment, error) {
	classifier, err := vad.New(vcfg, src)
	if err != nil {
		return nil, err
	}

	frames := src.Frames(vcfg.FrameMS)
	decisions := make([]bool, len(frames))
	for i, f := range frames {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		speech, err := classifier.Classify(f)
		if err != nil {
			return nil, fmt.Errorf("classify frame %d: %w", f.Index, err)
		}
		decisions[i] = speech
	}

	intervals := segment.Build(decisions, segment.BuildConfig{
		FrameMS:      vcfg.FrameMS,
		MinSpeechMS:  vcfg.MinSpeechMS,
		MinSilenceMS: vcfg.MinSilenceMS,
	})
	intervals = segment.SplitAll(intervals, int64(vcfg.MaxChunkMS))
	return segment.Finalize(intervals), nil
}

func (p *Pipeline) recognizeAll(ctx context.Context, src *audio.Source, segs []segment.Segment) map[string]timeline.Result {
	reqs := make([]recognize.Request, len(segs))
	for i, seg := range segs {
		reqs[i] = recognize.Request{
			SegmentID:  seg.ID,
			AudioPath:  seg.AudioPath,
			SampleRate: src.SampleRate,
			Language:   p.cfg.Language,
		}
	}

	pool := recognize.NewPool(p.rec, recognize.PoolConfig{
		Workers:     p.cfg.Workers,
		CallTimeout: time.Duration(p.cfg.CallTimeoutSec) * time.Second,
		Retries:     p.cfg.Retries,
		RetryDelay:  2 * time.Second,
	})
	return pool.Run(ctx, reqs)
}

func (p *Pipeline) finishNoSpeech(sess *session.Session, outDir string) (*report.Summary, error) {
	tl, err := timeline.Build(sess, nil)
	if err != nil {
		return nil, err
	}

	sum := report.Summary{
		SessionID:  sess.ID,
		SourceName: sess.SourceName,
		Status:     report.StatusNoSpeech,
	}

	if err := p.persist(sess, tl, nil); err != nil {
		return nil, err
	}
	if err := report.Write(outDir, sess, tl, nil, sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (p *Pipeline) summarize(sess *session.Session, src *audio.Source, segs []segment.Segment, results map[string]timeline.Result, stats timeline.AlignStats) report.Summary {
	var speechMS int64
	for _, seg := range segs {
		speechMS += seg.DurationMS
	}

	degraded := 0
	for _, res := range results {
		if res.Err != "" {
			degraded++
		}
	}

	ratio := 0.0
	if d := src.DurationSeconds(); d > 0 {
		ratio = float64(speechMS) / 1000 / d
	}

	return report.Summary{
		SessionID:     sess.ID,
		SourceName:    sess.SourceName,
		Status:        report.StatusOK,
		Segments:      len(segs),
		Recognized:    stats.Matched - degraded,
		Degraded:      degraded,
		AlignmentGaps: stats.Gaps,
		ClampedTokens: stats.ClampedTokens,
		SpeechRatio:   ratio,
	}
}

func (p *Pipeline) persist(sess *session.Session, tl *timeline.Timeline, events *timeline.Events) error {
	if p.st == nil {
		return nil
	}

	if err := p.st.SaveSession(store.SessionRow{
		ID:              sess.ID,
		SourceName:      sess.SourceName,
		SessionStart:    sess.Start,
		StartSource:     sess.StartSource,
		Mode:            sess.Mode,
		SampleRate:      sess.Audio.SampleRate,
		Channels:        sess.Audio.Channels,
		BitDepth:        sess.Audio.BitDepth,
		DurationSeconds: sess.Audio.DurationSeconds,
	}); err != nil {
		return err
	}

	segRows := make([]store.SegmentRow, len(tl.Entries))
	for i, e := range tl.Entries {
		segRows[i] = store.SegmentRow{
			SessionID:     tl.SessionID,
			SegmentID:     e.SegmentID,
			OffsetMS:      e.OffsetMS,
			DurationMS:    e.DurationMS,
			AbsoluteStart: e.AbsoluteStart,
			AbsoluteEnd:   e.AbsoluteEnd,
		}
	}
	if err := p.st.SaveTimeline(segRows); err != nil {
		return err
	}

	if events == nil {
		return nil
	}

	evRows := make([]store.EventRow, len(events.Items))
	for i, ev := range events.Items {
		tokens := ""
		if len(ev.Tokens) > 0 {
			data, err := json.Marshal(ev.Tokens)
			if err != nil {
				return fmt.Errorf("marshal tokens: %w", err)
			}
			tokens = string(data)
		}
		evRows[i] = store.EventRow{
			SessionID:     events.SessionID,
			SegmentID:     ev.SegmentID,
			Model:         events.Model,
			AbsoluteStart: ev.AbsoluteStart,
			AbsoluteEnd:   ev.AbsoluteEnd,
			Transcript:    ev.Transcript,
			Confidence:    ev.Confidence,
			TokensJSON:    tokens,
		}
	}
	return p.st.SaveEvents(evRows)
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
