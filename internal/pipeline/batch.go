package pipeline

import (
	"context"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/datadigshawn/aiSpeech-2026/internal/report"
)

// ProcessDir runs every WAV in dir through the pipeline. Sessions share no
// mutable state, so files run in parallel up to the configured worker
// limit. One file's failure is logged and does not stop the others.
func (p *Pipeline) ProcessDir(ctx context.Context, dir string) ([]*report.Summary, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.wav"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	workers := p.cfg.FileWorkers
	if workers < 1 {
		workers = 1
	}

	summaries := make([]*report.Summary, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path // per-iteration copies for the goroutine (pre-1.22 toolchain)
		g.Go(func() error {
			sum, err := p.Process(ctx, path)
			if err != nil {
				log.WithField("file", path).WithError(err).Error("session failed")
				return nil
			}
			summaries[i] = sum
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*report.Summary, 0, len(summaries))
	for _, sum := range summaries {
		if sum != nil {
			out = append(out, sum)
		}
	}
	return out, ctx.Err()
}
