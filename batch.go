package imgqa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corona10/goimagehash"
	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome for one URL of AnalyzeBatch.
type BatchItem struct {
	URL         string     `json:"url"`
	Result      *Result    `json:"result,omitempty"`
	Assessment  Assessment `json:"assessment"`
	DuplicateOf int        `json:"duplicate_of"` // index of the earlier identical image, -1 if unique
	Err         string     `json:"error,omitempty"`
}

// AnalyzeBatch analyses urls with up to cfg.Concurrency workers. Items come
// back in input order. Failures stay on their item and never abort the
// batch; a panicking analysis is recovered and reported through OnPanic.
// Perceptual duplicates of an earlier image in the batch are rejected.
func (cfg *Config) AnalyzeBatch(ctx context.Context, urls []string, opts AnalyzeOpts) []BatchItem {
	cfg = cfg.withDefaults()

	items := make([]BatchItem, len(urls))
	hashes := make([]*goimagehash.ImageHash, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, u := range urls {
		g.Go(func() error {
			items[i], hashes[i] = cfg.analyzeOne(ctx, u, opts)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	for i, j := range markDuplicates(hashes) {
		items[i].DuplicateOf = j
		if j < 0 {
			continue
		}
		slog.Debug("imgqa: dedup rejected", "url", items[i].URL, "duplicate_of", urls[j])
		items[i].Assessment.Signals = append(items[i].Assessment.Signals, Signal{
			Source:  "duplicate",
			Detail:  "perceptual duplicate of " + urls[j],
			Verdict: VerdictReject,
		})
		items[i].Assessment.Verdict = VerdictReject
	}

	return items
}

// analyzeOne runs a single analysis for AnalyzeBatch.
// Recovers from panics to protect the worker pool.
func (cfg *Config) analyzeOne(ctx context.Context, u string, opts AnalyzeOpts) (item BatchItem, hash *goimagehash.ImageHash) {
	item = BatchItem{URL: u, DuplicateOf: -1}

	defer func() {
		if r := recover(); r != nil {
			if cfg.OnPanic != nil {
				cfg.OnPanic("imageAnalysis", r)
			}
			item.Err = fmt.Sprintf("panic: %v", r)
			item.Assessment = Assess(nil)
			hash = nil
		}
	}()

	res, dec, err := cfg.analyze(ctx, u, opts)
	if err != nil {
		item.Err = err.Error()
	}
	item.Result = res
	item.Assessment = Assess(res)
	if dec != nil {
		hash = imageHash(dec.Gray)
	}
	return item, hash
}
