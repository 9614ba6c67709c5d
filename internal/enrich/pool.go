// Package enrich drives website inspection and the external analysis
// adapters over batches of discovered businesses.
package enrich

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Handler enriches a single business. It is invoked once per attempt;
// a failed attempt must not leak partial state into the next one.
type Handler func(ctx context.Context, b model.Business) (model.Enrichment, error)

// Outcome is the terminal result for one input index: either a
// completed enrichment, or the original business annotated with the
// last attempt's error.
type Outcome struct {
	Business   model.Business
	Enrichment model.Enrichment
	Err        string
}

// Failed reports whether the item exhausted all attempts.
func (o Outcome) Failed() bool {
	return o.Err != ""
}

// Process runs handler over items with a fixed pool of
// min(concurrency, len(items)) workers. Each worker claims the next
// unclaimed index via an atomic cursor and retries its item up to
// maxRetries additional times, immediately and without backoff. The
// returned slice is positionally aligned with items: out[i] is the
// terminal outcome for items[i]. A single item failing every attempt
// never fails its siblings; the failure is recorded in place.
func Process(ctx context.Context, items []model.Business, concurrency, maxRetries int, handler Handler) []Outcome {
	out := make([]Outcome, len(items))
	if len(items) == 0 {
		return out
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	var cursor atomic.Int64
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for w := 0; w < concurrency; w++ {
		go func() {
			defer wg.Done()
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= len(items) {
					return
				}
				out[idx] = processItem(ctx, items[idx], maxRetries, handler)
			}
		}()
	}

	wg.Wait()
	return out
}

// processItem runs all attempts for a single item. Workers write to
// disjoint indices, so no locking is needed around the result slice.
func processItem(ctx context.Context, b model.Business, maxRetries int, handler Handler) Outcome {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		enr, err := handler(ctx, b)
		if err == nil {
			return Outcome{Business: b, Enrichment: enr}
		}
		lastErr = err
		zap.L().Warn("enrich: attempt failed",
			zap.String("business", b.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	msg := "failed after retries"
	if lastErr != nil {
		msg = lastErr.Error()
	}
	return Outcome{
		Business:   b,
		Enrichment: model.Enrichment{WebsiteStatus: model.WebsiteStatusUnknown},
		Err:        msg,
	}
}
