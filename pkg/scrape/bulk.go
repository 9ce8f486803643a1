package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pypilens/pypilens/pkg/errors"
	"github.com/pypilens/pypilens/pkg/observability"
	"github.com/pypilens/pypilens/pkg/record"
)

// DefaultConcurrency is the bulk worker limit when none is configured.
const DefaultConcurrency = 5

// Progress reports one completed item during a bulk run. Completed counts
// items finished so far; err is nil when the item produced a full record.
type Progress func(completed, total int, name string, err error)

// Orchestrator runs the aggregation pipeline over many packages with
// bounded concurrency. Failures never cross package boundaries: a run over
// N names always yields N records, with per-package failures recorded on
// the affected record only.
type Orchestrator struct {
	agg    *Aggregator
	logger *log.Logger
}

// NewOrchestrator creates an orchestrator over the given aggregator.
func NewOrchestrator(agg *Aggregator) *Orchestrator {
	return &Orchestrator{agg: agg, logger: agg.logger}
}

// Run aggregates every name and returns one record per name, in input
// order. Worker faults, including panics, are converted into error records.
// Once ctx is cancelled, unstarted items complete immediately as cancelled
// error records.
func (o *Orchestrator) Run(ctx context.Context, names []string, concurrency int, onProgress Progress) []*record.PackageRecord {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	runID := uuid.NewString()
	start := time.Now()
	total := len(names)
	results := make([]*record.PackageRecord, total)

	var mu sync.Mutex
	completed := 0
	failed := 0

	report := func(name string, idx int, rec *record.PackageRecord, err error) {
		mu.Lock()
		completed++
		done := completed
		if err != nil {
			failed++
		}
		results[idx] = rec
		mu.Unlock()

		observability.Run().OnItemComplete(ctx, runID, name, done, total, err)
		if onProgress != nil {
			onProgress(done, total, name, err)
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	o.logger.Info("starting bulk run", "run_id", runID, "packages", total, "concurrency", concurrency)
	for i, name := range names {
		g.Go(func() error {
			if ctx.Err() != nil {
				rec := record.New(name)
				rec.Error = "run cancelled before processing"
				report(name, i, rec, ctx.Err())
				return nil
			}
			observability.Run().OnItemStart(ctx, runID, name)
			rec, err := o.runOne(ctx, name)
			report(name, i, rec, err)
			return nil
		})
	}
	g.Wait()

	observability.Run().OnRunComplete(ctx, runID, total, failed, time.Since(start))
	o.logger.Info("bulk run complete", "run_id", runID, "packages", total, "failed", failed, "duration", time.Since(start))
	return results
}

// runOne aggregates a single package, converting panics into error records
// so one bad item cannot take down the run.
func (o *Orchestrator) runOne(ctx context.Context, name string) (rec *record.PackageRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeOrchestratorItem, "worker fault for %s: %v", name, r)
			rec = record.New(name)
			rec.Error = errors.UserMessage(err)
			o.logger.Error("recovered worker fault", "package", name, "fault", r)
		}
	}()

	rec, err = o.agg.Aggregate(ctx, name)
	return rec, err
}
