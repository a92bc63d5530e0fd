package currency

import (
	"context"

	"github.com/richxcame/currency-exchange/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RowConverter converts a single request
type RowConverter interface {
	Run(ctx context.Context, req ConversionRequest) (*ConversionResponse, error)
}

// BatchFailure records a dropped row
type BatchFailure struct {
	Index   int
	Request ConversionRequest
	Err     error
}

// BatchResult holds the converted rows in input order and the dropped rows
type BatchResult struct {
	Results  []*ConversionResponse
	Failures []BatchFailure
}

// BatchProcessor converts many requests, isolating failures per row
type BatchProcessor struct {
	converter RowConverter
	workers   int
}

// NewBatchProcessor creates a batch processor running up to workers rows at once
func NewBatchProcessor(converter RowConverter, workers int) *BatchProcessor {
	if workers < 1 {
		workers = 1
	}
	return &BatchProcessor{converter: converter, workers: workers}
}

// Process converts every request. A failing row is logged and left out of
// Results; it never aborts the batch.
func (b *BatchProcessor) Process(ctx context.Context, reqs []ConversionRequest) *BatchResult {
	batchSize.Observe(float64(len(reqs)))

	responses := make([]*ConversionResponse, len(reqs))
	errs := make([]error, len(reqs))

	if b.workers == 1 {
		for i := range reqs {
			responses[i], errs[i] = b.converter.Run(ctx, reqs[i])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(b.workers)
		for i := range reqs {
			i := i
			g.Go(func() error {
				responses[i], errs[i] = b.converter.Run(ctx, reqs[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	result := &BatchResult{Results: make([]*ConversionResponse, 0, len(reqs))}
	log := logger.WithContext(ctx)

	for i, err := range errs {
		if err != nil {
			conversionsTotal.WithLabelValues("batch", "failed").Inc()
			log.Warn("Skipping batch row",
				zap.Int("row", i+1),
				zap.String("source", string(reqs[i].SourceCurrency)),
				zap.String("target", string(reqs[i].TargetCurrency)),
				zap.String("amount", reqs[i].Amount.String()),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, BatchFailure{Index: i, Request: reqs[i], Err: err})
			continue
		}
		conversionsTotal.WithLabelValues("batch", "success").Inc()
		result.Results = append(result.Results, responses[i])
	}

	log.Info("Batch conversion finished",
		zap.Int("rows", len(reqs)),
		zap.Int("converted", len(result.Results)),
		zap.Int("failed", len(result.Failures)),
	)

	return result
}
