package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/wakemeup0/match/internal/core/domain"
	"github.com/wakemeup0/match/internal/ports"
)

// Default configuration values.
const (
	// DefaultMaxBatchSize caps the number of pairs per batch to bound the
	// worst-case CPU and memory cost of a single request.
	DefaultMaxBatchSize = 1000

	// DefaultWorkers is the default number of worker goroutines.
	// 0 means use runtime.NumCPU().
	DefaultWorkers = 0
)

var (
	// ErrEmptyBatch is returned when MatchBatch is invoked with no pairs.
	ErrEmptyBatch = errors.New("batch contains no address pairs")

	// ErrBatchTooLarge is returned when a batch exceeds the configured
	// maximum size.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)

// Config holds configuration for the batch orchestrator.
type Config struct {
	Workers      int
	MaxBatchSize int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:      DefaultWorkers,
		MaxBatchSize: DefaultMaxBatchSize,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	if c.MaxBatchSize <= 0 {
		return errors.New("maxBatchSize must be greater than 0")
	}
	return nil
}

// Orchestrator fans a matcher out over a batch of address pairs. Pairs are
// mutually independent, so they are compared on a bounded pool of workers.
type Orchestrator struct {
	config  Config
	logger  ports.Logger
	matcher ports.Matcher
}

// NewOrchestrator creates a new batch orchestrator around the given matcher.
func NewOrchestrator(config Config, logger ports.Logger, matcher ports.Matcher) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Orchestrator{
		config:  config,
		logger:  logger,
		matcher: matcher,
	}, nil
}

// MatchBatch applies the matcher to every pair in parallel and aggregates the
// results. Results[i] corresponds to pairs[i] regardless of completion order.
// The batch size bounds are also enforced by the HTTP boundary; the checks
// here keep the orchestrator safe when invoked directly.
func (o *Orchestrator) MatchBatch(ctx context.Context, pairs []domain.AddressPair) (domain.BatchResult, error) {
	if len(pairs) == 0 {
		return domain.BatchResult{}, ErrEmptyBatch
	}
	if len(pairs) > o.config.MaxBatchSize {
		return domain.BatchResult{}, fmt.Errorf("%w: %d pairs, maximum is %d",
			ErrBatchTooLarge, len(pairs), o.config.MaxBatchSize)
	}

	workers := o.config.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	o.logger.Debug("Starting batch match",
		"pairs", len(pairs),
		"workers", workers,
	)

	// Every worker writes only to its own index, so the slice needs no
	// locking and the output order always matches the input order.
	results := make([]domain.MatchResult, len(pairs))

	p := pool.New().WithMaxGoroutines(workers)
	for i, pair := range pairs {
		p.Go(func() {
			results[i] = o.matcher.Match(ctx, pair)
		})
	}
	p.Wait()

	var total float64
	for _, r := range results {
		total += r.Similarity
	}
	average := total / float64(len(results))

	o.logger.Debug("Batch match completed",
		"pairs", len(results),
		"average_similarity", average,
	)

	return domain.BatchResult{
		Results:           results,
		TotalPairs:        len(results),
		AverageSimilarity: average,
	}, nil
}
