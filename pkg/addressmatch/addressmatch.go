// Package addressmatch compares pairs of free-text postal addresses.
//
// Addresses are normalized (lowercased, whitespace collapsed) and scored with
// a token-sort ratio: the whitespace-delimited tokens of each address are
// sorted before the strings are compared, so the score does not depend on
// word order. Scores range from 0 to 100; a pair whose score meets its
// threshold is reported as a match. Batches of pairs are compared on a
// bounded worker pool with input order preserved in the output.
package addressmatch

import (
	"context"

	"github.com/baditaflorin/l"

	"github.com/wakemeup0/match/internal/adapters/logger"
	"github.com/wakemeup0/match/internal/adapters/normalizer"
	"github.com/wakemeup0/match/internal/core/batch"
	"github.com/wakemeup0/match/internal/core/domain"
	"github.com/wakemeup0/match/internal/core/tokensort"
	"github.com/wakemeup0/match/internal/ports"
	"github.com/wakemeup0/match/internal/warmup"
)

// Re-exported domain types so callers do not import internal packages.
type (
	// AddressPair holds two addresses to compare and an optional threshold.
	AddressPair = domain.AddressPair
	// MatchResult holds the outcome of comparing a single pair.
	MatchResult = domain.MatchResult
	// BatchResult holds the outcomes of comparing a batch of pairs.
	BatchResult = domain.BatchResult
)

// Threshold returns a pointer to the given threshold value, for use in an
// AddressPair literal.
func Threshold(v float64) *float64 {
	return domain.Threshold(v)
}

// Batch validation errors, surfaced for errors.Is checks at the boundary.
var (
	ErrEmptyBatch    = batch.ErrEmptyBatch
	ErrBatchTooLarge = batch.ErrBatchTooLarge
)

// AddressMatcher compares address pairs one at a time or in parallel batches.
type AddressMatcher struct {
	matcher      ports.Matcher
	orchestrator ports.BatchMatcher
	logger       ports.Logger
	normalizer   ports.Normalizer
	threshold    float64
	warmed       bool
}

// Option defines a functional option for configuring an AddressMatcher.
type Option func(*matcherConfig)

type matcherConfig struct {
	Threshold    float64
	Workers      int
	MaxBatchSize int
	Logger       ports.Logger
	Normalizer   ports.Normalizer
	WarmUp       bool
	WarmUpConfig warmup.Config
}

// WithThreshold sets the default minimum similarity score, out of 100, for a
// pair to count as a match. Pairs carrying their own threshold override it.
func WithThreshold(th float64) Option {
	return func(cfg *matcherConfig) {
		cfg.Threshold = th
	}
}

// WithWorkers sets the number of workers used for batch matching.
// 0 means one worker per CPU.
func WithWorkers(n int) Option {
	return func(cfg *matcherConfig) {
		cfg.Workers = n
	}
}

// WithMaxBatchSize sets the maximum number of pairs accepted per batch.
func WithMaxBatchSize(n int) Option {
	return func(cfg *matcherConfig) {
		cfg.MaxBatchSize = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *matcherConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithNormalizer sets a custom normalizer.
func WithNormalizer(norm ports.Normalizer) Option {
	return func(cfg *matcherConfig) {
		cfg.Normalizer = norm
	}
}

// WithFastNormalizer selects the allocation-conscious normalizer.
func WithFastNormalizer() Option {
	return func(cfg *matcherConfig) {
		normFactory := normalizer.NewNormalizerFactory()
		cfg.Normalizer = normFactory.CreateNormalizer(normalizer.FastNormalizerType)
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *matcherConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.Config) Option {
	return func(cfg *matcherConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new AddressMatcher instance.
func New(opts ...Option) (*AddressMatcher, error) {
	batchDefaults := batch.DefaultConfig()

	config := &matcherConfig{
		Threshold:    domain.DefaultThreshold,
		Workers:      batchDefaults.Workers,
		MaxBatchSize: batchDefaults.MaxBatchSize,
		WarmUp:       false,
		WarmUpConfig: warmup.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewDefaultNormalizer()
	}

	matcher, err := tokensort.NewMatcher(tokensort.MatcherConfig{
		DefaultThreshold: config.Threshold,
	}, config.Logger, config.Normalizer)
	if err != nil {
		return nil, err
	}

	orchestrator, err := batch.NewOrchestrator(batch.Config{
		Workers:      config.Workers,
		MaxBatchSize: config.MaxBatchSize,
	}, config.Logger, matcher)
	if err != nil {
		return nil, err
	}

	am := &AddressMatcher{
		matcher:      matcher,
		orchestrator: orchestrator,
		logger:       config.Logger,
		normalizer:   config.Normalizer,
		threshold:    config.Threshold,
		warmed:       false,
	}

	if config.WarmUp {
		am.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return am, nil
}

// Match compares two addresses using the configured default threshold.
func (am *AddressMatcher) Match(ctx context.Context, address1, address2 string) MatchResult {
	return am.matcher.Match(ctx, domain.AddressPair{
		Address1: address1,
		Address2: address2,
	})
}

// MatchPair compares an address pair, honoring the threshold it carries.
func (am *AddressMatcher) MatchPair(ctx context.Context, pair AddressPair) MatchResult {
	return am.matcher.Match(ctx, pair)
}

// MatchBatch compares every pair in parallel and returns the results in input
// order along with the mean similarity. It fails on an empty batch or one
// exceeding the configured maximum size.
func (am *AddressMatcher) MatchBatch(ctx context.Context, pairs []AddressPair) (BatchResult, error) {
	return am.orchestrator.MatchBatch(ctx, pairs)
}

// DefaultThreshold returns the threshold applied to pairs that do not carry
// their own.
func (am *AddressMatcher) DefaultThreshold() float64 {
	return am.threshold
}

// WarmUp pre-exercises the matcher and its normalizer.
func (am *AddressMatcher) WarmUp(ctx context.Context, config warmup.Config) {
	if am.warmed {
		am.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(am.logger, config)
	warmupMgr.RegisterMatcher(am.matcher)
	warmupMgr.RegisterNormalizer(am.normalizer)

	warmupMgr.WarmUp(ctx)
	am.warmed = true
}
