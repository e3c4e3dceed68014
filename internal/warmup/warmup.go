package warmup

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/wakemeup0/match/internal/core/domain"
	"github.com/wakemeup0/match/internal/ports"
)

// Config defines configuration for warming up the matcher before it serves
// traffic.
type Config struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultConfig returns the default warmup configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency: runtime.NumCPU(),
		Iterations:  500,
		Duration:    2 * time.Second,
		ForceGC:     true,
	}
}

// Manager pre-exercises normalizers and matchers so that the first real
// requests do not pay for cold pools and branch-predictor misses.
type Manager struct {
	logger      ports.Logger
	matchers    []ports.Matcher
	normalizers []ports.Normalizer
	config      Config
}

// NewManager creates a new warmup manager.
func NewManager(logger ports.Logger, config Config) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterMatcher adds a matcher to be warmed up.
func (wm *Manager) RegisterMatcher(matcher ports.Matcher) {
	wm.matchers = append(wm.matchers, matcher)
}

// RegisterNormalizer adds a normalizer to be warmed up.
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// WarmUp runs the warmup process for all registered components.
func (wm *Manager) WarmUp(ctx context.Context) {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.matchers)+len(wm.normalizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	var warmupCtx context.Context
	var cancel context.CancelFunc
	if wm.config.Duration > 0 {
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	} else {
		warmupCtx = ctx
	}

	wm.warmUpNormalizers(warmupCtx)
	wm.warmUpMatchers(warmupCtx)

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

// warmUpNormalizers runs warmup for all registered normalizers.
func (wm *Manager) warmUpNormalizers(ctx context.Context) {
	if len(wm.normalizers) == 0 {
		return
	}

	wm.logger.Debug("Warming up normalizers", "count", len(wm.normalizers))

	samples := sampleAddresses()

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				for _, normalizer := range wm.normalizers {
					_ = normalizer.Normalize(samples[j%len(samples)])
				}
			}
		}()
	}

	wg.Wait()
}

// warmUpMatchers runs warmup for all registered matchers.
func (wm *Manager) warmUpMatchers(ctx context.Context) {
	if len(wm.matchers) == 0 {
		return
	}

	wm.logger.Debug("Warming up matchers", "count", len(wm.matchers))

	pairs := samplePairs()

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				for _, matcher := range wm.matchers {
					_ = matcher.Match(ctx, pairs[j%len(pairs)])
				}
			}
		}()
	}

	wg.Wait()
}

// sampleAddresses returns address texts shaped like real traffic.
func sampleAddresses() []string {
	return []string{
		"123 Main St, Suite 100, New York, NY 10001",
		"  123   MAIN   STREET, Ste 100,  New York,  NY 10001  ",
		"456 Oak Ave, Chicago, IL 60601",
		"789 Pine Rd, Denver, CO 80201",
		"1600 Pennsylvania Avenue NW, Washington, DC 20500",
	}
}

// samplePairs returns pairs covering identical, similar and dissimilar
// addresses so every branch of the comparison gets exercised.
func samplePairs() []domain.AddressPair {
	return []domain.AddressPair{
		{
			Address1: "123 Main St, Suite 100, New York, NY 10001",
			Address2: "123 Main St, Suite 100, New York, NY 10001",
		},
		{
			Address1: "123 Main St, Suite 100, New York, NY 10001",
			Address2: "Suite 100, 123 Main Street, New York, NY 10001",
		},
		{
			Address1: "456 Oak Ave, Chicago, IL 60601",
			Address2: "789 Pine Rd, Denver, CO 80201",
		},
	}
}
