package tokensort

import (
	"context"
	"errors"

	"github.com/wakemeup0/match/internal/core/domain"
	"github.com/wakemeup0/match/internal/ports"
)

// MatcherConfig holds configuration for the token-sort address matcher.
type MatcherConfig struct {
	// DefaultThreshold applies to pairs that do not carry their own
	// threshold. Must lie in [0, 100].
	DefaultThreshold float64
}

// DefaultConfig returns a default configuration.
func DefaultConfig() MatcherConfig {
	return MatcherConfig{
		DefaultThreshold: domain.DefaultThreshold,
	}
}

// Validate checks if the configuration is valid.
func (c MatcherConfig) Validate() error {
	if c.DefaultThreshold < 0 || c.DefaultThreshold > 100 {
		return errors.New("default threshold must be between 0 and 100")
	}
	return nil
}

// Matcher implements the token-sort address comparison. It is stateless and
// safe for concurrent use.
type Matcher struct {
	config     MatcherConfig
	logger     ports.Logger
	normalizer ports.Normalizer
}

// NewMatcher creates a new token-sort address matcher.
func NewMatcher(config MatcherConfig, logger ports.Logger, normalizer ports.Normalizer) (*Matcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Matcher{
		config:     config,
		logger:     logger,
		normalizer: normalizer,
	}, nil
}

// Match normalizes both addresses of the pair, computes their token-sort
// similarity and compares it to the pair's threshold. It is total: any two
// strings produce a valid result.
func (m *Matcher) Match(ctx context.Context, pair domain.AddressPair) domain.MatchResult {
	m.logger.Debug("Starting address match",
		"address1", pair.Address1,
		"address2", pair.Address2,
	)

	threshold := m.config.DefaultThreshold
	if pair.Threshold != nil {
		threshold = *pair.Threshold
	}

	normalized1 := m.normalizer.Normalize(pair.Address1)
	normalized2 := m.normalizer.Normalize(pair.Address2)

	similarity := Ratio(normalized1, normalized2)
	isMatch := similarity >= threshold

	m.logger.Debug("Computed address similarity",
		"similarity", similarity,
		"is_match", isMatch,
		"threshold", threshold,
		"normalized_address1", normalized1,
		"normalized_address2", normalized2,
	)

	return domain.MatchResult{
		Similarity:         similarity,
		IsMatch:            isMatch,
		NormalizedAddress1: normalized1,
		NormalizedAddress2: normalized2,
	}
}
