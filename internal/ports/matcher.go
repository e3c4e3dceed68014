package ports

import (
	"context"

	"github.com/wakemeup0/match/internal/core/domain"
)

// Matcher defines the interface for comparing a pair of addresses.
type Matcher interface {
	Match(ctx context.Context, pair domain.AddressPair) domain.MatchResult
}

// BatchMatcher defines the interface for comparing many address pairs at once.
type BatchMatcher interface {
	MatchBatch(ctx context.Context, pairs []domain.AddressPair) (domain.BatchResult, error)
}
