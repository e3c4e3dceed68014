package batch

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/wakemeup0/match/internal/core/domain"
)

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Close() error                                   { return nil }

// indexMatcher reports the pair's Address1, parsed as a number, as its
// similarity. This makes result/input correspondence checkable after a
// parallel run.
type indexMatcher struct{}

func (indexMatcher) Match(ctx context.Context, pair domain.AddressPair) domain.MatchResult {
	score, _ := strconv.ParseFloat(pair.Address1, 64)
	return domain.MatchResult{
		Similarity:         score,
		NormalizedAddress1: pair.Address1,
		NormalizedAddress2: pair.Address2,
	}
}

func TestMatchBatchPreservesOrder(t *testing.T) {
	o, err := NewOrchestrator(Config{Workers: 8, MaxBatchSize: 1000}, nopLogger{}, indexMatcher{})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}

	const n = 250
	pairs := make([]domain.AddressPair, n)
	for i := range pairs {
		pairs[i] = domain.AddressPair{Address1: strconv.Itoa(i % 101)}
	}

	result, err := o.MatchBatch(context.Background(), pairs)
	if err != nil {
		t.Fatalf("MatchBatch failed: %v", err)
	}

	if result.TotalPairs != n {
		t.Fatalf("total_pairs = %d, expected %d", result.TotalPairs, n)
	}
	for i, r := range result.Results {
		if expected := float64(i % 101); r.Similarity != expected {
			t.Fatalf("results[%d].Similarity = %v, expected %v: output order differs from input order",
				i, r.Similarity, expected)
		}
	}
}

func TestMatchBatchAverage(t *testing.T) {
	o, err := NewOrchestrator(DefaultConfig(), nopLogger{}, indexMatcher{})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}

	pairs := []domain.AddressPair{
		{Address1: "100"},
		{Address1: "50"},
		{Address1: "0"},
		{Address1: "75"},
	}

	result, err := o.MatchBatch(context.Background(), pairs)
	if err != nil {
		t.Fatalf("MatchBatch failed: %v", err)
	}

	expected := (100.0 + 50.0 + 0.0 + 75.0) / 4.0
	if math.Abs(result.AverageSimilarity-expected) > 1e-9 {
		t.Errorf("average_similarity = %v, expected %v", result.AverageSimilarity, expected)
	}
}

func TestMatchBatchEmpty(t *testing.T) {
	o, err := NewOrchestrator(DefaultConfig(), nopLogger{}, indexMatcher{})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}

	_, err = o.MatchBatch(context.Background(), nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestMatchBatchTooLarge(t *testing.T) {
	o, err := NewOrchestrator(Config{Workers: 2, MaxBatchSize: 10}, nopLogger{}, indexMatcher{})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}

	pairs := make([]domain.AddressPair, 11)
	_, err = o.MatchBatch(context.Background(), pairs)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Errorf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		valid  bool
	}{
		{"Defaults", DefaultConfig(), true},
		{"Explicit workers", Config{Workers: 4, MaxBatchSize: 100}, true},
		{"Negative workers", Config{Workers: -1, MaxBatchSize: 100}, false},
		{"Zero max batch size", Config{Workers: 0, MaxBatchSize: 0}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
