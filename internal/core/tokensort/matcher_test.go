package tokensort

import (
	"context"
	"testing"

	"github.com/wakemeup0/match/internal/adapters/normalizer"
	"github.com/wakemeup0/match/internal/core/domain"
)

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Close() error                                   { return nil }

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultConfig(), nopLogger{}, normalizer.NewDefaultNormalizer())
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	return m
}

func TestMatchWithDefaults(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name     string
		address1 string
		address2 string
		minScore float64
		maxScore float64
		isMatch  bool
	}{
		{
			name:     "Identical addresses",
			address1: "123 Main St, Suite 100, New York, NY 10001",
			address2: "123 Main St, Suite 100, New York, NY 10001",
			minScore: 100,
			maxScore: 100,
			isMatch:  true,
		},
		{
			name:     "Reordered words score as if order matched",
			address1: "Suite 100, 123 Main St, New York, NY 10001",
			address2: "123 Main St, Suite 100, New York, NY 10001",
			minScore: 100,
			maxScore: 100,
			isMatch:  true,
		},
		{
			name:     "Abbreviation differences reduce but keep the match",
			address1: "123 Main St, Suite 100, New York, NY 10001",
			address2: "123 Main Street, Ste 100, New York, NY 10001",
			minScore: 88,
			maxScore: 97,
			isMatch:  true,
		},
		{
			name:     "Different addresses do not match",
			address1: "456 Oak Ave, Chicago, IL 60601",
			address2: "789 Pine Rd, Denver, CO 80201",
			minScore: 0,
			maxScore: 70,
			isMatch:  false,
		},
		{
			name:     "Both empty",
			address1: "",
			address2: "",
			minScore: 100,
			maxScore: 100,
			isMatch:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := m.Match(context.Background(), domain.AddressPair{
				Address1: tc.address1,
				Address2: tc.address2,
			})

			if result.Similarity < tc.minScore || result.Similarity > tc.maxScore {
				t.Errorf("similarity = %v, expected within [%v, %v]",
					result.Similarity, tc.minScore, tc.maxScore)
			}
			if result.IsMatch != tc.isMatch {
				t.Errorf("is_match = %v, expected %v (similarity %v)",
					result.IsMatch, tc.isMatch, result.Similarity)
			}
		})
	}
}

func TestMatchNormalizedOutputs(t *testing.T) {
	m := newTestMatcher(t)

	result := m.Match(context.Background(), domain.AddressPair{
		Address1: "  123   Main   ST  ",
		Address2: "123\tmain st",
	})

	if result.NormalizedAddress1 != "123 main st" {
		t.Errorf("normalized_address1 = %q, expected %q", result.NormalizedAddress1, "123 main st")
	}
	if result.NormalizedAddress2 != "123 main st" {
		t.Errorf("normalized_address2 = %q, expected %q", result.NormalizedAddress2, "123 main st")
	}
	if result.Similarity != 100 {
		t.Errorf("similarity = %v, expected 100 for identical normalized forms", result.Similarity)
	}
}

func TestMatchPairThresholdOverride(t *testing.T) {
	m := newTestMatcher(t)

	pair := domain.AddressPair{
		Address1: "456 Oak Ave, Chicago, IL 60601",
		Address2: "789 Pine Rd, Denver, CO 80201",
	}

	// Default threshold (80) rejects the pair.
	if got := m.Match(context.Background(), pair); got.IsMatch {
		t.Fatalf("expected no match at default threshold, similarity %v", got.Similarity)
	}

	// A zero threshold matches everything.
	pair.Threshold = domain.Threshold(0)
	if got := m.Match(context.Background(), pair); !got.IsMatch {
		t.Errorf("expected match at threshold 0, similarity %v", got.Similarity)
	}
}

func TestMatchThresholdMonotonicity(t *testing.T) {
	m := newTestMatcher(t)

	pair := domain.AddressPair{
		Address1: "123 Main St, Suite 100, New York, NY 10001",
		Address2: "123 Main Street, Ste 100, New York, NY 10001",
	}

	// Once a threshold rejects the pair, every higher threshold must too.
	thresholds := []float64{0, 25, 50, 80, 90, 95, 100}
	matched := true
	for _, th := range thresholds {
		pair.Threshold = domain.Threshold(th)
		result := m.Match(context.Background(), pair)
		if result.IsMatch && !matched {
			t.Fatalf("pair matched at threshold %v after failing a lower one", th)
		}
		matched = result.IsMatch
	}
}

func TestMatcherConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		valid     bool
	}{
		{"Lower bound", 0, true},
		{"Upper bound", 100, true},
		{"Default", 80, true},
		{"Negative", -1, false},
		{"Above 100", 100.5, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := MatcherConfig{DefaultThreshold: tc.threshold}.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Errorf("expected validation error for threshold %v", tc.threshold)
			}
		})
	}
}
