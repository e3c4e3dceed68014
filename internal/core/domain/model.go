package domain

// DefaultThreshold is the minimum similarity score, out of 100, required to
// consider two addresses a match when the caller does not supply one.
const DefaultThreshold = 80.0

// AddressPair holds two free-text addresses to compare. Threshold is the
// minimum similarity score for the pair to count as a match; a nil Threshold
// means the matcher's configured default applies.
type AddressPair struct {
	Address1  string
	Address2  string
	Threshold *float64
}

// Threshold returns a pointer to the given threshold value, for use in an
// AddressPair literal.
func Threshold(v float64) *float64 {
	return &v
}

// MatchResult holds the outcome of comparing a single address pair.
type MatchResult struct {
	// Similarity is the token-sort ratio between the normalized addresses,
	// in the range [0, 100].
	Similarity float64
	// IsMatch reports whether Similarity met the pair's threshold.
	IsMatch bool
	// NormalizedAddress1 is the first address after normalization, surfaced
	// so callers can audit why two differently formatted addresses did or
	// did not match.
	NormalizedAddress1 string
	// NormalizedAddress2 is the second address after normalization.
	NormalizedAddress2 string
}

// BatchResult holds the outcome of comparing a sequence of address pairs.
// Results[i] corresponds to the i-th input pair regardless of the order in
// which pairs were processed.
type BatchResult struct {
	Results           []MatchResult
	TotalPairs        int
	AverageSimilarity float64
}
