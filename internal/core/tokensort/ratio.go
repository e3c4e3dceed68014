package tokensort

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// sortTokens splits s on whitespace runs, sorts the tokens lexicographically
// and rejoins them with single spaces.
func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Ratio computes the token-sort similarity between two normalized strings,
// scaled to [0, 100]. Both strings are token-sorted before comparison, so the
// score is invariant to word order. The underlying metric is the indel
// distance (insertions and deletions only), obtained from Wagner-Fischer with
// a substitution cost of 2:
//
//	ratio = 100 * (1 - indel(a, b) / (len(a) + len(b)))
//
// Two strings that are both empty after token sorting score 100.
func Ratio(a, b string) float64 {
	a = sortTokens(a)
	b = sortTokens(b)

	total := len(a) + len(b)
	if total == 0 {
		return 100
	}

	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return 100 * (1 - float64(dist)/float64(total))
}
