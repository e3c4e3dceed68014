package normalizer

import (
	"strings"

	"github.com/wakemeup0/match/internal/ports"
)

// DefaultNormalizer implements the default address normalization strategy.
type DefaultNormalizer struct{}

// NewDefaultNormalizer creates a new default normalizer.
func NewDefaultNormalizer() ports.Normalizer {
	return &DefaultNormalizer{}
}

// Normalize converts the address to lower case and collapses every whitespace
// run into a single space, trimming leading and trailing whitespace.
func (n *DefaultNormalizer) Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
