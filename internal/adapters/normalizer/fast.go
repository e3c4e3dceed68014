package normalizer

import (
	"unicode"
	"unicode/utf8"

	"github.com/wakemeup0/match/internal/pool"
	"github.com/wakemeup0/match/internal/ports"
)

// Character classes for the ASCII decision table.
const (
	classKeep byte = iota
	classSpace
	classUpper
)

// FastNormalizer is an allocation-conscious normalizer tuned for the
// mostly-ASCII text typical of postal addresses. It lowercases and collapses
// whitespace in a single pass over the input, using a precomputed decision
// table for ASCII characters and pooled output buffers.
type FastNormalizer struct {
	// Pre-computed decision table for ASCII characters (0-127)
	asciiTable [128]byte

	// Reusable output buffers
	bytePool *pool.BufferPool
}

// NewFastNormalizer creates a new fast normalizer with a precomputed table.
func NewFastNormalizer() ports.Normalizer {
	n := &FastNormalizer{
		bytePool: pool.NewBufferPool(256),
	}

	for i := 0; i < 128; i++ {
		r := rune(i)
		switch {
		case unicode.IsSpace(r):
			n.asciiTable[i] = classSpace
		case unicode.IsUpper(r):
			n.asciiTable[i] = classUpper
		default:
			n.asciiTable[i] = classKeep
		}
	}

	return n
}

// Normalize converts the address to lower case and collapses whitespace runs
// into single spaces, trimming at both ends. Output is identical to the
// default normalizer for every input.
func (n *FastNormalizer) Normalize(text string) string {
	// Fast path for empty strings
	if len(text) == 0 {
		return ""
	}

	asciiOnly := true
	for i := 0; i < len(text); i++ {
		if text[i] >= 128 {
			asciiOnly = false
			break
		}
	}

	buffer := n.bytePool.Get()
	defer n.bytePool.Put(buffer)

	if cap(*buffer) < len(text) {
		*buffer = make([]byte, 0, len(text))
	}
	*buffer = (*buffer)[:0]

	// A space is only written once the next word character arrives, which
	// trims trailing whitespace for free; leading whitespace is trimmed by
	// holding the space while the buffer is still empty.
	pendingSpace := false

	if asciiOnly {
		for i := 0; i < len(text); i++ {
			b := text[i]
			switch n.asciiTable[b] {
			case classSpace:
				pendingSpace = len(*buffer) > 0
			case classUpper:
				if pendingSpace {
					*buffer = append(*buffer, ' ')
					pendingSpace = false
				}
				*buffer = append(*buffer, b+('a'-'A'))
			default:
				if pendingSpace {
					*buffer = append(*buffer, ' ')
					pendingSpace = false
				}
				*buffer = append(*buffer, b)
			}
		}
		return string(*buffer)
	}

	// Slower path for mixed ASCII/Unicode strings
	for _, r := range text {
		if unicode.IsSpace(r) {
			pendingSpace = len(*buffer) > 0
			continue
		}
		if pendingSpace {
			*buffer = append(*buffer, ' ')
			pendingSpace = false
		}
		*buffer = utf8.AppendRune(*buffer, unicode.ToLower(r))
	}

	return string(*buffer)
}

// NormalizerFactory creates the appropriate normalizer based on performance
// requirements.
type NormalizerFactory struct{}

// NewNormalizerFactory creates a new normalizer factory.
func NewNormalizerFactory() *NormalizerFactory {
	return &NormalizerFactory{}
}

// NormalizerType selects a normalization strategy.
type NormalizerType int

const (
	// DefaultNormalizerType is the straightforward normalizer.
	DefaultNormalizerType NormalizerType = iota
	// FastNormalizerType uses precomputed tables and pooled buffers.
	FastNormalizerType
)

// CreateNormalizer creates a normalizer of the specified type.
func (f *NormalizerFactory) CreateNormalizer(normalizerType NormalizerType) ports.Normalizer {
	switch normalizerType {
	case FastNormalizerType:
		return NewFastNormalizer()
	default:
		return NewDefaultNormalizer()
	}
}
