package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/wakemeup0/match/pkg/addressmatch"
)

// generatePairs builds n address pairs cycling through a few realistic shapes.
func generatePairs(n int) []addressmatch.AddressPair {
	templates := []addressmatch.AddressPair{
		{
			Address1: "123 Main St, Suite 100, New York, NY 10001",
			Address2: "123 Main Street, Ste 100, New York, NY 10001",
		},
		{
			Address1: "Suite 100, 123 Main St, New York, NY 10001",
			Address2: "123 Main St, Suite 100, New York, NY 10001",
		},
		{
			Address1: "456 Oak Ave, Chicago, IL 60601",
			Address2: "789 Pine Rd, Denver, CO 80201",
		},
	}

	pairs := make([]addressmatch.AddressPair, n)
	for i := range pairs {
		tmpl := templates[i%len(templates)]
		pairs[i] = addressmatch.AddressPair{
			Address1: fmt.Sprintf("%s unit %d", tmpl.Address1, i),
			Address2: fmt.Sprintf("%s unit %d", tmpl.Address2, i),
		}
	}
	return pairs
}

func BenchmarkMatch(b *testing.B) {
	matcher, err := addressmatch.New()
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = matcher.Match(context.Background(),
			"123 Main St, Suite 100, New York, NY 10001",
			"123 Main Street, Ste 100, New York, NY 10001",
		)
	}
}

func BenchmarkMatchFastNormalizer(b *testing.B) {
	matcher, err := addressmatch.New(addressmatch.WithFastNormalizer())
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = matcher.Match(context.Background(),
			"123 Main St, Suite 100, New York, NY 10001",
			"123 Main Street, Ste 100, New York, NY 10001",
		)
	}
}

func BenchmarkMatchBatch(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("size-%d", size), func(b *testing.B) {
			matcher, err := addressmatch.New(addressmatch.WithFastNormalizer())
			if err != nil {
				b.Fatalf("New failed: %v", err)
			}
			pairs := generatePairs(size)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := matcher.MatchBatch(context.Background(), pairs); err != nil {
					b.Fatalf("MatchBatch failed: %v", err)
				}
			}
		})
	}
}
