//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ring

import (
	"testing"

	"github.com/markkurossi/beavernet/prng"
)

// TestShareMarginalUniformity is invariant 3: the distribution of an
// individual share component is uniform over [0, 2^k), independent
// of the shared value, checked with a seeded source and a
// large-sample chi-squared goodness-of-fit test (grounded on the
// "sample many field elements and check their distribution" shape of
// TestRandomPoints in the reference codebase's crypto/spdz/spdz_test.go,
// there checking curve-point sampling, here checking share
// uniformity).
func TestShareMarginalUniformity(t *testing.T) {
	const k = 4 // small ring so bucket counts are statistically dense
	const buckets = 1 << k
	const samples = 20000

	e, err := NewEngine(k)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	var key [32]byte
	var nonce [12]byte
	for i := range key {
		key[i] = byte(i * 3)
	}
	src, err := prng.NewChaCha20SourceFromSeed(key, nonce)
	if err != nil {
		t.Fatalf("NewChaCha20SourceFromSeed failed: %v", err)
	}

	counts := make([]int, buckets)
	for i := 0; i < samples; i++ {
		// v is fixed; only s0's distribution is under test.
		s0, _, err := e.Split(src, 7)
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		counts[s0.V]++
	}

	expected := float64(samples) / float64(buckets)
	chiSq := 0.0
	for _, c := range counts {
		diff := float64(c) - expected
		chiSq += diff * diff / expected
	}

	// Degrees of freedom = buckets-1 = 15. A generous threshold
	// (twice the 99.9% critical value) keeps this from flaking on a
	// good generator while still catching a badly biased one.
	const threshold = 80.0
	if chiSq > threshold {
		t.Errorf("chi-squared statistic %.2f exceeds threshold %.2f "+
			"(share component looks non-uniform)", chiSq, threshold)
	}
}
