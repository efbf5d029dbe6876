package minhash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/minhash"
)

func TestDeterministicAcrossInstances(t *testing.T) {
	contents := map[string]struct{}{"a→b→c": {}, "b→c→d": {}, "c→d→e": {}}

	s1 := minhash.New(128)
	s2 := minhash.New(128)

	sig1 := s1.Sketch(contents)
	sig2 := s2.Sketch(contents)

	require.Equal(t, sig1.Values, sig2.Values, "identical input must produce bit-identical signatures across instances")
}

func TestEmptySetIsSentinelAndNeverSimilar(t *testing.T) {
	s := minhash.New(128)
	a := s.Sketch(map[string]struct{}{})
	b := s.Sketch(map[string]struct{}{})

	require.True(t, a.Empty)
	require.True(t, b.Empty)
	require.Equal(t, 0.0, a.EstimateJaccard(b), "two empty-shingle regions must not be similar")
}

func TestIdenticalSetsEstimateHighSimilarity(t *testing.T) {
	s := minhash.New(128)
	contents := map[string]struct{}{"a→b→c": {}, "b→c→d": {}, "c→d→e": {}, "d→e→f": {}}

	sig1 := s.Sketch(contents)
	sig2 := s.Sketch(contents)

	require.Equal(t, 1.0, sig1.EstimateJaccard(sig2))
}

func TestDifferentSetsEstimateLowerSimilarity(t *testing.T) {
	s := minhash.New(128)
	a := s.Sketch(map[string]struct{}{"a→b→c": {}, "b→c→d": {}})
	b := s.Sketch(map[string]struct{}{"x→y→z": {}, "y→z→w": {}})

	require.Less(t, a.EstimateJaccard(b), 0.5)
}
