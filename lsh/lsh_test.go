package lsh_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/lsh"
	"github.com/arch-sim/simhound/minhash"
	"github.com/arch-sim/simhound/models"
)

func sigFor(t *testing.T, sk *minhash.Sketcher, path string, start, end int, shingles ...string) models.RegionSignature {
	t.Helper()
	reg, err := models.NewRegion(path, models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: start, EndLine: end})
	require.NoError(t, err)

	set := make(map[string]struct{}, len(shingles))
	var sh []models.Shingle
	for _, s := range shingles {
		set[s] = struct{}{}
		sh = append(sh, models.Shingle{Content: s, LineRange: models.LineRange{StartLine: start, EndLine: end}})
	}
	return models.RegionSignature{
		Region:       reg,
		Signature:    sk.Sketch(set),
		ShingleCount: len(shingles),
		Shingles:     sh,
	}
}

func TestGroupFindsIdenticalRegionsAcrossFiles(t *testing.T) {
	sk := minhash.New(64)
	shared := []string{"a→b→c", "b→c→d", "c→d→e", "d→e→f", "e→f→g"}

	sigs := []models.RegionSignature{
		sigFor(t, sk, "a.go", 1, 5, shared...),
		sigFor(t, sk, "b.go", 1, 5, shared...),
		sigFor(t, sk, "c.go", 1, 5, "x→y→z", "y→z→w", "z→w→v", "w→v→u"),
	}

	groups := lsh.Group(sigs, lsh.Options{Threshold: 0.85, MinSimilarity: 0.85, Verify: true})
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Regions, 2)
	require.GreaterOrEqual(t, groups[0].Similarity, 0.85)
}

func TestGroupRejectsSameFileOverlap(t *testing.T) {
	sk := minhash.New(64)
	shared := []string{"a→b→c", "b→c→d", "c→d→e"}

	sigs := []models.RegionSignature{
		sigFor(t, sk, "a.go", 1, 5, shared...),
		sigFor(t, sk, "a.go", 3, 8, shared...), // overlaps the first in the same file
	}

	groups := lsh.Group(sigs, lsh.Options{Threshold: 0.85, MinSimilarity: 0.85, Verify: false})
	require.Empty(t, groups, "same-file overlapping regions must never be grouped")
}

func TestGroupDescendingSimilarityOrder(t *testing.T) {
	sk := minhash.New(64)
	identical := []string{"a→b→c", "b→c→d", "c→d→e", "d→e→f"}
	partial := []string{"a→b→c", "b→c→d", "q→r→s", "t→u→v"}

	sigs := []models.RegionSignature{
		sigFor(t, sk, "a.go", 1, 4, identical...),
		sigFor(t, sk, "b.go", 1, 4, identical...),
		sigFor(t, sk, "c.go", 1, 4, partial...),
		sigFor(t, sk, "d.go", 1, 4, partial...),
	}

	groups := lsh.Group(sigs, lsh.Options{Threshold: 0.4, MinSimilarity: 0.4, Verify: false})
	require.Len(t, groups, 2)
	require.GreaterOrEqual(t, groups[0].Similarity, groups[1].Similarity)
}
