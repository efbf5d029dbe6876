package lsh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/models"
)

func regionAt(t *testing.T, path string, start, end int) models.RegionSignature {
	t.Helper()
	reg, err := models.NewRegion(path, models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: start, EndLine: end})
	require.NoError(t, err)
	return models.RegionSignature{Region: reg}
}

// TestResolveOverlapsDropsTransitiveOverlap covers the gap Group's per-pair
// same-file check misses: A and C overlap in the same file but never
// land in the same LSH bucket, so they only ever reach the same component by
// each unioning separately with B in a different file. resolveOverlaps must
// still enforce the invariant once the component is assembled.
func TestResolveOverlapsDropsTransitiveOverlap(t *testing.T) {
	sigs := []models.RegionSignature{
		regionAt(t, "f.go", 1, 20),  // A
		regionAt(t, "g.go", 1, 20),  // B, different file, unions both A and C
		regionAt(t, "f.go", 15, 30), // C, overlaps A, never compared to it directly
	}

	members := resolveOverlaps(sigs, []int{0, 1, 2})

	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			require.False(t, sigs[members[i]].Region.SameFileOverlap(sigs[members[j]].Region),
				"resolved component must contain no same-file overlapping pair")
		}
	}
	// B (index 1, g.go) never overlaps anything and must survive; exactly one
	// of A/C (both f.go, both overlapping) must be dropped.
	require.Contains(t, members, 1)
	require.Len(t, members, 2)
	require.Contains(t, members, 0) // earlier-starting region (A) wins the tie-break
}

// TestResolveOverlapsKeepsNonOverlappingMembers is the no-op case: nothing
// in the component overlaps, so every member survives untouched.
func TestResolveOverlapsKeepsNonOverlappingMembers(t *testing.T) {
	sigs := []models.RegionSignature{
		regionAt(t, "a.go", 1, 10),
		regionAt(t, "b.go", 1, 10),
		regionAt(t, "c.go", 1, 10),
	}

	members := resolveOverlaps(sigs, []int{0, 1, 2})
	require.ElementsMatch(t, []int{0, 1, 2}, members)
}
