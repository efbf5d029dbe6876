package window_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/window"
)

func TestUnmatchedRangesDropsBelowMinLines(t *testing.T) {
	matched := []models.LineRange{{StartLine: 10, EndLine: 20}}
	unmatched := window.UnmatchedRanges(25, matched, 5)

	require.Len(t, unmatched, 1)
	require.Equal(t, 21, unmatched[0].StartLine)
	require.Equal(t, 25, unmatched[0].EndLine)
}

func TestUnmatchedRangesSkipsTinyGapBeforeFirstMatch(t *testing.T) {
	matched := []models.LineRange{{StartLine: 3, EndLine: 30}}
	unmatched := window.UnmatchedRanges(30, matched, 5)
	require.Empty(t, unmatched, "a leading gap shorter than min_lines must not produce a region")
}

func TestWindowsDiscardBelowMinShingles(t *testing.T) {
	sr := models.ShingledRegion{
		Region: mustRegion(t),
		Shingles: []models.Shingle{
			{Content: "a", LineRange: models.LineRange{StartLine: 1, EndLine: 1}},
			{Content: "b", LineRange: models.LineRange{StartLine: 2, EndLine: 2}},
		},
	}
	windows := window.Windows(sr, 20, 5, 5)
	require.Empty(t, windows)
}

func TestWindowsSpanMinMaxOfShingles(t *testing.T) {
	sr := models.ShingledRegion{
		Region: mustRegion(t),
		Shingles: []models.Shingle{
			{Content: "a", LineRange: models.LineRange{StartLine: 1, EndLine: 1}},
			{Content: "b", LineRange: models.LineRange{StartLine: 2, EndLine: 2}},
			{Content: "c", LineRange: models.LineRange{StartLine: 3, EndLine: 3}},
		},
	}
	windows := window.Windows(sr, 3, 3, 1)
	require.Len(t, windows, 1)
	require.Equal(t, 1, windows[0].Region.Lines.StartLine)
	require.Equal(t, 3, windows[0].Region.Lines.EndLine)
	require.Equal(t, models.RegionShingleWindow, windows[0].Region.Kind)
}

func TestMergeOverlappingCollapsesCloseWindows(t *testing.T) {
	r1, _ := models.NewRegion("a.go", models.LanguageGo, models.RegionShingleWindow, "w", models.LineRange{StartLine: 1, EndLine: 10})
	r2, _ := models.NewRegion("a.go", models.LanguageGo, models.RegionShingleWindow, "w", models.LineRange{StartLine: 12, EndLine: 20})
	r3, _ := models.NewRegion("b.go", models.LanguageGo, models.RegionShingleWindow, "w", models.LineRange{StartLine: 1, EndLine: 20})

	group := models.SimilarRegionGroup{Regions: []models.Region{r1, r2, r3}, Similarity: 0.9}
	merged, ok := window.MergeOverlapping(group, 5)
	require.True(t, ok)
	require.Len(t, merged.Regions, 2)
	for _, r := range merged.Regions {
		require.Equal(t, models.RegionLines, r.Kind)
		if r.Path == "a.go" {
			require.Equal(t, 1, r.Lines.StartLine)
			require.Equal(t, 20, r.Lines.EndLine)
		}
	}
}

func mustRegion(t *testing.T) models.Region {
	t.Helper()
	r, err := models.NewRegion("a.go", models.LanguageGo, models.RegionLines, "anonymous", models.LineRange{StartLine: 1, EndLine: 3})
	require.NoError(t, err)
	return r
}
