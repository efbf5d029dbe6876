// Package window implements the line-level residual pass (C7): from
// unmatched line ranges it builds sliding shingle windows and later merges
// overlapping windows from a matched group back into contiguous regions.
package window

import (
	"sort"

	"github.com/arch-sim/simhound/models"
)

// UnmatchedRanges merges matched into non-overlapping intervals and
// returns the maximal contiguous unmatched segments of at least minLines
// lines, over a file of fileLines total lines (spec 4.7).
func UnmatchedRanges(fileLines int, matched []models.LineRange, minLines int) []models.LineRange {
	if fileLines <= 0 {
		return nil
	}
	merged := mergeRanges(matched)

	var unmatched []models.LineRange
	cursor := 1
	for _, m := range merged {
		if m.StartLine > cursor {
			unmatched = append(unmatched, models.LineRange{StartLine: cursor, EndLine: m.StartLine - 1})
		}
		if m.EndLine+1 > cursor {
			cursor = m.EndLine + 1
		}
	}
	if cursor <= fileLines {
		unmatched = append(unmatched, models.LineRange{StartLine: cursor, EndLine: fileLines})
	}

	out := unmatched[:0:0]
	for _, r := range unmatched {
		if r.EndLine-r.StartLine+1 >= minLines {
			out = append(out, r)
		}
	}
	return out
}

func mergeRanges(ranges []models.LineRange) []models.LineRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]models.LineRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartLine < sorted[j].StartLine })

	merged := []models.LineRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.StartLine <= last.EndLine+1 {
			if r.EndLine > last.EndLine {
				last.EndLine = r.EndLine
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Windows splits a shingled region's shingle list into overlapping windows
// of windowSize shingles, advancing stride shingles between windows.
// Windows with fewer than minShingles shingles are discarded (spec 4.7).
// Each surviving window's line range spans the min/max of its own
// shingles, and it is returned as a first-class shingle_window region.
func Windows(sr models.ShingledRegion, windowSize, stride, minShingles int) []models.ShingledRegion {
	if windowSize < 1 {
		windowSize = 1
	}
	if stride < 1 {
		stride = 1
	}
	var out []models.ShingledRegion
	for start := 0; start < len(sr.Shingles); start += stride {
		end := start + windowSize
		if end > len(sr.Shingles) {
			end = len(sr.Shingles)
		}
		chunk := sr.Shingles[start:end]
		if len(chunk) < minShingles {
			if end == len(sr.Shingles) {
				break
			}
			continue
		}
		lines := spanOf(chunk)
		region, err := models.NewRegion(sr.Region.Path, sr.Region.Language, models.RegionShingleWindow, sr.Region.Name, lines)
		if err != nil {
			continue
		}
		out = append(out, models.ShingledRegion{Region: region, Shingles: append([]models.Shingle(nil), chunk...)})
		if end == len(sr.Shingles) {
			break
		}
	}
	return out
}

func spanOf(shingles []models.Shingle) models.LineRange {
	min, max := shingles[0].LineRange.StartLine, shingles[0].LineRange.EndLine
	for _, s := range shingles[1:] {
		if s.LineRange.StartLine < min {
			min = s.LineRange.StartLine
		}
		if s.LineRange.EndLine > max {
			max = s.LineRange.EndLine
		}
	}
	return models.LineRange{StartLine: min, EndLine: max}
}

// MergeOverlapping collapses windows from the same file whose line ranges
// overlap or are within gapLines of each other into a single contiguous
// "lines" region spanning their combined extent (spec 4.7). Groups that
// drop below two distinct regions after merging are discarded (returns
// ok=false).
func MergeOverlapping(group models.SimilarRegionGroup, gapLines int) (models.SimilarRegionGroup, bool) {
	byFile := make(map[string][]models.Region)
	for _, r := range group.Regions {
		byFile[r.Path] = append(byFile[r.Path], r)
	}

	var merged []models.Region
	for path, regions := range byFile {
		sort.Slice(regions, func(i, j int) bool { return regions[i].Lines.StartLine < regions[j].Lines.StartLine })
		cur := regions[0]
		for _, r := range regions[1:] {
			if r.Lines.StartLine <= cur.Lines.EndLine+gapLines {
				if r.Lines.EndLine > cur.Lines.EndLine {
					cur.Lines.EndLine = r.Lines.EndLine
				}
				continue
			}
			merged = append(merged, toLinesRegion(path, cur))
			cur = r
		}
		merged = append(merged, toLinesRegion(path, cur))
	}

	if len(merged) < 2 {
		return models.SimilarRegionGroup{}, false
	}
	return models.SimilarRegionGroup{Regions: merged, Similarity: group.Similarity}, true
}

func toLinesRegion(path string, r models.Region) models.Region {
	r.Path = path
	r.Kind = models.RegionLines
	return r
}
