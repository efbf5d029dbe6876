// Package lsh implements banded LSH candidate generation, union-find
// grouping, and optional order-sensitive verification (C6).
package lsh

import (
	"sort"

	"github.com/arch-sim/simhound/models"
)

// Options parameterizes one grouping pass. Region and line passes use the
// same Group function with different thresholds (spec 4.6/4.7/4.8).
type Options struct {
	// Threshold is the configured similarity threshold; capped internally
	// at 0.98 for LSH candidate acceptance (spec 4.6: τ_lsh).
	Threshold float64
	// MinSimilarity is the floor a group's final (post-verification)
	// similarity must clear to survive.
	MinSimilarity float64
	// Verify enables the optional order-sensitive LCS re-scoring pass.
	Verify bool
}

// Group runs the full C6 pipeline over a set of signed regions: LSH
// candidate lookup, same-file-overlap rejection, Jaccard threshold gating,
// union-find component assembly, average-pairwise gating, optional LCS
// verification, and a final descending-similarity sort.
func Group(sigs []models.RegionSignature, opts Options) []models.SimilarRegionGroup {
	if len(sigs) < 2 {
		return nil
	}
	lshThreshold := models.LSHThreshold(opts.Threshold)

	plain := make([]models.MinHashSignature, len(sigs))
	numPerm := 0
	for i, s := range sigs {
		plain[i] = s.Signature
		if numPerm == 0 && len(s.Signature.Values) > 0 {
			numPerm = len(s.Signature.Values)
		}
	}
	if numPerm == 0 {
		// every signature is the empty sentinel; nothing can ever be similar.
		return nil
	}
	buckets := bandBuckets(plain, defaultNumBands(numPerm))
	pairs := candidatePairs(buckets)

	uf := newUnionFind(len(sigs))
	for _, p := range pairs {
		i, j := p[0], p[1]
		if sigs[i].Region.SameFileOverlap(sigs[j].Region) {
			continue
		}
		sim := sigs[i].Signature.EstimateJaccard(sigs[j].Signature)
		if sim >= lshThreshold {
			uf.union(i, j)
		}
	}

	var groups []models.SimilarRegionGroup
	for _, members := range uf.components() {
		members = resolveOverlaps(sigs, members)
		if len(members) < 2 {
			continue
		}
		avg := averagePairwiseJaccard(sigs, members)
		if avg < lshThreshold {
			continue // guards against long transitive chains with low endpoint similarity
		}
		group := buildGroup(sigs, members, avg)

		if opts.Verify {
			verified, ok := verifyOrderSensitive(sigs, members, opts.MinSimilarity)
			if !ok {
				continue
			}
			group = verified
		} else if group.Similarity < opts.MinSimilarity {
			continue
		}
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Similarity > groups[j].Similarity })
	return groups
}

// resolveOverlaps enforces spec §8's invariant ("for every two regions in
// the same group, their line ranges do not overlap when they share a
// path") across the whole component, not just the LSH candidate pairs
// examined while unioning it. Two members can join the same component
// transitively through a third member in a different file without the
// direct (member, member) pair ever being compared or banded together, so
// the line-52 overlap check alone cannot catch it. Members are sorted by
// (path, start line, end line) and kept greedily, dropping any region that
// overlaps an already-kept region in the same file — a deterministic tie-
// break that always keeps the earlier-starting region of an overlapping
// cluster.
func resolveOverlaps(sigs []models.RegionSignature, members []int) []int {
	sorted := make([]int, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(a, b int) bool {
		ra, rb := sigs[sorted[a]].Region, sigs[sorted[b]].Region
		if ra.Path != rb.Path {
			return ra.Path < rb.Path
		}
		if ra.Lines.StartLine != rb.Lines.StartLine {
			return ra.Lines.StartLine < rb.Lines.StartLine
		}
		return ra.Lines.EndLine < rb.Lines.EndLine
	})

	kept := make([]int, 0, len(sorted))
	for _, idx := range sorted {
		reg := sigs[idx].Region
		overlaps := false
		for _, k := range kept {
			if reg.SameFileOverlap(sigs[k].Region) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, idx)
		}
	}
	return kept
}

func averagePairwiseJaccard(sigs []models.RegionSignature, members []int) float64 {
	if len(members) < 2 {
		return 0
	}
	var total float64
	var count int
	for a := 0; a < len(members); a++ {
		for b := a + 1; b < len(members); b++ {
			total += sigs[members[a]].Signature.EstimateJaccard(sigs[members[b]].Signature)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func averagePairwiseOrderSensitive(sigs []models.RegionSignature, members []int) float64 {
	if len(members) < 2 {
		return 0
	}
	var total float64
	var count int
	for a := 0; a < len(members); a++ {
		for b := a + 1; b < len(members); b++ {
			total += orderSensitiveSimilarity(sigs[members[a]].Shingles, sigs[members[b]].Shingles)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func buildGroup(sigs []models.RegionSignature, members []int, similarity float64) models.SimilarRegionGroup {
	regions := make([]models.Region, len(members))
	for i, m := range members {
		regions[i] = sigs[m].Region
	}
	return models.SimilarRegionGroup{Regions: regions, Similarity: similarity}
}

// verifyOrderSensitive recomputes group similarity via pairwise LCS and
// reports whether the group survives the min_similarity floor (spec 4.6's
// optional verification stage — a post-processing pass over groups only,
// never inlined into candidate generation per spec §9).
func verifyOrderSensitive(sigs []models.RegionSignature, members []int, minSimilarity float64) (models.SimilarRegionGroup, bool) {
	avg := averagePairwiseOrderSensitive(sigs, members)
	if avg < minSimilarity {
		return models.SimilarRegionGroup{}, false
	}
	return buildGroup(sigs, members, avg), true
}
