package lsh

import (
	"hash/fnv"

	"github.com/arch-sim/simhound/models"
)

// defaultNumBands picks a banding granularity that keeps band size >= 1
// regardless of the configured num_perm; fewer bands mean more rows per
// band, so buckets are stricter and recall is lower.
func defaultNumBands(numPerm int) int {
	bands := 32
	if bands > numPerm {
		bands = numPerm
	}
	if bands < 1 {
		bands = 1
	}
	return bands
}

// bandBuckets groups signature indices into LSH buckets: signatures whose
// band b hashes to the same bucket key are candidates for comparison.
// Empty signatures never enter the index (they're never similar to
// anything per spec 4.5).
func bandBuckets(sigs []models.MinHashSignature, numBands int) []map[uint64][]int {
	if len(sigs) == 0 {
		return nil
	}
	numPerm := 0
	for _, sig := range sigs {
		if len(sig.Values) > 0 {
			numPerm = len(sig.Values)
			break
		}
	}
	if numPerm == 0 {
		return nil
	}
	bandSize := numPerm / numBands
	if bandSize < 1 {
		bandSize = 1
		numBands = numPerm
	}

	buckets := make([]map[uint64][]int, numBands)
	for b := range buckets {
		buckets[b] = make(map[uint64][]int)
	}

	for idx, sig := range sigs {
		if sig.Empty {
			continue
		}
		for b := 0; b < numBands; b++ {
			start := b * bandSize
			end := start + bandSize
			if end > len(sig.Values) {
				end = len(sig.Values)
			}
			if start >= end {
				continue
			}
			key := hashBand(sig.Values[start:end])
			buckets[b][key] = append(buckets[b][key], idx)
		}
	}
	return buckets
}

// hashBand folds a band's minima into a single bucket key via FNV-1a over
// their big-endian bytes.
func hashBand(band []uint64) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)
	for _, v := range band {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (56 - 8*i))
		}
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

// candidatePairs returns every distinct index pair (i<j) that shares at
// least one bucket in any band.
func candidatePairs(buckets []map[uint64][]int) [][2]int {
	seen := make(map[[2]int]struct{})
	var pairs [][2]int
	for _, bucket := range buckets {
		for _, members := range bucket {
			if len(members) < 2 {
				continue
			}
			for a := 0; a < len(members); a++ {
				for b := a + 1; b < len(members); b++ {
					i, j := members[a], members[b]
					if i > j {
						i, j = j, i
					}
					key := [2]int{i, j}
					if _, ok := seen[key]; ok {
						continue
					}
					seen[key] = struct{}{}
					pairs = append(pairs, key)
				}
			}
		}
	}
	return pairs
}
