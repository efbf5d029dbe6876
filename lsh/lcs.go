package lsh

import "github.com/arch-sim/simhound/models"

// lcsLength computes the longest common subsequence length between two
// ordered shingle-content sequences, used for the order-sensitive
// verification pass (spec 4.6). O(len(a)*len(b)) with O(min) memory via a
// rolling two-row table.
func lcsLength(a, b []models.Shingle) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1].Content == b[j-1].Content {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// orderSensitiveSimilarity scores a pair per spec 4.6:
// LCS / ((|A|+|B|)/2).
func orderSensitiveSimilarity(a, b []models.Shingle) float64 {
	avgLen := float64(len(a)+len(b)) / 2
	if avgLen == 0 {
		return 0
	}
	return float64(lcsLength(a, b)) / avgLen
}
