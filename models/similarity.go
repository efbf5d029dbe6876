package models

// DefaultNumPerm is the default MinHash signature width (spec 4.5).
const DefaultNumPerm = 128

// MinHashSignature is a fixed-width vector of 64-bit minima. Two signatures
// of equal width admit an estimated Jaccard similarity equal to the
// fraction of equal positions.
type MinHashSignature struct {
	Values []uint64 `json:"-"`
	// Empty reports whether the source shingle set was empty; empty
	// signatures never compare similar to anything, including each other
	// (spec 4.5 degenerate-case override).
	Empty bool `json:"-"`
}

// NumPerm returns the signature width.
func (s MinHashSignature) NumPerm() int { return len(s.Values) }

// EstimateJaccard returns the fraction of matching minima between s and
// other, or 0 if either is Empty or the widths differ.
func (s MinHashSignature) EstimateJaccard(other MinHashSignature) float64 {
	if s.Empty || other.Empty {
		return 0
	}
	if len(s.Values) != len(other.Values) || len(s.Values) == 0 {
		return 0
	}
	matches := 0
	for i := range s.Values {
		if s.Values[i] == other.Values[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(s.Values))
}

// RegionSignature binds a Region to its MinHash signature and the number
// of shingles that produced it.
type RegionSignature struct {
	Region       Region           `json:"region"`
	Signature    MinHashSignature `json:"-"`
	ShingleCount int              `json:"shingle_count"`
	// Shingles carries the ordered shingle sequence so verification can
	// run order-sensitive LCS; it is not part of the signature proper.
	Shingles []Shingle `json:"-"`
}

// SimilarRegionGroup is a set of mutually similar regions (size >= 2) plus
// their average pairwise similarity.
type SimilarRegionGroup struct {
	Regions    []Region `json:"regions"`
	Similarity float64  `json:"similarity"`
}

// SimilarityResult is the sole output of the pipeline: every signature
// computed, every group found, and every file that failed to parse.
type SimilarityResult struct {
	Signatures    []RegionSignature    `json:"signatures"`
	SimilarGroups []SimilarRegionGroup `json:"similar_groups"`
	FailedFiles   map[string]string    `json:"failed_files"`
}

// NewSimilarityResult builds an empty result ready to be populated.
func NewSimilarityResult() *SimilarityResult {
	return &SimilarityResult{FailedFiles: make(map[string]string)}
}
