package models

// Shingle is a k-gram of joined NodeRepresentations plus the line range of
// the last (most specific) node contributing to it.
type Shingle struct {
	Content   string    `json:"content"`
	LineRange LineRange `json:"line_range"`
}

// ShingledRegion pairs a Region with its ordered, pre-order shingle
// sequence. Duplicate-content shingles are retained here; set semantics
// only apply once MinHashed.
type ShingledRegion struct {
	Region   Region
	Shingles []Shingle
}

// ContentSet returns the unique shingle contents as a set, the input to
// MinHash sketching.
func (sr ShingledRegion) ContentSet() map[string]struct{} {
	set := make(map[string]struct{}, len(sr.Shingles))
	for _, s := range sr.Shingles {
		set[s.Content] = struct{}{}
	}
	return set
}
