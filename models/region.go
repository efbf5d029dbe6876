package models

import "fmt"

// RegionKind classifies what a Region represents structurally.
type RegionKind string

const (
	RegionFunction     RegionKind = "function"
	RegionClass        RegionKind = "class"
	RegionMethod       RegionKind = "method"
	RegionHeading      RegionKind = "heading"
	RegionCodeBlock    RegionKind = "code_block"
	RegionLines        RegionKind = "lines"
	RegionChunk        RegionKind = "chunk"
	RegionShingleWindow RegionKind = "shingle_window"
)

// AnonymousName is used when a region's identifier cannot be recovered.
const AnonymousName = "anonymous"

// Region is a comparison unit: a contiguous line range within one file,
// plus enough metadata to report it meaningfully. Two regions are the same
// logical entity iff their (Path, StartLine, EndLine) triple matches.
type Region struct {
	Path     string     `json:"path"`
	Language Language   `json:"language"`
	Kind     RegionKind `json:"kind"`
	Name     string     `json:"name"`
	Lines    LineRange  `json:"lines"`
}

// NewRegion validates the line-range invariant at construction time so a
// malformed region can never enter the pipeline.
func NewRegion(path string, lang Language, kind RegionKind, name string, lines LineRange) (Region, error) {
	if !lines.Valid() {
		return Region{}, fmt.Errorf("models: invalid region line range %d-%d for %s", lines.StartLine, lines.EndLine, path)
	}
	if name == "" {
		name = AnonymousName
	}
	return Region{Path: path, Language: lang, Kind: kind, Name: name, Lines: lines}, nil
}

// Key returns the stable identity tuple used to dedupe and cross-reference
// regions without an owning back-pointer.
func (r Region) Key() RegionKey {
	return RegionKey{Path: r.Path, StartLine: r.Lines.StartLine, EndLine: r.Lines.EndLine}
}

// RegionKey is the value-type identity of a region: path plus line span.
// Regions are looked up and deduplicated by this key rather than by
// pointer identity, since shingles/signatures/groups never own the region
// they describe.
type RegionKey struct {
	Path      string
	StartLine int
	EndLine   int
}

func (k RegionKey) String() string {
	return fmt.Sprintf("%s:%d-%d", k.Path, k.StartLine, k.EndLine)
}

// SameFileOverlap reports whether a and b are in the same file and their
// line ranges overlap — used to reject same-file candidate pairs before
// similarity is even computed (4.6).
func (r Region) SameFileOverlap(other Region) bool {
	return r.Path == other.Path && r.Lines.Overlaps(other.Lines)
}
