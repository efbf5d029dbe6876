// Package shingle implements the pre-order k-gram shingler (C4): it walks
// a region's AST root, applies the rule engine at each node, and emits
// fixed-size k-gram fingerprints with line-range metadata.
package shingle

import (
	"strconv"
	"strings"

	"github.com/arch-sim/simhound/engine"
	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/region"
)

// Separator joins NodeRepresentations inside a shingle's content. Chosen
// per the recorded Open Question decision (see SPEC_FULL.md §12): any
// value byte equal to it, or to an ASCII control/whitespace byte, is
// percent-escaped so a value can never be mistaken for a separator.
const Separator = "→"

// DefaultMaxValueLength is the byte length values are truncated to before
// joining (spec 4.4 step 6); New uses it when given a length <= 0.
const DefaultMaxValueLength = 50

// Shingler produces ShingledRegions from Extracted regions using an
// Engine already primed (PrecomputeQueries called) for the region's file.
type Shingler struct {
	Engine         *engine.Engine
	K              int
	MaxValueLength int
}

// New constructs a Shingler with the given k-gram size and truncation
// length; k must be >= 1 (spec 4.4).
func New(eng *engine.Engine, k int, maxValueLength int) *Shingler {
	if k < 1 {
		k = 1
	}
	if maxValueLength <= 0 {
		maxValueLength = DefaultMaxValueLength
	}
	return &Shingler{Engine: eng, K: k, MaxValueLength: maxValueLength}
}

// ShingleExtracted shingles one or more AST roots belonging to a single
// region, honoring an optional line window for "lines"-typed regions
// (spec 4.4: "the shingler skips nodes whose line_range is entirely
// outside the window").
func (s *Shingler) ShingleExtracted(ext region.Extracted, lang models.Language, window *models.LineRange) models.ShingledRegion {
	var all []models.Shingle
	roots := ext.Nodes
	if roots == nil {
		roots = []*models.Node{ext.Node}
	}
	for _, root := range roots {
		all = append(all, s.shingleTree(root, lang, window)...)
	}
	return models.ShingledRegion{Region: ext.Region, Shingles: all}
}

func (s *Shingler) shingleTree(root *models.Node, lang models.Language, window *models.LineRange) []models.Shingle {
	var shingles []models.Shingle
	var stack []stackEntry

	var walk func(n *models.Node)
	walk = func(n *models.Node) {
		if window != nil && !window.Overlaps(n.Lines) {
			return
		}
		d := s.Engine.Apply(n, lang)
		if d.Skip {
			return
		}
		rep := d.Representation()
		stack = append(stack, stackEntry{rep: rep, lines: n.Lines})
		if len(stack) >= s.K {
			shingles = append(shingles, s.emit(stack[len(stack)-s.K:]))
		}
		for _, c := range n.Children {
			walk(c)
		}
		stack = stack[:len(stack)-1]
	}
	walk(root)
	return shingles
}

type stackEntry struct {
	rep   models.NodeRepresentation
	lines models.LineRange
}

// emit builds one Shingle from the last k stack entries. Line range comes
// from the last (deepest/most specific) entry, not a min/max over the
// k-gram (spec 4.4 step 5).
func (s *Shingler) emit(kgram []stackEntry) models.Shingle {
	parts := make([]string, len(kgram))
	for i, e := range kgram {
		parts[i] = encode(e.rep, s.MaxValueLength)
	}
	last := kgram[len(kgram)-1]
	return models.Shingle{
		Content:   strings.Join(parts, Separator),
		LineRange: last.lines,
	}
}

func encode(rep models.NodeRepresentation, maxLen int) string {
	rep.Name = escape(rep.Name)
	if rep.HasValue {
		rep.Value = escape(truncateValue(rep.Value, maxLen))
	}
	return rep.Encode()
}

// escape percent-escapes any byte in s that would be ambiguous with the
// separator or with ASCII control/whitespace bytes, so a normalized value
// containing literal arrow characters or newlines can never be confused
// with a shingle boundary.
func escape(s string) string {
	sepBytes := []byte(Separator)
	needsEscape := func(b byte) bool {
		if b <= 0x20 || b == 0x7f {
			return true
		}
		for _, sb := range sepBytes {
			if b == sb {
				return true
			}
		}
		return b == '%'
	}
	var hasAny bool
	for i := 0; i < len(s); i++ {
		if needsEscape(s[i]) {
			hasAny = true
			break
		}
	}
	if !hasAny {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if needsEscape(c) {
			b.WriteByte('%')
			b.WriteString(strings.ToUpper(strconv.FormatInt(int64(c), 16)))
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// truncateValue bounds value to maxLen bytes while preserving a
// content-derived suffix so two values differing only past the cut point
// never collapse onto the same truncated token — directly resolving
// spec scenario 6 ("different docstrings must not match"). Per spec 4.4
// step 6, truncation must preserve content rather than silently drop it.
func truncateValue(value string, maxLen int) string {
	if maxLen <= 0 || len(value) <= maxLen {
		return value
	}
	suffixHash := fnv32(value)
	suffix := "#" + strconv.FormatUint(uint64(suffixHash), 16)
	keep := maxLen - len(suffix)
	if keep < 0 {
		keep = 0
	}
	if keep > len(value) {
		keep = len(value)
	}
	return value[:keep] + suffix
}

func fnv32(s string) uint32 {
	const prime = 16777619
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}
