package engine

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a compiled tree-query: an ordered chain of kind selectors
// separated by ">", read innermost-last — "expression_statement > string"
// matches a "string" node whose immediate parent is "expression_statement".
// Each selector segment may be a doublestar glob (e.g. "*_statement"),
// matching the teacher's use of the same library for path-style matching.
type Pattern struct {
	raw       string
	selectors []string
}

// Compile parses a query string into a Pattern. Malformed queries (an
// empty segment) fail at construction time, never at match time, per
// spec 4.2's "malformed queries raise a construction-time error" rule.
func Compile(query string) (*Pattern, error) {
	parts := strings.Split(query, ">")
	selectors := make([]string, 0, len(parts))
	for _, p := range parts {
		seg := strings.TrimSpace(p)
		if seg == "" {
			return nil, fmt.Errorf("engine: empty selector segment in query %q", query)
		}
		selectors = append(selectors, seg)
	}
	return &Pattern{raw: query, selectors: selectors}, nil
}

// String returns the original query text.
func (p *Pattern) String() string { return p.raw }

// Matches reports whether node (whose ancestor chain is ancestors, nearest
// parent last) satisfies the pattern. Only the tail of ancestors needed to
// cover len(selectors)-1 parents is consulted.
func (p *Pattern) Matches(nodeKind string, ancestors []string) bool {
	n := len(p.selectors)
	if !kindMatches(p.selectors[n-1], nodeKind) {
		return false
	}
	// selectors[0..n-2] must match the nearest n-1 ancestors, nearest last.
	need := n - 1
	if need == 0 {
		return true
	}
	if len(ancestors) < need {
		return false
	}
	tail := ancestors[len(ancestors)-need:]
	for i, sel := range p.selectors[:need] {
		if !kindMatches(sel, tail[i]) {
			return false
		}
	}
	return true
}

func kindMatches(selector, kind string) bool {
	if selector == kind {
		return true
	}
	ok, err := doublestar.Match(selector, kind)
	return err == nil && ok
}
