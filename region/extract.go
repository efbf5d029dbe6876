// Package region implements the hybrid region extractor (C3): explicit
// rule-driven regions (functions, classes, headings) plus statistical
// auto-chunking for structure the rule catalog does not label.
package region

import (
	"sort"

	"github.com/arch-sim/simhound/engine"
	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/rules"
)

// Extracted pairs a Region with the AST node(s) that produced it, so the
// shingler can walk them without re-deriving the region from scratch.
// When Nodes is non-nil the shingler walks every node in it instead of
// Node. The extractors in this package set only Node; a markdown heading
// region covers the heading node alone, not the blocks under it.
type Extracted struct {
	Region models.Region
	Node   *models.Node
	Nodes  []*models.Node
}

func nodeName(n *models.Node, file *models.SourceFile) string {
	if child, ok := n.NameChild(); ok {
		return file.Text(child.Bytes)
	}
	return models.AnonymousName
}

// ExtractExplicit runs every region-extraction rule registered for the
// file's language and returns one Extracted per match, in document order.
// Nested functions are never split out here: a rule only fires on nodes
// matching its query, and a nested function_definition still matches, so
// the walk in engine.NodesMatching naturally visits it too — callers that
// want "outer function covers its nested helpers" (spec 4.3 edge case)
// rely on DropNested below.
func ExtractExplicit(eng *engine.Engine, catalog *rules.Catalog, file *models.SourceFile) ([]Extracted, error) {
	regionRules := catalog.RegionExtractionRules(file.Language)
	var out []Extracted
	for _, rr := range regionRules {
		nodes, err := eng.NodesMatching(rr.Query, file.Root)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			reg, err := models.NewRegion(file.Path, file.Language, rr.Kind, nodeName(n, file), n.Lines)
			if err != nil {
				continue // a zero-width/inverted node from a buggy adapter; skip rather than abort the run
			}
			out = append(out, Extracted{Region: reg, Node: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Region.Lines.StartLine != out[j].Region.Lines.StartLine {
			return out[i].Region.Lines.StartLine < out[j].Region.Lines.StartLine
		}
		return out[i].Region.Lines.EndLine < out[j].Region.Lines.EndLine
	})
	return DropNested(out), nil
}

// DropNested removes a function region wholly contained by another
// function region, implementing spec 4.3's "nested functions are NOT
// separate regions" policy: an outer function's shingles already cover
// its nested helpers by virtue of AST containment. Only same-kind
// containment is collapsed — a method nested inside its class, or a code
// block nested under a heading, stays a distinct region (scenario 3
// depends on methods surviving independently of their enclosing class).
func DropNested(extracted []Extracted) []Extracted {
	keep := make([]Extracted, 0, len(extracted))
	for i, e := range extracted {
		nested := false
		if e.Region.Kind == models.RegionFunction {
			for j, other := range extracted {
				if i == j || other.Region.Kind != models.RegionFunction {
					continue
				}
				if other.Region.Lines.Contains(e.Region.Lines) && other.Region.Lines != e.Region.Lines {
					nested = true
					break
				}
			}
		}
		if !nested {
			keep = append(keep, e)
		}
	}
	return keep
}

// Dedup implements the canonical tie-break of spec 4.3: when an explicit
// region and a statistical chunk share the same (path, start, end) key,
// the explicit region wins because it carries a semantic label.
func Dedup(explicit, statistical []Extracted) []Extracted {
	seen := make(map[models.RegionKey]struct{}, len(explicit))
	out := make([]Extracted, 0, len(explicit)+len(statistical))
	for _, e := range explicit {
		seen[e.Region.Key()] = struct{}{}
		out = append(out, e)
	}
	for _, s := range statistical {
		if _, ok := seen[s.Region.Key()]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}
