// Package engine compiles rule queries into Patterns and matches them
// against an AST once per root (C2): it answers "how should this node be
// normalized" and "which nodes match this region-extraction query",
// amortizing query execution to O(N·R) per spec 4.2.
package engine

import (
	"fmt"
	"sync"

	"github.com/arch-sim/simhound/models"
)

// compiledRule pairs a models.Rule with its pre-compiled Pattern.
type compiledRule struct {
	rule    models.Rule
	pattern *Pattern
}

// Engine is constructed once per worker goroutine (spec §5: "one
// rule-engine instance per worker" when used across threads); it is not
// safe to share a single *Engine across goroutines because of its mutable
// anonymization counters and match cache.
type Engine struct {
	rules []compiledRule

	// patternCache amortizes Compile across Engine instances built from
	// the same Catalog — compilation is pure and keyed by query text, so
	// sharing it across workers is safe even though the Engine itself
	// is not (mirrors the teacher's registry-with-RWMutex shape).
	patternCache *sync.Map

	// counters implements the per-prefix anonymization counter described
	// in spec 4.2; reset at region boundaries via ResetIdentifiers.
	counters map[string]int

	// matchCache maps a node (by pointer identity, not byte range — two
	// distinct nodes can legitimately share a byte range, e.g. a wrapper
	// expression node and its sole child) to the set of rule names that
	// matched it, populated by PrecomputeQueries so Apply's membership
	// test is O(1) rather than re-running every pattern per node.
	matchCache map[*models.Node][]string
}

var sharedPatternCache sync.Map

// New compiles every rule's query once and returns an Engine ready to
// process one file (or one worker's stream of files). Returns an error if
// any query fails to compile — a construction-time failure, never a
// per-node runtime one (spec 4.2).
func New(ruleList []models.Rule) (*Engine, error) {
	e := &Engine{
		patternCache: &sharedPatternCache,
		counters:     make(map[string]int),
		matchCache:   make(map[*models.Node][]string),
	}
	for _, r := range ruleList {
		pat, err := e.compile(r.Query)
		if err != nil {
			return nil, fmt.Errorf("engine: rule %q: %w", r.Name, err)
		}
		e.rules = append(e.rules, compiledRule{rule: r, pattern: pat})
	}
	return e, nil
}

func (e *Engine) compile(query string) (*Pattern, error) {
	if cached, ok := e.patternCache.Load(query); ok {
		return cached.(*Pattern), nil
	}
	pat, err := Compile(query)
	if err != nil {
		return nil, err
	}
	e.patternCache.Store(query, pat)
	return pat, nil
}

// ResetIdentifiers clears every anonymization counter. Must be called at
// region boundaries so identical regions in different files (or different
// positions in the same file) anonymize to identical token streams — the
// invariant similarity detection depends on.
func (e *Engine) ResetIdentifiers() {
	e.counters = make(map[string]int)
}

// PrecomputeQueries executes every rule's pattern against every node in
// root once, caching which rule names matched which node. Call this
// once per region (or once per file for file-wide queries) before the
// shingler walks the tree, so Apply becomes an O(1) cache lookup.
func (e *Engine) PrecomputeQueries(root *models.Node, lang models.Language) {
	e.matchCache = make(map[*models.Node][]string)
	var ancestors []string
	var walk func(n *models.Node)
	walk = func(n *models.Node) {
		for _, cr := range e.rules {
			if !cr.rule.AppliesToLanguage(lang) {
				continue
			}
			if cr.pattern.Matches(n.Kind, ancestors) {
				e.matchCache[n] = append(e.matchCache[n], cr.rule.Name)
			}
		}
		ancestors = append(ancestors, n.Kind)
		for _, c := range n.Children {
			walk(c)
		}
		ancestors = ancestors[:len(ancestors)-1]
	}
	walk(root)
}

// Apply returns the Disposition for node: Skip if any matching rule's
// action is "remove" (remove dominates), otherwise Keep with the name/
// value produced by the last matching non-remove rule, honoring "last
// matching rule wins" (spec 4.1). A node matched by no rule keeps its
// raw kind/value unchanged.
func (e *Engine) Apply(node *models.Node, lang models.Language) models.Disposition {
	names := e.matchCache[node]
	rep := models.NodeRepresentation{Name: node.Kind, Value: node.Value, HasValue: node.HasValue}
	for _, name := range names {
		cr := e.ruleByName(name)
		if cr == nil || !cr.rule.AppliesToLanguage(lang) {
			continue
		}
		switch cr.rule.Action {
		case models.ActionRemove:
			return models.SkipNode
		case models.ActionRename:
			rep.Name = cr.rule.Params.Token
		case models.ActionReplaceValue:
			rep.Value = cr.rule.Params.Value
			rep.HasValue = true
		case models.ActionCanonicalize:
			rep.Name = cr.rule.Params.Token
			rep.HasValue = false
		case models.ActionAnonymize:
			e.counters[cr.rule.Params.Prefix]++
			rep.Name = fmt.Sprintf("%s_%d", cr.rule.Params.Prefix, e.counters[cr.rule.Params.Prefix])
			rep.HasValue = false
		case models.ActionExtractRegion:
			// region-extraction rules never affect shingle content (4.1)
		}
	}
	return models.KeepAs(rep)
}

func (e *Engine) ruleByName(name string) *compiledRule {
	for i := range e.rules {
		if e.rules[i].rule.Name == name {
			return &e.rules[i]
		}
	}
	return nil
}

// NodesMatching walks root and returns every node satisfying query, for
// use by the region extractor's explicit-rule pass. query need not belong
// to any rule passed to New; it is compiled (or taken from the shared
// pattern cache) here, and a malformed query is returned as an error.
func (e *Engine) NodesMatching(query string, root *models.Node) ([]*models.Node, error) {
	pat, err := e.compile(query)
	if err != nil {
		return nil, err
	}
	var out []*models.Node
	var ancestors []string
	var walk func(n *models.Node)
	walk = func(n *models.Node) {
		if pat.Matches(n.Kind, ancestors) {
			out = append(out, n)
		}
		ancestors = append(ancestors, n.Kind)
		for _, c := range n.Children {
			walk(c)
		}
		ancestors = ancestors[:len(ancestors)-1]
	}
	walk(root)
	return out, nil
}
