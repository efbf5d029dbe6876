package models

// NodeRepresentation is the normalized label of a node after rule
// application: a name and an optional value. String-encodes as
// "name(value)" when a value is present, "name" otherwise.
type NodeRepresentation struct {
	Name     string
	Value    string
	HasValue bool
}

// Encode returns the canonical string form consumed by the shingler.
func (r NodeRepresentation) Encode() string {
	if r.HasValue {
		return r.Name + "(" + r.Value + ")"
	}
	return r.Name
}

// NewNodeRepresentation builds a value-free representation (most nodes).
func NewNodeRepresentation(name string) NodeRepresentation {
	return NodeRepresentation{Name: name}
}

// WithValue builds a representation carrying a literal value.
func WithValue(name, value string) NodeRepresentation {
	return NodeRepresentation{Name: name, Value: value, HasValue: true}
}

// Disposition is the sum-typed result of applying the rule engine to a
// node: either Keep (possibly renamed/revalued) or Skip (remove dominates,
// caller must prune the subtree). Modeled as data rather than an error to
// avoid exception-as-control-flow on the shingling hot path (spec §9).
type Disposition struct {
	Skip  bool
	Name  string
	Value string
	// HasValue reports whether Value should be encoded; distinguishes an
	// explicit empty-string value from "no value at all".
	HasValue bool
}

// KeepAs builds a Disposition for a node that should continue to be
// traversed under the given representation.
func KeepAs(rep NodeRepresentation) Disposition {
	return Disposition{Name: rep.Name, Value: rep.Value, HasValue: rep.HasValue}
}

// SkipNode is the Disposition returned when a remove rule matches.
var SkipNode = Disposition{Skip: true}

// Representation converts a non-skipped Disposition back to a
// NodeRepresentation for encoding.
func (d Disposition) Representation() NodeRepresentation {
	return NodeRepresentation{Name: d.Name, Value: d.Value, HasValue: d.HasValue}
}
