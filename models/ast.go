// Package models holds the value types shared across the similarity
// pipeline: parsed source, AST nodes, regions, rules, shingles, MinHash
// signatures and the final result set.
package models

import "fmt"

// Language is a closed enumeration of the source languages the pipeline
// understands. Anything outside this set falls back to LanguageUnknown,
// which disables normalization but never blocks parsing.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJSX        Language = "jsx"
	LanguageJava       Language = "java"
	LanguageKotlin     Language = "kotlin"
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
	LanguageRuby       Language = "ruby"
	LanguageCSharp     Language = "csharp"
	LanguageBash       Language = "bash"
	LanguageSQL        Language = "sql"
	LanguageCSS        Language = "css"
	LanguageHTML       Language = "html"
	LanguageMarkdown   Language = "markdown"
	LanguageUnknown    Language = "unknown"
)

// LineRange is a 1-indexed, inclusive-at-both-ends line span.
type LineRange struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Valid reports whether the range respects the 1-indexed inclusive invariant.
func (r LineRange) Valid() bool {
	return r.StartLine >= 1 && r.StartLine <= r.EndLine
}

// Contains reports whether other lies entirely within r.
func (r LineRange) Contains(other LineRange) bool {
	return r.StartLine <= other.StartLine && other.EndLine <= r.EndLine
}

// Overlaps reports whether the two ranges share at least one line.
func (r LineRange) Overlaps(other LineRange) bool {
	return r.StartLine <= other.EndLine && other.StartLine <= r.EndLine
}

// ByteRange is a half-open [Start, End) byte span into SourceFile.Source.
type ByteRange struct {
	Start int
	End   int
}

// Contains reports whether other is fully nested inside r.
func (r ByteRange) Contains(other ByteRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Node is one element of the parsed AST. Children's byte ranges must be
// contained by their parent's; callers that build trees by hand (tests,
// adapters) are responsible for preserving that invariant since it is not
// re-validated on every read.
type Node struct {
	Kind      string
	Value     string
	HasValue  bool
	Bytes     ByteRange
	Lines     LineRange
	Children  []*Node
	fieldName string // the grammar field name the parent used for this child, if any
}

// NewNode constructs a leaf or interior node. Value/HasValue should be set
// directly on the returned pointer for leaf nodes that carry a literal.
func NewNode(kind string, bytes ByteRange, lines LineRange, children ...*Node) *Node {
	return &Node{Kind: kind, Bytes: bytes, Lines: lines, Children: children}
}

// FieldName returns the grammar field name under which the parent exposed
// this node (e.g. "name" for a function's identifier child), or "".
func (n *Node) FieldName() string { return n.fieldName }

// SetFieldName records the grammar field name; adapters call this while
// building a tree so NameChild can find it later without re-walking.
func (n *Node) SetFieldName(name string) { n.fieldName = name }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// NameChild returns the first child that looks like an identifier label —
// field name "name"/"identifier", or kind "identifier"/"property_identifier" —
// mirroring how function/class names are recovered from a generic grammar.
func (n *Node) NameChild() (*Node, bool) {
	for _, c := range n.Children {
		if c.fieldName == "name" || c.fieldName == "identifier" {
			return c, true
		}
	}
	for _, c := range n.Children {
		switch c.Kind {
		case "identifier", "property_identifier", "name":
			return c, true
		}
	}
	return nil, false
}

// Walk visits n and every descendant in pre-order, calling visit(node,
// depth). If visit returns false the subtree rooted at node is not
// descended into (but walking continues with siblings).
func (n *Node) Walk(visit func(node *Node, depth int) bool) {
	n.walk(0, visit)
}

func (n *Node) walk(depth int, visit func(*Node, int) bool) {
	if !visit(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(depth+1, visit)
	}
}

// Count returns the number of nodes in the subtree rooted at n, inclusive.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// SourceFile is the immutable result of parsing one file: its bytes, its
// language tag and its AST root. Invalid UTF-8 byte sequences are replaced
// at parse time, never rejected.
type SourceFile struct {
	Path     string
	Language Language
	Source   []byte
	Root     *Node
}

// LineCount returns the number of newline-delimited lines in Source, with a
// trailing partial line counted if non-empty.
func (f *SourceFile) LineCount() int {
	if len(f.Source) == 0 {
		return 0
	}
	n := 1
	for _, b := range f.Source {
		if b == '\n' {
			n++
		}
	}
	if len(f.Source) > 0 && f.Source[len(f.Source)-1] == '\n' {
		n--
	}
	return n
}

// Text returns the bytes spanned by r as a string, clamped to the file's
// own byte length so a slightly stale range never panics.
func (f *SourceFile) Text(r ByteRange) string {
	start, end := r.Start, r.End
	if start < 0 {
		start = 0
	}
	if end > len(f.Source) {
		end = len(f.Source)
	}
	if start > end {
		return ""
	}
	return string(f.Source[start:end])
}

func (n *Node) String() string {
	if n.HasValue {
		return fmt.Sprintf("%s(%s)", n.Kind, n.Value)
	}
	return n.Kind
}
