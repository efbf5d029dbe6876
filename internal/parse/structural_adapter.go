package parse

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/arch-sim/simhound/models"
)

// StructuralAdapter is the fallback parser for every language in the
// catalog that does not have a real grammar wired in (spec §1: grammars
// are an external collaborator; tree-sitter itself is out of scope). It
// recovers just enough structure — brace or indentation nesting, and a
// handful of header keywords — to let region extraction and statistical
// chunking operate, at coarser fidelity than a true AST. This is the seam
// a real tree-sitter binding would replace.
type StructuralAdapter struct {
	lang models.Language
}

// NewStructuralAdapter builds the fallback adapter for lang.
func NewStructuralAdapter(lang models.Language) StructuralAdapter {
	return StructuralAdapter{lang: lang}
}

var indentationLanguages = map[models.Language]bool{
	models.LanguagePython: true,
	models.LanguageRuby:   true,
}

// Parse implements Parser.
func (a StructuralAdapter) Parse(path string, source []byte) (*models.SourceFile, error) {
	normalized := bytes.ToValidUTF8(source, []byte{0xEF, 0xBF, 0xBD})
	lines := splitLinesWithOffsets(normalized)

	var root *models.Node
	if indentationLanguages[a.lang] {
		root = buildIndentationTree(a.lang, lines, len(normalized))
	} else {
		root = buildBraceTree(a.lang, lines, len(normalized))
	}
	return &models.SourceFile{Path: path, Language: a.lang, Source: normalized, Root: root}, nil
}

type lineInfo struct {
	text       string
	start, end int // byte offsets, end exclusive of the newline
	number     int // 1-indexed
}

func splitLinesWithOffsets(source []byte) []lineInfo {
	var out []lineInfo
	start := 0
	lineNo := 1
	for i, b := range source {
		if b == '\n' {
			out = append(out, lineInfo{text: string(source[start:i]), start: start, end: i, number: lineNo})
			start = i + 1
			lineNo++
		}
	}
	if start < len(source) {
		out = append(out, lineInfo{text: string(source[start:]), start: start, end: len(source), number: lineNo})
	}
	return out
}

var (
	classHeaderRe  = regexp.MustCompile(`^(public |private |protected |export |default )*\s*(class|interface|struct)\s+\w`)
	funcHeaderRe   = regexp.MustCompile(`^(export |default |async )*\s*function\b`)
	methodSigRe    = regexp.MustCompile(`^[\w<>\[\],\.\s\*&]+\s+\w+\s*\([^)]*\)\s*\{?\s*$`)
	pyDefRe        = regexp.MustCompile(`^\s*(async\s+)?def\s+\w`)
	pyClassRe      = regexp.MustCompile(`^\s*class\s+\w`)
	rubyDefRe      = regexp.MustCompile(`^\s*def\s+\w`)
	rubyClassRe    = regexp.MustCompile(`^\s*(class|module)\s+\w`)
)

func braceHeaderKind(trimmed string) string {
	switch {
	case classHeaderRe.MatchString(trimmed):
		return "class_declaration"
	case funcHeaderRe.MatchString(trimmed):
		return "function_declaration"
	case strings.Contains(trimmed, "{") && methodSigRe.MatchString(trimmed):
		return "method_definition"
	default:
		return "block"
	}
}

// buildBraceTree nests a "block" (or header-keyword-labeled) node per
// brace-delimited scope, with each non-header line inside becoming a
// leaf "statement" node carrying its trimmed text as Value.
func buildBraceTree(lang models.Language, lines []lineInfo, totalLen int) *models.Node {
	root := models.NewNode("source_file", models.ByteRange{Start: 0, End: totalLen}, models.LineRange{StartLine: 1, EndLine: maxLineNumber(lines)})

	type frame struct {
		node  *models.Node
		depth int
	}
	stack := []frame{{node: root, depth: 0}}
	depth := 0

	for _, l := range lines {
		trimmed := strings.TrimSpace(l.text)
		opens := strings.Count(l.text, "{")
		closes := strings.Count(l.text, "}")

		if trimmed == "" {
			continue
		}

		if opens > 0 {
			kind := braceHeaderKind(trimmed)
			node := models.NewNode(kind, models.ByteRange{Start: l.start, End: l.end}, models.LineRange{StartLine: l.number, EndLine: l.number})
			if kind == "block" {
				node.Value = trimmed
				node.HasValue = true
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
			depth += opens
			stack = append(stack, frame{node: node, depth: depth})
		} else {
			parent := stack[len(stack)-1].node
			leaf := models.NewNode("statement", models.ByteRange{Start: l.start, End: l.end}, models.LineRange{StartLine: l.number, EndLine: l.number})
			leaf.Value = trimmed
			leaf.HasValue = true
			parent.Children = append(parent.Children, leaf)
		}

		if closes > 0 {
			depth -= closes
			for len(stack) > 1 && stack[len(stack)-1].depth > depth {
				closed := stack[len(stack)-1]
				closed.node.Lines.EndLine = l.number
				closed.node.Bytes.End = l.end
				stack = stack[:len(stack)-1]
			}
		}
	}
	for len(stack) > 1 {
		closed := stack[len(stack)-1]
		closed.node.Lines.EndLine = lines[len(lines)-1].number
		stack = stack[:len(stack)-1]
	}
	return root
}

// buildIndentationTree nests a function/class block per Python/Ruby-style
// indentation: a header line (def/class/module) opens a block that
// extends until a later non-blank line's indentation is <= the header's.
func buildIndentationTree(lang models.Language, lines []lineInfo, totalLen int) *models.Node {
	root := models.NewNode("source_file", models.ByteRange{Start: 0, End: totalLen}, models.LineRange{StartLine: 1, EndLine: maxLineNumber(lines)})

	type frame struct {
		node   *models.Node
		indent int
	}
	stack := []frame{{node: root, indent: -1}}

	for _, l := range lines {
		trimmed := strings.TrimSpace(l.text)
		if trimmed == "" {
			continue
		}
		indent := indentWidth(l.text)

		for len(stack) > 1 && indent <= stack[len(stack)-1].indent {
			closed := stack[len(stack)-1]
			closed.node.Lines.EndLine = prevNonBlankLine(lines, l.number)
			stack = stack[:len(stack)-1]
		}

		kind := indentHeaderKind(lang, trimmed)
		parent := stack[len(stack)-1].node
		if kind != "" {
			node := models.NewNode(kind, models.ByteRange{Start: l.start, End: l.end}, models.LineRange{StartLine: l.number, EndLine: l.number})
			parent.Children = append(parent.Children, node)
			stack = append(stack, frame{node: node, indent: indent})
		} else {
			leaf := models.NewNode("statement", models.ByteRange{Start: l.start, End: l.end}, models.LineRange{StartLine: l.number, EndLine: l.number})
			leaf.Value = trimmed
			leaf.HasValue = true
			parent.Children = append(parent.Children, leaf)
		}
	}
	for len(stack) > 1 {
		closed := stack[len(stack)-1]
		closed.node.Lines.EndLine = lines[len(lines)-1].number
		stack = stack[:len(stack)-1]
	}
	return root
}

func indentHeaderKind(lang models.Language, trimmed string) string {
	if lang == models.LanguageRuby {
		switch {
		case rubyClassRe.MatchString(trimmed):
			return "class_definition"
		case rubyDefRe.MatchString(trimmed):
			return "function_definition"
		}
		return ""
	}
	switch {
	case pyClassRe.MatchString(trimmed):
		return "class_definition"
	case pyDefRe.MatchString(trimmed):
		return "function_definition"
	}
	return ""
}

func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 8
		default:
			return w
		}
	}
	return w
}

func prevNonBlankLine(lines []lineInfo, before int) int {
	last := before - 1
	for _, l := range lines {
		if l.number < before && strings.TrimSpace(l.text) != "" {
			last = l.number
		}
	}
	return last
}

func maxLineNumber(lines []lineInfo) int {
	if len(lines) == 0 {
		return 1
	}
	return lines[len(lines)-1].number
}
