package parse

import (
	"bytes"
	"fmt"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/arch-sim/simhound/models"
)

// MarkdownAdapter parses markdown with goldmark, the one place this
// module's catalog gets a real, richly-typed AST from a third-party
// grammar rather than a structural fallback (grounded in the teacher's
// markdown extractor, which also uses goldmark).
type MarkdownAdapter struct{}

// Parse implements Parser.
func (MarkdownAdapter) Parse(path string, source []byte) (*models.SourceFile, error) {
	normalized := bytes.ToValidUTF8(source, []byte{0xEF, 0xBF, 0xBD})
	doc := parser.NewParser(
		parser.WithBlockParsers(parser.DefaultBlockParsers()...),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	).Parse(text.NewReader(normalized))

	lineStarts := computeLineStarts(normalized)
	conv := &markdownConverter{source: normalized, lineStarts: lineStarts}
	root := conv.convert(doc)
	return &models.SourceFile{Path: path, Language: models.LanguageMarkdown, Source: normalized, Root: root}, nil
}

type linesProvider interface {
	Lines() *text.Segments
}

type markdownConverter struct {
	source     []byte
	lineStarts []int
}

func computeLineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (c *markdownConverter) lineOf(offset int) int {
	lo, hi := 0, len(c.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1 // 1-indexed
}

func (c *markdownConverter) convert(root gast.Node) *models.Node {
	var stack []*models.Node
	var built *models.Node

	gast.Walk(root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			return gast.WalkContinue, nil
		}
		node := c.toNode(n)
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		} else {
			built = node
		}
		stack = append(stack, node)
		return gast.WalkContinue, nil
	})
	if built == nil {
		built = models.NewNode("document", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	}
	return built
}

func (c *markdownConverter) toNode(n gast.Node) *models.Node {
	start, end := c.byteRangeOf(n)
	lines := models.LineRange{StartLine: c.lineOf(start), EndLine: c.lineOf(maxInt(end-1, start))}
	if !lines.Valid() {
		lines = models.LineRange{StartLine: lines.StartLine, EndLine: lines.StartLine}
	}

	kind := markdownKind(n)
	node := models.NewNode(kind, models.ByteRange{Start: start, End: end}, lines)

	if value, ok := c.inlineValue(n); ok {
		node.Value = value
		node.HasValue = true
	}
	return node
}

func (c *markdownConverter) byteRangeOf(n gast.Node) (int, int) {
	if lp, ok := n.(linesProvider); ok {
		segs := lp.Lines()
		if segs != nil && segs.Len() > 0 {
			first := segs.At(0)
			last := segs.At(segs.Len() - 1)
			return first.Start, last.Stop
		}
	}
	return 0, 0
}

func (c *markdownConverter) inlineValue(n gast.Node) (string, bool) {
	switch v := n.(type) {
	case *gast.Text:
		return string(v.Segment.Value(c.source)), true
	case *gast.String:
		return string(v.Value), true
	}
	return "", false
}

// markdownKind maps a goldmark node to the region-extraction vocabulary
// the rule catalog expects for markdown ("heading", "fenced_code_block"),
// falling back to the node kind's own name for everything else.
func markdownKind(n gast.Node) string {
	switch n.Kind() {
	case gast.KindHeading:
		return "heading"
	case gast.KindFencedCodeBlock:
		return "fenced_code_block"
	case gast.KindCodeBlock:
		return "code_block"
	case gast.KindDocument:
		return "document"
	default:
		return fmt.Sprintf("md_%s", n.Kind().String())
	}
}
