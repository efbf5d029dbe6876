package parse

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/arch-sim/simhound/models"
)

// GoAdapter parses Go source with the standard library's own parser and
// converts the resulting go/ast tree into a models.Node tree. Go is the
// one language in this module's catalog where a real, dependency-free
// grammar is available without reaching for an external tree-sitter
// binding, so it gets a full conversion instead of the structural
// fallback every other language uses.
type GoAdapter struct{}

// Parse implements Parser.
func (GoAdapter) Parse(path string, source []byte) (*models.SourceFile, error) {
	fset := token.NewFileSet()
	normalized := bytes.ToValidUTF8(source, []byte{0xEF, 0xBF, 0xBD})
	file, err := parser.ParseFile(fset, path, normalized, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("go source: %w", err)
	}

	conv := &goConverter{fset: fset, source: normalized}
	root := conv.convert(file)
	return &models.SourceFile{Path: path, Language: models.LanguageGo, Source: normalized, Root: root}, nil
}

type goConverter struct {
	fset   *token.FileSet
	source []byte
}

// convert walks an ast.Node with ast.Walk's own traversal, building a
// parallel models.Node tree via a stack that mirrors the push/nil-pop
// protocol of ast.Inspect.
func (c *goConverter) convert(root ast.Node) *models.Node {
	var stack []*models.Node
	var built *models.Node

	ast.Inspect(root, func(n ast.Node) bool {
		if n == nil {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			return true
		}
		node := c.toNode(n)
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		} else {
			built = node
		}
		stack = append(stack, node)
		return true
	})
	return built
}

func (c *goConverter) toNode(n ast.Node) *models.Node {
	startPos := c.fset.Position(n.Pos())
	endPos := c.fset.Position(n.End())
	byteRange := models.ByteRange{Start: startPos.Offset, End: endPos.Offset}
	lineRange := models.LineRange{StartLine: startPos.Line, EndLine: endPos.Line}
	if lineRange.EndLine < lineRange.StartLine {
		lineRange.EndLine = lineRange.StartLine
	}

	kind, value, hasValue := goNodeLabel(n)
	node := models.NewNode(kind, byteRange, lineRange)
	node.Value = value
	node.HasValue = hasValue
	return node
}

// goNodeLabel maps a go/ast node to a shingle-friendly (kind, value)
// pair, mirroring the function/type/field vocabulary the rule catalog's
// Go region-extraction table expects ("function_declaration",
// "method_declaration", "type_declaration").
func goNodeLabel(n ast.Node) (kind string, value string, hasValue bool) {
	switch v := n.(type) {
	case *ast.FuncDecl:
		if v.Recv != nil {
			return "method_declaration", "", false
		}
		return "function_declaration", "", false
	case *ast.GenDecl:
		if v.Tok == token.TYPE {
			return "type_declaration", "", false
		}
		return "gen_decl_" + v.Tok.String(), "", false
	case *ast.Ident:
		return "identifier", v.Name, true
	case *ast.BasicLit:
		return basicLitKind(v.Kind), v.Value, true
	case *ast.Comment:
		return "comment", v.Text, true
	case *ast.CommentGroup:
		return "comment_group", "", false
	case *ast.ImportSpec:
		return "import_spec", "", false
	case *ast.BlockStmt:
		return "statement_block", "", false
	case *ast.IfStmt:
		return "if_statement", "", false
	case *ast.ForStmt:
		return "for_statement", "", false
	case *ast.RangeStmt:
		return "range_statement", "", false
	case *ast.ReturnStmt:
		return "return_statement", "", false
	case *ast.AssignStmt:
		return "assignment", "", false
	case *ast.BinaryExpr:
		return "binary_expr_" + v.Op.String(), "", false
	case *ast.CallExpr:
		return "call_expression", "", false
	case *ast.SelectorExpr:
		return "property_identifier", "", false
	case *ast.CompositeLit:
		return "dictionary", "", false
	case *ast.ArrayType:
		return "list", "", false
	case *ast.StructType:
		return "struct_type", "", false
	case *ast.InterfaceType:
		return "interface_type", "", false
	case *ast.File:
		return "source_file", "", false
	default:
		return fmt.Sprintf("%T", n), "", false
	}
}

func basicLitKind(tok token.Token) string {
	switch tok {
	case token.INT:
		return "integer"
	case token.FLOAT:
		return "float"
	case token.STRING, token.CHAR:
		return "string"
	default:
		return "literal"
	}
}
