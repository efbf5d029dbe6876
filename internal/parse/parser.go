// Package parse provides the pluggable per-language parser seam. Real
// grammars (tree-sitter or otherwise) are an external collaborator per the
// core spec; this package supplies a Go-native adapter for .go sources
// (built on the standard library's own parser, since that one genuinely
// is "free"), a goldmark-based adapter for markdown, and a structural
// fallback for every other language the catalog names, pending a real
// grammar binding.
package parse

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arch-sim/simhound/models"
)

// Parser turns raw file bytes into a models.SourceFile. Implementations
// must replace invalid UTF-8 rather than fail (spec §6 "File I/O").
type Parser interface {
	Parse(path string, source []byte) (*models.SourceFile, error)
}

// Registry dispatches to a Parser by file extension, the same
// RWMutex-guarded map-registry shape the teacher uses for per-language
// extractor dispatch.
type Registry struct {
	mu      sync.RWMutex
	byExt   map[string]Parser
	langOf  map[string]models.Language
}

// NewRegistry returns an empty registry; use Default() for the
// process-wide instance pre-populated with every built-in adapter.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Parser), langOf: make(map[string]models.Language)}
}

// Register binds a Parser and its Language to a file extension (including
// the leading dot, e.g. ".go").
func (r *Registry) Register(ext string, lang models.Language, p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[ext] = p
	r.langOf[ext] = lang
}

// ForPath returns the Parser registered for path's extension, if any.
func (r *Registry) ForPath(path string) (Parser, models.Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := r.byExt[ext]
	if !ok {
		return nil, models.LanguageUnknown, false
	}
	return p, r.langOf[ext], true
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide Registry, built once on first use and
// populated with the adapters this module ships.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register(".go", models.LanguageGo, GoAdapter{})
		defaultRegistry.Register(".md", models.LanguageMarkdown, MarkdownAdapter{})
		defaultRegistry.Register(".markdown", models.LanguageMarkdown, MarkdownAdapter{})
		defaultRegistry.Register(".py", models.LanguagePython, NewStructuralAdapter(models.LanguagePython))
		defaultRegistry.Register(".js", models.LanguageJavaScript, NewStructuralAdapter(models.LanguageJavaScript))
		defaultRegistry.Register(".ts", models.LanguageTypeScript, NewStructuralAdapter(models.LanguageTypeScript))
		defaultRegistry.Register(".tsx", models.LanguageTSX, NewStructuralAdapter(models.LanguageTSX))
		defaultRegistry.Register(".jsx", models.LanguageJSX, NewStructuralAdapter(models.LanguageJSX))
		defaultRegistry.Register(".java", models.LanguageJava, NewStructuralAdapter(models.LanguageJava))
		defaultRegistry.Register(".kt", models.LanguageKotlin, NewStructuralAdapter(models.LanguageKotlin))
		defaultRegistry.Register(".rs", models.LanguageRust, NewStructuralAdapter(models.LanguageRust))
		defaultRegistry.Register(".rb", models.LanguageRuby, NewStructuralAdapter(models.LanguageRuby))
		defaultRegistry.Register(".cs", models.LanguageCSharp, NewStructuralAdapter(models.LanguageCSharp))
		defaultRegistry.Register(".sh", models.LanguageBash, NewStructuralAdapter(models.LanguageBash))
		defaultRegistry.Register(".sql", models.LanguageSQL, NewStructuralAdapter(models.LanguageSQL))
		defaultRegistry.Register(".css", models.LanguageCSS, NewStructuralAdapter(models.LanguageCSS))
		defaultRegistry.Register(".html", models.LanguageHTML, NewStructuralAdapter(models.LanguageHTML))
	})
	return defaultRegistry
}

// ParseFile looks up path's adapter in the default registry and parses it.
// An unsupported extension falls back to a single whole-file region with
// no normalization, per spec §7's "Language unsupported" policy, rather
// than failing the file.
func ParseFile(path string, source []byte) (*models.SourceFile, error) {
	p, lang, ok := Default().ForPath(path)
	if !ok {
		return wholeFileFallback(path, source), nil
	}
	sf, err := p.Parse(path, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %s: %w", path, err)
	}
	sf.Language = lang
	return sf, nil
}

func wholeFileFallback(path string, source []byte) *models.SourceFile {
	lines := countLines(source)
	root := models.NewNode("source_file", models.ByteRange{Start: 0, End: len(source)}, models.LineRange{StartLine: 1, EndLine: maxInt(lines, 1)})
	return &models.SourceFile{Path: path, Language: models.LanguageUnknown, Source: source, Root: root}
}

func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := 1
	for _, b := range source {
		if b == '\n' {
			n++
		}
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
