// Package files walks a directory tree and lists the source files a scan
// should consider, skipping paths that match doublestar glob patterns from
// config or from any .simhoundignore files discovered along the way.
// Patterns are matched against root-relative paths; .gitignore-style
// negation and match-at-any-depth for bare names are not supported.
package files

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arch-sim/simhound/internal/parse"
)

// IgnoreFileName is the per-directory override file this module honors in
// addition to any patterns passed in via config, mirroring the
// find_ignore_files/parse_ignore_file convention of the system this module
// reimplements.
const IgnoreFileName = ".simhoundignore"

var alwaysSkipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	".hg":          true,
	".svn":         true,
}

// Find walks rootDir and returns every file with a registered parser
// extension, skipping paths matched by patterns or by any
// .simhoundignore file found in an ancestor directory between rootDir and
// the file. Patterns and ignore-file entries are relative to rootDir.
func Find(rootDir string, patterns []string) ([]string, error) {
	ignoreFilePatterns, err := loadIgnoreFiles(rootDir)
	if err != nil {
		return nil, err
	}
	all := append(append([]string{}, patterns...), ignoreFilePatterns...)

	var out []string
	err = filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if path != rootDir && (alwaysSkipDirs[info.Name()] || strings.HasPrefix(info.Name(), ".")) {
				return filepath.SkipDir
			}
			if matchesAny(all, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(all, rel) {
			return nil
		}
		if _, _, ok := parse.Default().ForPath(path); ok {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		// A bare directory-style pattern ("build/") should also match
		// anything nested under it, the way .gitignore treats a pattern
		// with no glob metacharacters as a path prefix.
		if strings.HasSuffix(p, "/") && strings.HasPrefix(rel+"/", p) {
			return true
		}
	}
	return false
}

// loadIgnoreFiles reads every .simhoundignore found under root, returning
// each non-blank, non-comment line as a doublestar pattern relative to
// root (the ignore file's own directory is prefixed on, so a pattern
// written inside a subdirectory still resolves against root-relative
// walk paths).
func loadIgnoreFiles(root string) ([]string, error) {
	var patterns []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || info.Name() != IgnoreFileName {
			return nil
		}
		dir, relErr := filepath.Rel(root, filepath.Dir(path))
		if relErr != nil {
			dir = ""
		}
		lines, parseErr := parseIgnoreFile(path)
		if parseErr != nil {
			return parseErr
		}
		for _, l := range lines {
			if dir != "." && dir != "" {
				l = filepath.ToSlash(filepath.Join(dir, l))
			}
			patterns = append(patterns, l)
		}
		return nil
	})
	return patterns, err
}

func parseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
