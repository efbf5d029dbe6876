// Package source provides cached, on-demand source-line retrieval for a
// models.SourceFile, kept separate from models so callers that only need
// line slices (CLI rendering) don't carry parsing concerns.
package source

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/arch-sim/simhound/models"
)

// Reader caches a file's lines on first access so repeated region lookups
// within one run (CLI rendering of many groups touching the same file)
// don't re-read from disk.
type Reader struct {
	mu    sync.RWMutex
	cache map[string][]string
}

// NewReader returns an empty Reader.
func NewReader() *Reader {
	return &Reader{cache: make(map[string][]string)}
}

// Region returns the lines spanned by r within path, 1-indexed inclusive.
func (rd *Reader) Region(path string, r models.LineRange) ([]string, error) {
	lines, err := rd.lines(path)
	if err != nil {
		return nil, err
	}
	start, end := r.StartLine, r.EndLine
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return nil, nil
	}
	return lines[start-1 : end], nil
}

func (rd *Reader) lines(path string) ([]string, error) {
	rd.mu.RLock()
	if lines, ok := rd.cache[path]; ok {
		rd.mu.RUnlock()
		return lines, nil
	}
	rd.mu.RUnlock()

	rd.mu.Lock()
	defer rd.mu.Unlock()
	if lines, ok := rd.cache[path]; ok {
		return lines, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("source: scan %s: %w", path, err)
	}
	rd.cache[path] = lines
	return lines, nil
}

// Clear discards every cached file's lines.
func (rd *Reader) Clear() {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	rd.cache = make(map[string][]string)
}

// ReadFile reads an entire file's bytes, used by the pipeline to load each
// file before handing it to the parse adapters.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	return data, nil
}
