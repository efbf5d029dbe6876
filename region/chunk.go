package region

import (
	"sort"

	"github.com/arch-sim/simhound/models"
)

// ChunkOptions parameterizes statistical auto-chunking (spec 4.3 step 2).
type ChunkOptions struct {
	MinLines      int
	MaxFreq       float64 // drop a kind exceeding this share of all chunks (default 0.40)
	Percentile    float64 // keep chunks at/above this size percentile (default 30)
	FileRatioMax  float64 // 0 disables the filter; otherwise chunk_lines/file_lines must not exceed this
	IgnoreKinds   map[string]struct{}
	OverFrequent  map[string]struct{} // kinds flagged by the sample pre-pass; lowers MaxFreq to 0.30 for them
}

// DefaultChunkOptions mirrors the defaults spec 4.3 names.
func DefaultChunkOptions(minLines int) ChunkOptions {
	return ChunkOptions{
		MinLines:   minLines,
		MaxFreq:    0.40,
		Percentile: 30,
	}
}

func lineSpan(n *models.Node) int {
	return n.Lines.EndLine - n.Lines.StartLine + 1
}

// collectCandidates walks the tree picking, for each branch, the most
// specific node whose line span is >= minLines with no child also
// qualifying — the "leaf node (no chunk-sized children)" rule of 4.3.
func collectCandidates(n *models.Node, minLines int) []*models.Node {
	if lineSpan(n) < minLines {
		return nil
	}
	var childCandidates []*models.Node
	hasBigChild := false
	for _, c := range n.Children {
		if lineSpan(c) >= minLines {
			hasBigChild = true
		}
		childCandidates = append(childCandidates, collectCandidates(c, minLines)...)
	}
	if hasBigChild {
		return childCandidates
	}
	return []*models.Node{n}
}

// ExtractStatistical runs the four-filter chunk pipeline of spec 4.3 step
// 2 over a file's AST and returns the surviving chunks as Extracted
// regions of kind "chunk".
func ExtractStatistical(file *models.SourceFile, opts ChunkOptions) []Extracted {
	candidates := collectCandidates(file.Root, opts.MinLines)
	if len(candidates) == 0 {
		return nil
	}

	candidates = filterIgnoreKinds(candidates, opts.IgnoreKinds)
	candidates = filterFrequency(candidates, opts.MaxFreq, opts.OverFrequent)
	candidates = filterPercentile(candidates, opts.Percentile)
	if opts.FileRatioMax > 0 {
		candidates = filterFileRatio(candidates, file.LineCount(), opts.FileRatioMax)
	}

	out := make([]Extracted, 0, len(candidates))
	for _, n := range candidates {
		reg, err := models.NewRegion(file.Path, file.Language, models.RegionChunk, nodeName(n, file), n.Lines)
		if err != nil {
			continue
		}
		out = append(out, Extracted{Region: reg, Node: n})
	}
	return out
}

func filterIgnoreKinds(nodes []*models.Node, ignore map[string]struct{}) []*models.Node {
	if len(ignore) == 0 {
		return nodes
	}
	out := nodes[:0:0]
	for _, n := range nodes {
		if _, dropped := ignore[n.Kind]; !dropped {
			out = append(out, n)
		}
	}
	return out
}

// filterFrequency drops chunks of a kind that accounts for more than
// maxFreq of the total, unless fewer than 10 chunks exist in total (spec
// 4.3). A kind flagged by the sample pre-pass uses 0.30 instead of maxFreq.
func filterFrequency(nodes []*models.Node, maxFreq float64, overFrequent map[string]struct{}) []*models.Node {
	if len(nodes) < 10 {
		return nodes
	}
	counts := make(map[string]int, len(nodes))
	for _, n := range nodes {
		counts[n.Kind]++
	}
	total := len(nodes)
	out := nodes[:0:0]
	for _, n := range nodes {
		threshold := maxFreq
		if _, flagged := overFrequent[n.Kind]; flagged {
			threshold = 0.30
		}
		if float64(counts[n.Kind])/float64(total) > threshold {
			continue
		}
		out = append(out, n)
	}
	return out
}

// filterPercentile keeps chunks whose line span is at or above the given
// percentile of all candidate sizes (default 30th, spec 4.3).
func filterPercentile(nodes []*models.Node, percentile float64) []*models.Node {
	if len(nodes) == 0 {
		return nodes
	}
	sizes := make([]int, len(nodes))
	for i, n := range nodes {
		sizes[i] = lineSpan(n)
	}
	sorted := append([]int(nil), sizes...)
	sort.Ints(sorted)
	idx := int(percentile / 100 * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	cutoff := sorted[idx]

	out := nodes[:0:0]
	for _, n := range nodes {
		if lineSpan(n) >= cutoff {
			out = append(out, n)
		}
	}
	return out
}

// filterFileRatio bounds a chunk's size as a fraction of the file's total
// line count.
func filterFileRatio(nodes []*models.Node, fileLines int, ratioMax float64) []*models.Node {
	if fileLines == 0 {
		return nodes
	}
	out := nodes[:0:0]
	for _, n := range nodes {
		if float64(lineSpan(n))/float64(fileLines) <= ratioMax {
			out = append(out, n)
		}
	}
	return out
}
