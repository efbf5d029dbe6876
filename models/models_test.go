package models_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/models"
)

func TestLineRangeValid(t *testing.T) {
	require.True(t, models.LineRange{StartLine: 1, EndLine: 1}.Valid())
	require.True(t, models.LineRange{StartLine: 1, EndLine: 5}.Valid())
	require.False(t, models.LineRange{StartLine: 0, EndLine: 5}.Valid())
	require.False(t, models.LineRange{StartLine: 5, EndLine: 1}.Valid())
}

func TestLineRangeContains(t *testing.T) {
	outer := models.LineRange{StartLine: 1, EndLine: 10}
	require.True(t, outer.Contains(models.LineRange{StartLine: 2, EndLine: 9}))
	require.True(t, outer.Contains(outer))
	require.False(t, outer.Contains(models.LineRange{StartLine: 1, EndLine: 11}))
	require.False(t, outer.Contains(models.LineRange{StartLine: 0, EndLine: 5}))
}

func TestLineRangeOverlaps(t *testing.T) {
	a := models.LineRange{StartLine: 1, EndLine: 5}
	require.True(t, a.Overlaps(models.LineRange{StartLine: 5, EndLine: 10}))
	require.True(t, a.Overlaps(models.LineRange{StartLine: 2, EndLine: 3}))
	require.False(t, a.Overlaps(models.LineRange{StartLine: 6, EndLine: 10}))
}

func TestRegionSameFileOverlap(t *testing.T) {
	a, err := models.NewRegion("a.go", models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: 1, EndLine: 10})
	require.NoError(t, err)
	sameFileOverlap, err := models.NewRegion("a.go", models.LanguageGo, models.RegionFunction, "g", models.LineRange{StartLine: 8, EndLine: 15})
	require.NoError(t, err)
	sameFileNoOverlap, err := models.NewRegion("a.go", models.LanguageGo, models.RegionFunction, "h", models.LineRange{StartLine: 20, EndLine: 25})
	require.NoError(t, err)
	otherFile, err := models.NewRegion("b.go", models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: 1, EndLine: 10})
	require.NoError(t, err)

	require.True(t, a.SameFileOverlap(sameFileOverlap))
	require.False(t, a.SameFileOverlap(sameFileNoOverlap))
	require.False(t, a.SameFileOverlap(otherFile))
}

func TestNewRegionRejectsInvalidLineRange(t *testing.T) {
	_, err := models.NewRegion("a.go", models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: 10, EndLine: 1})
	require.Error(t, err)
}

func TestNewRegionDefaultsAnonymousName(t *testing.T) {
	r, err := models.NewRegion("a.go", models.LanguageGo, models.RegionChunk, "", models.LineRange{StartLine: 1, EndLine: 5})
	require.NoError(t, err)
	require.Equal(t, models.AnonymousName, r.Name)
}

func TestRegionKeyIdentity(t *testing.T) {
	a, err := models.NewRegion("a.go", models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: 1, EndLine: 5})
	require.NoError(t, err)
	b, err := models.NewRegion("a.go", models.LanguageGo, models.RegionChunk, "anonymous", models.LineRange{StartLine: 1, EndLine: 5})
	require.NoError(t, err)
	require.Equal(t, a.Key(), b.Key(), "identity is (path, start, end) regardless of kind/name")
}

func TestNodeNameChildPrefersFieldName(t *testing.T) {
	named := models.NewNode("identifier", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	named.SetFieldName("name")
	other := models.NewNode("identifier", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	parent := models.NewNode("function_declaration", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1}, other, named)

	child, ok := parent.NameChild()
	require.True(t, ok)
	require.Same(t, named, child)
}

func TestNodeNameChildFallsBackToKind(t *testing.T) {
	ident := models.NewNode("identifier", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	parent := models.NewNode("function_declaration", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1}, ident)

	child, ok := parent.NameChild()
	require.True(t, ok)
	require.Same(t, ident, child)
}

func TestNodeWalkCanPruneSubtree(t *testing.T) {
	leaf := models.NewNode("leaf", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	skipped := models.NewNode("skip_me", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1}, leaf)
	root := models.NewNode("root", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1}, skipped)

	var visited []string
	root.Walk(func(n *models.Node, depth int) bool {
		visited = append(visited, n.Kind)
		return n.Kind != "skip_me"
	})
	require.Equal(t, []string{"root", "skip_me"}, visited, "returning false must stop descent into that subtree")
}

func TestNodeCount(t *testing.T) {
	leaf1 := models.NewNode("leaf", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	leaf2 := models.NewNode("leaf", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	root := models.NewNode("root", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1}, leaf1, leaf2)
	require.Equal(t, 3, root.Count())
}

func TestSourceFileLineCount(t *testing.T) {
	require.Equal(t, 0, (&models.SourceFile{Source: nil}).LineCount())
	require.Equal(t, 1, (&models.SourceFile{Source: []byte("one line")}).LineCount())
	require.Equal(t, 2, (&models.SourceFile{Source: []byte("one\ntwo")}).LineCount())
	require.Equal(t, 2, (&models.SourceFile{Source: []byte("one\ntwo\n")}).LineCount(), "trailing newline must not count as a third line")
}

func TestSourceFileTextClampsToBounds(t *testing.T) {
	f := &models.SourceFile{Source: []byte("hello world")}
	require.Equal(t, "hello", f.Text(models.ByteRange{Start: 0, End: 5}))
	require.Equal(t, "world", f.Text(models.ByteRange{Start: 6, End: 100}), "end past EOF must clamp rather than panic")
	require.Equal(t, "", f.Text(models.ByteRange{Start: -5, End: 0}))
}

func TestEstimateJaccard(t *testing.T) {
	a := models.MinHashSignature{Values: []uint64{1, 2, 3, 4}}
	b := models.MinHashSignature{Values: []uint64{1, 2, 9, 9}}
	require.Equal(t, 1.0, a.EstimateJaccard(a))
	require.InDelta(t, 0.5, a.EstimateJaccard(b), 1e-9)
}

func TestEstimateJaccardEmptyNeverSimilar(t *testing.T) {
	empty := models.MinHashSignature{Empty: true}
	nonEmpty := models.MinHashSignature{Values: []uint64{1, 2, 3}}
	require.Equal(t, 0.0, empty.EstimateJaccard(empty))
	require.Equal(t, 0.0, empty.EstimateJaccard(nonEmpty))
}

func TestEstimateJaccardMismatchedWidth(t *testing.T) {
	a := models.MinHashSignature{Values: []uint64{1, 2, 3}}
	b := models.MinHashSignature{Values: []uint64{1, 2}}
	require.Equal(t, 0.0, a.EstimateJaccard(b))
}

func TestLSHThresholdCapsAt98(t *testing.T) {
	require.Equal(t, 0.85, models.LSHThreshold(0.85))
	require.Equal(t, 0.98, models.LSHThreshold(0.999))
}

func TestConfigMinShinglesFloorsAtOne(t *testing.T) {
	c := models.DefaultConfig()
	c.MinLines = 5
	c.ShingleK = 3
	require.Equal(t, 1, c.MinShingles())

	c.MinLines = 30
	c.ShingleK = 3
	require.Equal(t, 10, c.MinShingles())
}
