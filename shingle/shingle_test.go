package shingle_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/engine"
	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/region"
	"github.com/arch-sim/simhound/shingle"
)

func chain(lines ...models.LineRange) *models.Node {
	var build func(i int) *models.Node
	build = func(i int) *models.Node {
		n := models.NewNode("stmt", models.ByteRange{}, lines[i])
		if i+1 < len(lines) {
			n.Children = []*models.Node{build(i + 1)}
		}
		return n
	}
	return build(0)
}

func TestShingleLineRangeFromLastNode(t *testing.T) {
	root := chain(
		models.LineRange{StartLine: 1, EndLine: 1},
		models.LineRange{StartLine: 2, EndLine: 2},
		models.LineRange{StartLine: 3, EndLine: 3},
	)
	eng, err := engine.New(nil)
	require.NoError(t, err)
	eng.PrecomputeQueries(root, models.LanguageGo)

	s := shingle.New(eng, 3, 50)
	reg, _ := models.NewRegion("a.go", models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: 1, EndLine: 3})
	shingled := s.ShingleExtracted(region.Extracted{Region: reg, Node: root}, models.LanguageGo, nil)

	require.Len(t, shingled.Shingles, 1)
	require.Equal(t, 3, shingled.Shingles[0].LineRange.StartLine)
	require.Equal(t, 3, shingled.Shingles[0].LineRange.EndLine)
}

func TestShingleBelowKProducesNoShingles(t *testing.T) {
	root := chain(
		models.LineRange{StartLine: 1, EndLine: 1},
		models.LineRange{StartLine: 2, EndLine: 2},
	)
	eng, err := engine.New(nil)
	require.NoError(t, err)
	eng.PrecomputeQueries(root, models.LanguageGo)

	s := shingle.New(eng, 3, 50)
	reg, _ := models.NewRegion("a.go", models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: 1, EndLine: 2})
	shingled := s.ShingleExtracted(region.Extracted{Region: reg, Node: root}, models.LanguageGo, nil)

	require.Empty(t, shingled.Shingles, "a region with fewer than k nodes must produce zero shingles")
}

func TestTruncationPreservesDifferenceNotDrops(t *testing.T) {
	long := strings.Repeat("a", 60) + "DOC_ONE"
	longOther := strings.Repeat("a", 60) + "DOC_TWO"

	n1 := models.NewNode("string", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	n1.Value, n1.HasValue = long, true
	n2 := models.NewNode("string", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 1})
	n2.Value, n2.HasValue = longOther, true

	// Each needs k=1 shingling to compare encoded content directly.
	eng, err := engine.New(nil)
	require.NoError(t, err)

	eng.PrecomputeQueries(n1, models.LanguageGo)
	s := shingle.New(eng, 1, 50)
	reg, _ := models.NewRegion("a.go", models.LanguageGo, models.RegionLines, "anonymous", models.LineRange{StartLine: 1, EndLine: 1})
	out1 := s.ShingleExtracted(region.Extracted{Region: reg, Node: n1}, models.LanguageGo, nil)

	eng2, err := engine.New(nil)
	require.NoError(t, err)
	eng2.PrecomputeQueries(n2, models.LanguageGo)
	s2 := shingle.New(eng2, 1, 50)
	out2 := s2.ShingleExtracted(region.Extracted{Region: reg, Node: n2}, models.LanguageGo, nil)

	require.NotEqual(t, out1.Shingles[0].Content, out2.Shingles[0].Content,
		"truncation must preserve enough content that differing suffixes still diverge")
}
