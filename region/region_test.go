package region_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/engine"
	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/region"
	"github.com/arch-sim/simhound/rules"
)

func goFile(src string, root *models.Node) *models.SourceFile {
	return &models.SourceFile{Path: "a.go", Language: models.LanguageGo, Source: []byte(src), Root: root}
}

func TestExtractExplicit_NestedFunctionsRollUp(t *testing.T) {
	inner := models.NewNode("function_declaration", models.ByteRange{Start: 5, End: 10}, models.LineRange{StartLine: 2, EndLine: 3})
	outer := models.NewNode("function_declaration", models.ByteRange{Start: 0, End: 20}, models.LineRange{StartLine: 1, EndLine: 4}, inner)
	root := models.NewNode("source_file", models.ByteRange{Start: 0, End: 20}, models.LineRange{StartLine: 1, EndLine: 4}, outer)

	catalog := rules.Build()
	eng, err := engine.New(nil)
	require.NoError(t, err)

	extracted, err := region.ExtractExplicit(eng, catalog, goFile("package main", root))
	require.NoError(t, err)
	require.Len(t, extracted, 1, "nested function must roll up into its enclosing function's region")
	require.Equal(t, 1, extracted[0].Region.Lines.StartLine)
	require.Equal(t, 4, extracted[0].Region.Lines.EndLine)
}

func TestExtractExplicit_MethodSurvivesInsideClass(t *testing.T) {
	method := models.NewNode("method_declaration", models.ByteRange{Start: 5, End: 10}, models.LineRange{StartLine: 2, EndLine: 3})
	typeDecl := models.NewNode("type_declaration", models.ByteRange{Start: 0, End: 20}, models.LineRange{StartLine: 1, EndLine: 4})
	root := models.NewNode("source_file", models.ByteRange{Start: 0, End: 20}, models.LineRange{StartLine: 1, EndLine: 4}, typeDecl, method)

	catalog := rules.Build()
	eng, err := engine.New(nil)
	require.NoError(t, err)

	extracted, err := region.ExtractExplicit(eng, catalog, goFile("package main", root))
	require.NoError(t, err)
	require.Len(t, extracted, 2, "a method must remain a distinct region from its enclosing type")
}

func TestDedupPrefersExplicit(t *testing.T) {
	r1, _ := models.NewRegion("a.go", models.LanguageGo, models.RegionFunction, "f", models.LineRange{StartLine: 1, EndLine: 5})
	r2, _ := models.NewRegion("a.go", models.LanguageGo, models.RegionChunk, "anonymous", models.LineRange{StartLine: 1, EndLine: 5})
	explicit := []region.Extracted{{Region: r1}}
	statistical := []region.Extracted{{Region: r2}}

	merged := region.Dedup(explicit, statistical)
	require.Len(t, merged, 1)
	require.Equal(t, models.RegionFunction, merged[0].Region.Kind)
}

func TestChunkFrequencyFilterSkippedUnderTenChunks(t *testing.T) {
	// Nine identical-kind 6-line leaves: under the 10-chunk floor the
	// frequency filter must not fire even though one kind is 100%.
	var children []*models.Node
	for i := 0; i < 9; i++ {
		children = append(children, models.NewNode("statement_block", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 6}))
	}
	root := models.NewNode("source_file", models.ByteRange{}, models.LineRange{StartLine: 1, EndLine: 60}, children...)
	f := goFile("package main", root)

	out := region.ExtractStatistical(f, region.DefaultChunkOptions(5))
	require.Len(t, out, 9)
}
