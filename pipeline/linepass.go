package pipeline

import (
	"github.com/arch-sim/simhound/engine"
	"github.com/arch-sim/simhound/minhash"
	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/region"
	"github.com/arch-sim/simhound/rules"
	"github.com/arch-sim/simhound/shingle"
	"github.com/arch-sim/simhound/window"
)

// linePass is the scan's second pass (spec 4.7): for every source file,
// find the line ranges pass one's regions never covered, shingle just
// those ranges with a sliding window, and sketch each window so lsh.Group
// can find structurally similar "lines" regions that no rule-extracted
// region captured — duplicated glue code, ad hoc scripts, copy-pasted
// blocks with no named function around them.
//
// "Covered" here means a region that survived into a region-level
// SimilarRegionGroup (spec 4.7: "union of lines covered by every matched
// region"; spec 4.8 step 4: "compute matched lines from region groups") —
// not every region the extractor produced. A structurally unique region
// that never grouped with anything must stay eligible for the line pass,
// since a sub-range inside it can still duplicate an unstructured block
// elsewhere.
func (o *Orchestrator) linePass(sourceFiles []*models.SourceFile, regionGroups []models.SimilarRegionGroup) []models.RegionSignature {
	matchedByPath := make(map[string][]models.LineRange)
	for _, g := range regionGroups {
		for _, r := range g.Regions {
			matchedByPath[r.Path] = append(matchedByPath[r.Path], r.Lines)
		}
	}

	catalog := rules.Default()
	ruleList := catalog.ForRuleset(o.Config.Ruleset)
	sketcher := minhash.New(o.Config.MinHashNumPerm)

	var out []models.RegionSignature
	for _, sf := range sourceFiles {
		matched := matchedByPath[sf.Path]
		unmatched := window.UnmatchedRanges(sf.LineCount(), matched, o.Config.MinLines)
		if len(unmatched) == 0 {
			continue
		}

		eng, err := engine.New(ruleList)
		if err != nil {
			continue
		}
		eng.PrecomputeQueries(sf.Root, sf.Language)
		shingler := shingle.New(eng, o.Config.ShingleK, o.Config.MaxValueLength)

		for _, rng := range unmatched {
			rng := rng
			reg, err := models.NewRegion(sf.Path, sf.Language, models.RegionLines, "lines", rng)
			if err != nil {
				continue
			}
			eng.ResetIdentifiers()
			ext := region.Extracted{Region: reg, Node: sf.Root}
			sr := shingler.ShingleExtracted(ext, sf.Language, &rng)

			for _, w := range window.Windows(sr, o.Config.WindowSize, o.Config.WindowStride, o.Config.MinShingles()) {
				sig := sketcher.Sketch(w.ContentSet())
				out = append(out, models.RegionSignature{
					Region:       w.Region,
					Signature:    sig,
					ShingleCount: len(w.Shingles),
					Shingles:     w.Shingles,
				})
			}
		}
	}
	return out
}
