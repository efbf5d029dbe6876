package region

import (
	"sort"

	"github.com/arch-sim/simhound/models"
)

// SamplePrepass implements spec 4.3 step 3: before per-file extraction,
// sample the top-5 largest files per language, compute a preliminary
// chunk-kind frequency table, and mark kinds over 50% as over-frequent so
// the per-file frequency filter can use a stricter 30% threshold for them
// on every subsequent file. Grounded in original_source's chunk-statistics
// pass, which computes this table once per run rather than per file.
func SamplePrepass(files []*models.SourceFile, minLines int) map[models.Language]map[string]struct{} {
	byLang := make(map[models.Language][]*models.SourceFile)
	for _, f := range files {
		byLang[f.Language] = append(byLang[f.Language], f)
	}

	result := make(map[models.Language]map[string]struct{})
	for lang, langFiles := range byLang {
		sort.Slice(langFiles, func(i, j int) bool {
			return len(langFiles[i].Source) > len(langFiles[j].Source)
		})
		sampleSize := 5
		if len(langFiles) < sampleSize {
			sampleSize = len(langFiles)
		}
		counts := make(map[string]int)
		total := 0
		for _, f := range langFiles[:sampleSize] {
			for _, n := range collectCandidates(f.Root, minLines) {
				counts[n.Kind]++
				total++
			}
		}
		if total == 0 {
			continue
		}
		over := make(map[string]struct{})
		for kind, c := range counts {
			if float64(c)/float64(total) > 0.50 {
				over[kind] = struct{}{}
			}
		}
		if len(over) > 0 {
			result[lang] = over
		}
	}
	return result
}
