// Package pipeline orchestrates the full two-pass similarity scan (C8):
// parse -> region extraction -> shingle -> MinHash for every file, LSH
// grouping over the resulting region signatures, then a second pass that
// windows whatever line ranges the first pass left unmatched and groups
// those too. It ties every stage package together; within this module only
// cmd imports it.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arch-sim/simhound/engine"
	"github.com/arch-sim/simhound/internal/cache"
	"github.com/arch-sim/simhound/internal/parse"
	"github.com/arch-sim/simhound/internal/source"
	"github.com/arch-sim/simhound/lsh"
	"github.com/arch-sim/simhound/minhash"
	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/region"
	"github.com/arch-sim/simhound/rules"
	"github.com/arch-sim/simhound/shingle"
	"github.com/arch-sim/simhound/window"
)

// Orchestrator runs a scan over a fixed set of files with a fixed
// Config, optionally read-through caching per-region signatures in
// Cache. Cache and Logger are both optional; a nil Logger uses zap.NewNop.
type Orchestrator struct {
	Config models.Config
	Cache  *cache.SignatureCache
	Namespace cache.Namespace
	Logger *zap.Logger
}

// New builds an Orchestrator with cfg and no cache, logging to a no-op
// logger. Use the struct literal directly to set Cache/Namespace/Logger.
func New(cfg models.Config) *Orchestrator {
	return &Orchestrator{Config: cfg, Logger: zap.NewNop()}
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// fileResult is what per-file worker goroutines hand back to Run.
type fileResult struct {
	path      string
	language  models.Language
	lineCount int
	regions   []models.RegionSignature
}

// Run parses and scans every path in files, returning the complete
// similarity result: every signature computed, every similar group found
// (region-level and line-level), and every file that failed to parse.
// Run never returns an error for a per-file failure — those are recorded
// in SimilarityResult.FailedFiles (spec's "errors as data" policy) — only
// for a condition that makes the whole run meaningless (e.g. the rule
// catalog itself fails to compile).
func (o *Orchestrator) Run(files []string) (*models.SimilarityResult, error) {
	catalog := rules.Default()
	ruleList := catalog.ForRuleset(o.Config.Ruleset)
	if _, err := engine.New(ruleList); err != nil {
		return nil, fmt.Errorf("pipeline: rule catalog: %w", err)
	}

	sourceFiles, failedFiles := o.parseAll(files)
	o.logger().Debug("parsed files", zap.Int("total", len(files)), zap.Int("parsed", len(sourceFiles)), zap.Int("failed", len(failedFiles)))
	overFrequent := region.SamplePrepass(sourceFiles, o.Config.MinLines)

	results := o.extractAndSketch(sourceFiles, catalog, ruleList, overFrequent, failedFiles)

	result := models.NewSimilarityResult()
	for path, errMsg := range failedFiles {
		result.FailedFiles[path] = errMsg
	}

	allRegionSigs := lo.FlatMap(results, func(r fileResult, _ int) []models.RegionSignature { return r.regions })
	result.Signatures = append(result.Signatures, allRegionSigs...)

	regionGroups := lsh.Group(allRegionSigs, lsh.Options{
		Threshold:     o.Config.RegionThreshold,
		MinSimilarity: o.Config.RegionMinSimilarity,
		Verify:        o.Config.VerifyOrderSensitive,
	})
	regionGroups = filterShortMembers(regionGroups, o.Config.MinLines)
	result.SimilarGroups = append(result.SimilarGroups, regionGroups...)

	windowSigs := o.linePass(sourceFiles, regionGroups)
	result.Signatures = append(result.Signatures, windowSigs...)

	lineGroups := lsh.Group(windowSigs, lsh.Options{
		Threshold:     o.Config.LineThreshold,
		MinSimilarity: o.Config.LineMinSimilarity,
		Verify:        o.Config.VerifyOrderSensitive,
	})
	for _, g := range lineGroups {
		merged, ok := window.MergeOverlapping(g, o.Config.MergeGapLines)
		if ok {
			result.SimilarGroups = append(result.SimilarGroups, merged)
		}
	}

	o.logger().Info("scan complete",
		zap.Int("signatures", len(result.Signatures)),
		zap.Int("groups", len(result.SimilarGroups)),
		zap.Int("failed_files", len(result.FailedFiles)))
	return result, nil
}

// filterShortMembers drops any region group containing a member shorter
// than minLines (spec 4.8 step 3): region-level groups built from a
// trivially small region are noise the line pass already covers properly
// windowed.
func filterShortMembers(groups []models.SimilarRegionGroup, minLines int) []models.SimilarRegionGroup {
	if minLines <= 0 {
		return groups
	}
	out := groups[:0:0]
	for _, g := range groups {
		short := false
		for _, r := range g.Regions {
			if r.Lines.EndLine-r.Lines.StartLine+1 < minLines {
				short = true
				break
			}
		}
		if !short {
			out = append(out, g)
		}
	}
	return out
}

// parseAll reads and parses every file concurrently, bounded by
// GOMAXPROCS workers (spec's per-file worker-pool requirement).
func (o *Orchestrator) parseAll(files []string) ([]*models.SourceFile, map[string]string) {
	var mu sync.Mutex
	sourceFiles := make([]*models.SourceFile, 0, len(files))
	failed := make(map[string]string)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range files {
		path := path
		g.Go(func() error {
			data, err := source.ReadFile(path)
			if err != nil {
				mu.Lock()
				failed[path] = err.Error()
				mu.Unlock()
				return nil
			}
			sf, err := parse.ParseFile(path, data)
			if err != nil {
				mu.Lock()
				failed[path] = err.Error()
				mu.Unlock()
				return nil
			}
			mu.Lock()
			sourceFiles = append(sourceFiles, sf)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return sourceFiles, failed
}

// extractAndSketch runs region extraction, shingling, and MinHash
// sketching for every parsed file concurrently. Each worker builds its
// own engine.Engine, honoring the "one rule-engine instance per worker"
// requirement (an Engine's counters/matchCache are not goroutine-safe).
func (o *Orchestrator) extractAndSketch(
	sourceFiles []*models.SourceFile,
	catalog *rules.Catalog,
	ruleList []models.Rule,
	overFrequent map[models.Language]map[string]struct{},
	failed map[string]string,
) []fileResult {
	var mu sync.Mutex
	var out []fileResult
	sketcher := minhash.New(o.Config.MinHashNumPerm)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, sf := range sourceFiles {
		sf := sf
		g.Go(func() error {
			eng, err := engine.New(ruleList)
			if err != nil {
				mu.Lock()
				failed[sf.Path] = err.Error()
				mu.Unlock()
				return nil
			}
			eng.PrecomputeQueries(sf.Root, sf.Language)

			explicit, err := region.ExtractExplicit(eng, catalog, sf)
			if err != nil {
				mu.Lock()
				failed[sf.Path] = err.Error()
				mu.Unlock()
				return nil
			}
			opts := region.DefaultChunkOptions(o.Config.MinLines)
			opts.OverFrequent = overFrequent[sf.Language]
			statistical := region.ExtractStatistical(sf, opts)
			merged := region.Dedup(explicit, statistical)

			shingler := shingle.New(eng, o.Config.ShingleK, o.Config.MaxValueLength)

			fileSpan := models.LineRange{StartLine: 1, EndLine: sf.LineCount()}
			res := fileResult{path: sf.Path, language: sf.Language, lineCount: sf.LineCount()}
			for _, ext := range merged {
				if ext.Region.Lines == fileSpan {
					// whole-file regions are left for the line pass (spec 4.8 step 3)
					continue
				}
				eng.ResetIdentifiers()
				sr := shingler.ShingleExtracted(ext, sf.Language, nil)
				regSig := o.sketch(sr, ext.Region, sketcher)
				res.regions = append(res.regions, regSig)
			}

			mu.Lock()
			out = append(out, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// sketch turns a ShingledRegion into a RegionSignature, read-through
// caching it when o.Cache is configured. The cache key is the region's
// own (path, line range) rather than the whole file, so editing one
// function in a large file doesn't invalidate its siblings' cache entries.
func (o *Orchestrator) sketch(sr models.ShingledRegion, reg models.Region, sketcher *minhash.Sketcher) models.RegionSignature {
	contentHash := shingleContentHash(sr)
	cacheKey := fmt.Sprintf("%s:%d-%d", reg.Path, reg.Lines.StartLine, reg.Lines.EndLine)

	if o.Cache != nil {
		if sig, ok, err := o.Cache.Get(o.Namespace, cacheKey, contentHash); err == nil && ok {
			return models.RegionSignature{Region: reg, Signature: sig, ShingleCount: len(sr.Shingles), Shingles: sr.Shingles}
		}
	}

	sig := sketcher.Sketch(sr.ContentSet())
	if o.Cache != nil {
		_ = o.Cache.Put(o.Namespace, cacheKey, contentHash, sig, len(sr.Shingles))
	}
	return models.RegionSignature{Region: reg, Signature: sig, ShingleCount: len(sr.Shingles), Shingles: sr.Shingles}
}

func shingleContentHash(sr models.ShingledRegion) string {
	var buf []byte
	for _, s := range sr.Shingles {
		buf = append(buf, s.Content...)
		buf = append(buf, 0)
	}
	return cache.ContentHash(buf)
}
