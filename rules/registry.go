package rules

import (
	"sort"
	"sync"

	"github.com/arch-sim/simhound/models"
)

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once

	extraMu    sync.RWMutex
	extraRules = map[models.Language][]models.Rule{}
)

// Default returns the process-wide singleton Catalog, built once on first
// use — the same lazy-singleton shape as the teacher's extractor registry.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = Build()
	})
	return defaultCatalog
}

// Register extends the default and loose rulesets of every Catalog with an
// additional rule scoped to lang, without mutating the shared slice
// concurrently — guarded by its own RWMutex exactly like the teacher's
// extractor registry guards its extension map. Intended for tests and
// future per-project rule overrides, not called on the hot path.
func Register(lang models.Language, rule models.Rule) {
	extraMu.Lock()
	defer extraMu.Unlock()
	extraRules[lang] = append(extraRules[lang], rule)
}

// Registered returns the rules registered for a language via Register.
func Registered(lang models.Language) []models.Rule {
	extraMu.RLock()
	defer extraMu.RUnlock()
	return append([]models.Rule(nil), extraRules[lang]...)
}

// Reset clears every rule added via Register, restoring the registry to
// its built-in-only state. Exists for tests: Register mutates
// package-level state that would otherwise leak between test cases.
func Reset() {
	extraMu.Lock()
	defer extraMu.Unlock()
	extraRules = map[models.Language][]models.Rule{}
}

// allRegistered flattens every rule added via Register across every
// language it was registered for. Each rule keeps its own Languages set,
// so flattening is safe: Engine.Apply still scopes it to the right
// language exactly like a built-in rule (see Catalog.ForRuleset). Keys
// are visited in sorted order, not map iteration order, so the "last
// matching rule wins" tie-break (spec 4.1) stays deterministic across
// runs (spec §5) even when rules for more than one language could both
// match the same node via a wildcard Languages set.
func allRegistered() []models.Rule {
	extraMu.RLock()
	defer extraMu.RUnlock()
	langs := make([]models.Language, 0, len(extraRules))
	for lang := range extraRules {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })

	var out []models.Rule
	for _, lang := range langs {
		out = append(out, extraRules[lang]...)
	}
	return out
}

// registeredCount returns the total number of rules added via Register,
// across every language, used only to size ForRuleset's append buffer.
func registeredCount() int {
	extraMu.RLock()
	defer extraMu.RUnlock()
	n := 0
	for _, rs := range extraRules {
		n += len(rs)
	}
	return n
}
