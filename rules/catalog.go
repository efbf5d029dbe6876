// Package rules holds the declarative, per-language rule catalog (C1):
// which AST nodes get normalized, anonymized, dropped or marked as region
// boundaries, bundled into the none/default/loose rulesets.
package rules

import "github.com/arch-sim/simhound/models"

// RegionExtractionRule pairs a tree-query pattern with the region kind its
// matches should be labeled. Region-extraction rules never affect shingle
// content (spec 4.1); they are consulted only by the region extractor.
type RegionExtractionRule struct {
	Query string
	Kind  models.RegionKind
}

// Catalog is the read-only, process-wide set of normalization and
// region-extraction rules. It is safe to share across worker goroutines
// (spec §5): nothing here is mutated after Build.
type Catalog struct {
	defaultRules []models.Rule
	looseExtra   []models.Rule
	regionRules  map[models.Language][]RegionExtractionRule
}

// Build assembles the catalog from the language-specific noise-reduction
// and region tables below. It does no validation: the rule bodies are
// static Go data, and a query that fails to compile is reported by
// engine.New at construction time (spec 4.2).
func Build() *Catalog {
	return &Catalog{
		defaultRules: defaultNormalizationRules(),
		looseExtra:   looseExtraRules(),
		regionRules:  regionExtractionTable(),
	}
}

// ForRuleset returns the ordered rule list active for the given ruleset.
// "loose" is default ∪ extra per spec 4.1; "none" returns no rules, which
// disables normalization entirely (every node keeps its raw kind/value).
// Default and loose both also pick up any rule added at runtime via
// Register — each such rule still carries its own Languages set, so
// Engine.Apply scopes it to the right language the same as a built-in
// rule; "none" stays a hard bypass and never consults the registry.
func (c *Catalog) ForRuleset(rs models.Ruleset) []models.Rule {
	switch rs {
	case models.RulesetNone:
		return nil
	case models.RulesetLoose:
		out := make([]models.Rule, 0, len(c.defaultRules)+len(c.looseExtra)+registeredCount())
		out = append(out, c.defaultRules...)
		out = append(out, c.looseExtra...)
		out = append(out, allRegistered()...)
		return out
	default:
		out := make([]models.Rule, 0, len(c.defaultRules)+registeredCount())
		out = append(out, c.defaultRules...)
		out = append(out, allRegistered()...)
		return out
	}
}

// RegionExtractionRules returns the region-boundary rules for a language,
// falling back to the wildcard table entry if the language has none of
// its own.
func (c *Catalog) RegionExtractionRules(lang models.Language) []RegionExtractionRule {
	if rs, ok := c.regionRules[lang]; ok {
		return rs
	}
	return c.regionRules[models.WildcardLanguage]
}

func anonRule(name string, langs []models.Language, query, prefix string) models.Rule {
	return models.NewRule(name, langs, query, models.ActionAnonymize, models.RuleParams{Prefix: prefix})
}

func removeRule(name string, langs []models.Language, query string) models.Rule {
	return models.NewRule(name, langs, query, models.ActionRemove, models.RuleParams{})
}

var all = []models.Language{models.WildcardLanguage}

// defaultNormalizationRules implements spec 4.1's "default" bundle: noise
// reduction, identifier anonymization, comment/import removal, docstring
// skip. Kept intentionally small and language-generic since per-language
// grammars differ mainly in node-kind naming, not in which categories of
// noise they carry.
func defaultNormalizationRules() []models.Rule {
	return []models.Rule{
		removeRule("drop_comments", all, "comment"),
		removeRule("drop_line_comments", all, "line_comment"),
		removeRule("drop_block_comments", all, "block_comment"),
		removeRule("drop_docstrings", []models.Language{models.LanguagePython}, "expression_statement > string"),
		removeRule("drop_imports", all, "import_statement"),
		removeRule("drop_import_from", all, "import_from_statement"),
		anonRule("anon_identifier", all, "identifier", "ID"),
		anonRule("anon_property_identifier", all, "property_identifier", "PROP"),
		anonRule("anon_parameter_name", all, "parameter > identifier", "PARAM"),
	}
}

// looseExtraRules adds literal-value replacement, collection/expression
// renaming and type canonicalization on top of the default bundle
// (spec 4.1).
func looseExtraRules() []models.Rule {
	return []models.Rule{
		models.NewRule("replace_string_literal", all, "string", models.ActionReplaceValue, models.RuleParams{Value: "STR"}),
		models.NewRule("replace_number_literal", all, "integer", models.ActionReplaceValue, models.RuleParams{Value: "NUM"}),
		models.NewRule("replace_float_literal", all, "float", models.ActionReplaceValue, models.RuleParams{Value: "NUM"}),
		models.NewRule("canonicalize_list", all, "list", models.ActionCanonicalize, models.RuleParams{Token: "collection"}),
		models.NewRule("canonicalize_dict", all, "dictionary", models.ActionCanonicalize, models.RuleParams{Token: "collection"}),
		models.NewRule("canonicalize_set", all, "set", models.ActionCanonicalize, models.RuleParams{Token: "collection"}),
		models.NewRule("canonicalize_type_identifier", all, "type_identifier", models.ActionCanonicalize, models.RuleParams{Token: "TYPE"}),
	}
}

// regionExtractionTable implements spec 4.1/4.3's explicit region rules
// per language, with a wildcard fallback for languages that have not been
// given a bespoke table (they still get statistical chunking in C3).
func regionExtractionTable() map[models.Language][]RegionExtractionRule {
	return map[models.Language][]RegionExtractionRule{
		models.LanguagePython: {
			{Query: "function_definition", Kind: models.RegionFunction},
			{Query: "class_definition", Kind: models.RegionClass},
		},
		models.LanguageGo: {
			{Query: "function_declaration", Kind: models.RegionFunction},
			{Query: "method_declaration", Kind: models.RegionMethod},
			{Query: "type_declaration", Kind: models.RegionClass},
		},
		models.LanguageJavaScript: {
			{Query: "function_declaration", Kind: models.RegionFunction},
			{Query: "method_definition", Kind: models.RegionMethod},
			{Query: "class_declaration", Kind: models.RegionClass},
		},
		models.LanguageTypeScript: {
			{Query: "function_declaration", Kind: models.RegionFunction},
			{Query: "method_definition", Kind: models.RegionMethod},
			{Query: "class_declaration", Kind: models.RegionClass},
		},
		models.LanguageJava: {
			{Query: "method_declaration", Kind: models.RegionMethod},
			{Query: "class_declaration", Kind: models.RegionClass},
		},
		models.LanguageMarkdown: {
			{Query: "heading", Kind: models.RegionHeading},
			{Query: "fenced_code_block", Kind: models.RegionCodeBlock},
		},
		models.WildcardLanguage: nil,
	}
}
