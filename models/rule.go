package models

// RuleAction is what a matched rule does to the matched node.
type RuleAction string

const (
	ActionRemove        RuleAction = "remove"
	ActionRename        RuleAction = "rename"
	ActionReplaceValue  RuleAction = "replace_value"
	ActionAnonymize     RuleAction = "anonymize"
	ActionCanonicalize  RuleAction = "canonicalize"
	ActionExtractRegion RuleAction = "extract_region"
)

// WildcardLanguage matches any language in a Rule's Languages set.
const WildcardLanguage Language = "*"

// RuleParams carries the action-specific parameters a Rule needs. Only the
// fields relevant to Action are meaningful; the rest are zero values.
type RuleParams struct {
	Prefix     string // anonymize: counter key / token prefix
	Token      string // rename / canonicalize: replacement name
	Value      string // replace_value: literal replacement
	RegionKind RegionKind // extract_region: the kind assigned to matches
}

// Rule is one declarative normalization or extraction directive. Query is a
// tree-pattern string understood by engine.Pattern (see engine package);
// models does not interpret it, only carries it.
type Rule struct {
	Name      string
	Languages map[Language]struct{}
	Query     string
	Action    RuleAction
	Params    RuleParams
}

// NewRule builds a Rule with a Languages set derived from the given tags;
// pass WildcardLanguage alone to match every language.
func NewRule(name string, languages []Language, query string, action RuleAction, params RuleParams) Rule {
	set := make(map[Language]struct{}, len(languages))
	for _, l := range languages {
		set[l] = struct{}{}
	}
	return Rule{Name: name, Languages: set, Query: query, Action: action, Params: params}
}

// AppliesToLanguage reports whether the rule's Languages set matches lang,
// honoring the wildcard sentinel.
func (r Rule) AppliesToLanguage(lang Language) bool {
	if _, ok := r.Languages[WildcardLanguage]; ok {
		return true
	}
	_, ok := r.Languages[lang]
	return ok
}

// Ruleset names the bundle of rules active for a run.
type Ruleset string

const (
	RulesetNone    Ruleset = "none"
	RulesetDefault Ruleset = "default"
	RulesetLoose   Ruleset = "loose"
)
