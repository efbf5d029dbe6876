package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/rules"
)

func TestRegisterExtendsDefaultAndLoose(t *testing.T) {
	catalog := rules.Build()
	before := len(catalog.ForRuleset(models.RulesetDefault))

	rules.Register(models.LanguageGo, models.NewRule(
		"registry_test_drop_panic",
		[]models.Language{models.LanguageGo},
		"panic_call",
		models.ActionRemove,
		models.RuleParams{},
	))
	t.Cleanup(func() { rules.Reset() })

	after := catalog.ForRuleset(models.RulesetDefault)
	require.Len(t, after, before+1)
	require.Equal(t, "registry_test_drop_panic", after[len(after)-1].Name)

	loose := catalog.ForRuleset(models.RulesetLoose)
	found := false
	for _, r := range loose {
		if r.Name == "registry_test_drop_panic" {
			found = true
		}
	}
	require.True(t, found, "a registered rule must also reach the loose ruleset")
}

func TestRegisterNeverReachesNoneRuleset(t *testing.T) {
	catalog := rules.Build()
	rules.Register(models.LanguageGo, models.NewRule(
		"registry_test_noop",
		[]models.Language{models.LanguageGo},
		"identifier",
		models.ActionAnonymize,
		models.RuleParams{Prefix: "ID"},
	))
	t.Cleanup(func() { rules.Reset() })

	require.Empty(t, catalog.ForRuleset(models.RulesetNone), "none must stay a hard bypass of the registry")
}

func TestRegisteredReturnsOnlyMatchingLanguage(t *testing.T) {
	rules.Register(models.LanguagePython, models.NewRule(
		"registry_test_py_only",
		[]models.Language{models.LanguagePython},
		"docstring",
		models.ActionRemove,
		models.RuleParams{},
	))
	t.Cleanup(func() { rules.Reset() })

	require.Len(t, rules.Registered(models.LanguagePython), 1)
	require.Empty(t, rules.Registered(models.LanguageGo))
}
