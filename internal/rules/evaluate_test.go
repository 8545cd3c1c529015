package rules_test

import (
	"strings"
	"testing"

	"reelgate/internal/rules"
	"reelgate/internal/scene"
)

func rule(t rules.Type, m rules.Mode, pattern string) rules.Rule {
	return rules.Rule{ID: string(t) + "/" + pattern, Type: t, Mode: m, Pattern: pattern, Enabled: true}
}

func TestEvaluateEmptyRuleSetAllows(t *testing.T) {
	decision := rules.Evaluate(nil, scene.Metadata{Studio: "Acme"})
	if !decision.Allowed {
		t.Fatalf("expected allowed, got %#v", decision)
	}
}

func TestEvaluateSkipsDisabledAndBlankRules(t *testing.T) {
	disabled := rule(rules.TypeStudio, rules.ModeBlocklist, "Acme")
	disabled.Enabled = false
	blank := rule(rules.TypeStudio, rules.ModeBlocklist, "   ")

	decision := rules.Evaluate([]rules.Rule{disabled, blank}, scene.Metadata{Studio: "Acme"})
	if !decision.Allowed {
		t.Fatalf("expected allowed, got %#v", decision)
	}
}

func TestEvaluateBlocklistMatchBlocks(t *testing.T) {
	r := rule(rules.TypeStudio, rules.ModeBlocklist, "^acme")
	decision := rules.Evaluate([]rules.Rule{r}, scene.Metadata{Studio: "Acme Films"})
	if decision.Allowed {
		t.Fatal("expected blocked")
	}
	if decision.RuleID != r.ID {
		t.Fatalf("expected failing rule id %q, got %q", r.ID, decision.RuleID)
	}
	if !strings.Contains(decision.Reason, "studio") || !strings.Contains(decision.Reason, "^acme") {
		t.Fatalf("reason must name type and pattern: %q", decision.Reason)
	}
}

func TestEvaluateAllowlistNoMatchBlocks(t *testing.T) {
	r := rule(rules.TypePerformer, rules.ModeAllowlist, "doe")
	meta := scene.Metadata{Performers: []string{"Sam Roe", "Pat Lee"}}
	decision := rules.Evaluate([]rules.Rule{r}, meta)
	if decision.Allowed {
		t.Fatal("expected blocked")
	}
	if !strings.Contains(decision.Reason, "performer") {
		t.Fatalf("reason must name type: %q", decision.Reason)
	}
}

func TestEvaluateAllowlistMatchPasses(t *testing.T) {
	r := rule(rules.TypeTag, rules.ModeAllowlist, "outdoor")
	meta := scene.Metadata{Tags: []string{"night", "Outdoor"}}
	decision := rules.Evaluate([]rules.Rule{r}, meta)
	if !decision.Allowed {
		t.Fatalf("expected allowed, got %#v", decision)
	}
}

func TestEvaluateListMatchesAnyElement(t *testing.T) {
	r := rule(rules.TypePerformer, rules.ModeBlocklist, "^jo doe$")
	meta := scene.Metadata{Performers: []string{"Sam Roe", "Jo Doe"}}
	if decision := rules.Evaluate([]rules.Rule{r}, meta); decision.Allowed {
		t.Fatal("expected blocked via second element")
	}
}

func TestEvaluateCaseInsensitive(t *testing.T) {
	r := rule(rules.TypeName, rules.ModeBlocklist, "midnight")
	meta := scene.Metadata{Title: "MIDNIGHT Run"}
	if decision := rules.Evaluate([]rules.Rule{r}, meta); decision.Allowed {
		t.Fatal("expected case-insensitive match")
	}
}

func TestEvaluateShortCircuitsOnFirstFailure(t *testing.T) {
	failing := rule(rules.TypeStudio, rules.ModeBlocklist, "acme")
	// Would panic the pipeline if ever compiled and relied upon; the
	// short-circuit means it must never be consulted.
	invalid := rule(rules.TypeStudio, rules.ModeBlocklist, "([")

	decision := rules.Evaluate([]rules.Rule{failing, invalid}, scene.Metadata{Studio: "Acme"})
	if decision.Allowed {
		t.Fatal("expected blocked")
	}
	if decision.RuleID != failing.ID {
		t.Fatalf("expected first rule to fail, got %q", decision.RuleID)
	}
}

func TestEvaluateInvalidPatternIsSkipped(t *testing.T) {
	invalid := rule(rules.TypeStudio, rules.ModeBlocklist, "([")
	decision := rules.Evaluate([]rules.Rule{invalid}, scene.Metadata{Studio: "Acme"})
	if !decision.Allowed {
		t.Fatalf("invalid pattern must degrade to pass, got %#v", decision)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	list := []rules.Rule{
		rule(rules.TypeTag, rules.ModeAllowlist, "keep"),
		rule(rules.TypeStudio, rules.ModeBlocklist, "bad"),
	}
	meta := scene.Metadata{Studio: "Good", Tags: []string{"keep"}}
	first := rules.Evaluate(list, meta)
	for i := 0; i < 10; i++ {
		if got := rules.Evaluate(list, meta); got != first {
			t.Fatalf("evaluation not deterministic: %#v vs %#v", got, first)
		}
	}
}

func TestValidatePattern(t *testing.T) {
	if err := rules.ValidatePattern("valid.*"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rules.ValidatePattern(""); err != nil {
		t.Fatalf("blank pattern must validate: %v", err)
	}
	if err := rules.ValidatePattern("(["); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}
