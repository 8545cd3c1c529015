package rules

import (
	"fmt"
	"regexp"
	"strings"

	"reelgate/internal/scene"
)

// Decision is the outcome of screening one scene against the rule list.
// RuleID names the failing rule when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  string
	RuleID  string
}

// Evaluate screens metadata against the rules in list order and returns the
// first failure. It is deterministic and side-effect free: disabled rules,
// blank patterns, and patterns that fail to compile are skipped, so a
// malformed rule can never abort a batch.
func Evaluate(ruleList []Rule, meta scene.Metadata) Decision {
	for _, rule := range ruleList {
		if !rule.Enabled {
			continue
		}
		pattern := strings.TrimSpace(rule.Pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}

		matched := matchesAny(re, valuesFor(rule.Type, meta))
		switch rule.Mode {
		case ModeBlocklist:
			if matched {
				return Decision{
					Reason: fmt.Sprintf("%s matches blocklist pattern %q", rule.Type, rule.Pattern),
					RuleID: rule.ID,
				}
			}
		case ModeAllowlist:
			if !matched {
				return Decision{
					Reason: fmt.Sprintf("%s does not match allowlist pattern %q", rule.Type, rule.Pattern),
					RuleID: rule.ID,
				}
			}
		}
	}
	return Decision{Allowed: true}
}

// ValidatePattern reports whether a pattern would compile. Evaluation always
// skips broken patterns; this exists so rule-edit surfaces can warn.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return nil
	}
	if _, err := regexp.Compile("(?i)" + pattern); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	return nil
}

func valuesFor(t Type, meta scene.Metadata) []string {
	switch t {
	case TypeStudio:
		return []string{meta.Studio}
	case TypeName:
		return []string{meta.Title}
	case TypePerformer:
		return meta.Performers
	case TypeTag:
		return meta.Tags
	default:
		return nil
	}
}

func matchesAny(re *regexp.Regexp, values []string) bool {
	for _, value := range values {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
