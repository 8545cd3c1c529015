package scene

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Metadata is the normalized evaluator input. Any field may be empty when a
// source could not supply it.
type Metadata struct {
	Studio     string   `json:"studio"`
	Performers []string `json:"performers"`
	Tags       []string `json:"tags"`
	Title      string   `json:"title"`
}

// Normalize trims fields and removes duplicate performers and tags while
// preserving first-seen order. Duplicate detection is case-insensitive.
func Normalize(meta Metadata) Metadata {
	return Metadata{
		Studio:     strings.TrimSpace(meta.Studio),
		Performers: dedupe(meta.Performers),
		Tags:       dedupe(meta.Tags),
		Title:      strings.TrimSpace(meta.Title),
	}
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DisplayTitle returns the scene title, falling back to a title-cased form of
// the identifier slug when the catalog supplied no title.
func DisplayTitle(title, id string) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range id {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	derived := strings.TrimSpace(cleaned.String())
	if derived == "" {
		return "Untitled Scene"
	}
	return cases.Title(language.Und).String(derived)
}
