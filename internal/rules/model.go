package rules

import (
	"strings"
	"time"
)

// Type selects which scene attribute a rule tests.
type Type string

const (
	TypeStudio    Type = "studio"
	TypePerformer Type = "performer"
	TypeName      Type = "name"
	TypeTag       Type = "tag"
)

// Mode decides whether a match rejects the scene or is required for it.
type Mode string

const (
	ModeBlocklist Mode = "blocklist"
	ModeAllowlist Mode = "allowlist"
)

var allTypes = []Type{TypeStudio, TypePerformer, TypeName, TypeTag}

// AllTypes returns the ordered list of known rule types.
func AllTypes() []Type {
	cp := make([]Type, len(allTypes))
	copy(cp, allTypes)
	return cp
}

// ParseType converts a string into a known Type.
func ParseType(value string) (Type, bool) {
	normalized := Type(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range allTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// ParseMode converts a string into a known Mode.
func ParseMode(value string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeBlocklist:
		return ModeBlocklist, true
	case ModeAllowlist:
		return ModeAllowlist, true
	default:
		return "", false
	}
}

// Rule is a single filter criterion. Pattern is stored as regular-expression
// source text and may be blank or malformed; such rules never block a scene.
type Rule struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Mode      Mode      `json:"mode"`
	Pattern   string    `json:"pattern"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
