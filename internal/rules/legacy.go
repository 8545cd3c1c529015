package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// legacyFile mirrors the old four-category JSON layout where each category
// held a flat list of literal values.
type legacyFile struct {
	Studios    legacyCategory `json:"studios"`
	Performers legacyCategory `json:"performers"`
	Names      legacyCategory `json:"names"`
	Tags       legacyCategory `json:"tags"`
}

type legacyCategory struct {
	Values []string `json:"values"`
}

// MigrateLegacy converts the old category file into blocklist rules. Each
// literal value becomes one escaped-pattern rule, so values that contain
// regex metacharacters keep matching literally.
func MigrateLegacy(data []byte) ([]Rule, error) {
	var file legacyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse legacy filters: %w", err)
	}

	now := time.Now().UTC()
	var migrated []Rule
	appendCategory := func(ruleType Type, values []string) {
		for _, value := range values {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			migrated = append(migrated, Rule{
				ID:        uuid.NewString(),
				Type:      ruleType,
				Mode:      ModeBlocklist,
				Pattern:   regexp.QuoteMeta(value),
				Enabled:   true,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}

	appendCategory(TypeStudio, file.Studios.Values)
	appendCategory(TypePerformer, file.Performers.Values)
	appendCategory(TypeName, file.Names.Values)
	appendCategory(TypeTag, file.Tags.Values)
	return migrated, nil
}
