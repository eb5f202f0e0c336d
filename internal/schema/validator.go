package schema

import (
	"fmt"
	"strings"

	"github.com/myhometown/missionary-import/internal/models"
)

var (
	statusValues = []string{models.StatusActive, models.StatusInactive, models.StatusPending}
	levelValues  = []string{models.LevelState, models.LevelCity, models.LevelCommunity}
	typeValues   = []string{models.TypeMissionary, models.TypeVolunteer}
)

// UnmappedHeaders returns a warning for every header no field is mapped to.
// Such columns are ignored during import.
func UnmappedHeaders(headers []string, mapping Mapping) (warnings []string) {
	used := make(map[string]bool, len(mapping))
	for _, h := range mapping {
		used[h] = true
	}
	for _, h := range headers {
		if h != "" && !used[h] {
			warnings = append(warnings, fmt.Sprintf("column '%s' is not mapped to any field and will be ignored", h))
		}
	}
	return warnings
}

// NormalizeStatus lowercases value and checks it is a known assignment status.
func NormalizeStatus(value string) (string, error) {
	return normalizeEnum(FieldAssignmentStatus, value, statusValues)
}

// NormalizeLevel lowercases value and checks it is a known assignment level.
func NormalizeLevel(value string) (string, error) {
	return normalizeEnum(FieldAssignmentLevel, value, levelValues)
}

// NormalizePersonType lowercases value and checks it is a known person type.
func NormalizePersonType(value string) (string, error) {
	return normalizeEnum(FieldPersonType, value, typeValues)
}

// NormalizeGender maps common spellings to "male" or "female". Empty input
// stays empty.
func NormalizeGender(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case "m", "male", "man":
		return "male", nil
	case "f", "female", "woman":
		return "female", nil
	default:
		return "", fmt.Errorf("%s must be male or female, got '%s'", Label(FieldGender), value)
	}
}

func normalizeEnum(key FieldKey, value string, allowed []string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s must be one of %s, got '%s'", Label(key), strings.Join(allowed, ", "), value)
}
