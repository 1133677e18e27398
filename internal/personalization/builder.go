// Package personalization renders a user's learning profile into
// natural-language context for the system prompt.
package personalization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mateoias/lingochat/internal/domain"
)

// Build turns a UserBackground into a multi-line context block for the
// system prompt. A nil or zero-value background yields an empty string.
// The function is pure: no side effects, deterministic output for a
// given input.
func Build(bg *domain.UserBackground) string {
	if isAbsent(bg) {
		return ""
	}

	parts := []string{
		"User Context:",
		fmt.Sprintf("- Native Language: %s", orUnknown(bg.NativeLang)),
		fmt.Sprintf("- Target Language: %s", orUnknown(bg.TargetLang)),
		fmt.Sprintf("- Skill Level: %s", levelOrDefault(bg.SkillLevel)),
	}

	if meaningful := meaningfulFields(bg.Personalization); len(meaningful) > 0 {
		parts = append(parts,
			"",
			"The user has provided the following personal information:")
		// Sorted key order keeps the rendered block deterministic.
		keys := make([]string, 0, len(meaningful))
		for k := range meaningful {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("- %s: %s", k, renderValue(meaningful[k])))
		}
		parts = append(parts,
			"",
			"Use this information naturally in conversation when relevant, but don't force it.")
	}

	return strings.Join(parts, "\n")
}

func isAbsent(bg *domain.UserBackground) bool {
	return bg == nil ||
		(bg.Name == "" && bg.NativeLang == "" && bg.TargetLang == "" &&
			bg.SkillLevel == "" && len(bg.Interests) == 0 &&
			len(bg.LearningGoals) == 0 && len(bg.Personalization) == 0)
}

// meaningfulFields filters the blob down to fields worth mentioning:
// "completed" is always dropped, string values must be non-empty and not
// "no" in any case, and non-string values are kept whenever truthy.
func meaningfulFields(blob domain.PersonalizationBlob) map[string]any {
	if len(blob) == 0 {
		return nil
	}
	meaningful := make(map[string]any)
	for k, v := range blob {
		if k == domain.CompletedKey {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" && !strings.EqualFold(val, "no") {
				meaningful[k] = val
			}
		default:
			if truthy(v) {
				meaningful[k] = v
			}
		}
	}
	if len(meaningful) == 0 {
		return nil
	}
	return meaningful
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return strings.Join(items, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func levelOrDefault(s string) string {
	if s == "" {
		return domain.DefaultSkillLevel
	}
	return s
}
