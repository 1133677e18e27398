// Package domain contains core domain types for the lingochat backend.
package domain

import "time"

// PersonalizationBlob holds free-form onboarding answers keyed by field
// name. Values are strings, lists, or booleans as collected by the
// client. The reserved key "completed" marks whether onboarding finished
// and is never rendered into prompt context.
type PersonalizationBlob map[string]any

// CompletedKey is the reserved PersonalizationBlob field.
const CompletedKey = "completed"

// Completed reports whether the onboarding flow was marked finished.
func (p PersonalizationBlob) Completed() bool {
	v, ok := p[CompletedKey].(bool)
	return ok && v
}

// UserRecord is the persisted profile for one registered user.
// The password is stored as an opaque string compared by equality;
// this mirrors the shipped behavior and is a known security gap, not a
// recommendation (see DESIGN.md).
type UserRecord struct {
	Email           string              `json:"email"`
	Password        string              `json:"password"`
	NativeLang      string              `json:"native_lang,omitempty"`
	TargetLang      string              `json:"target_lang,omitempty"`
	Personalization PersonalizationBlob `json:"personalization,omitempty"`
	CreatedAt       time.Time           `json:"created_at,omitempty"`
	UpdatedAt       time.Time           `json:"updated_at,omitempty"`
}

// UserBackground is the per-session view of a user's learning profile
// used to personalize prompts. It is derived from the UserRecord plus
// session defaults at login and never persisted; the record stays the
// source of truth.
type UserBackground struct {
	Name            string              `json:"name,omitempty"`
	NativeLang      string              `json:"native_lang"`
	TargetLang      string              `json:"target_lang"`
	SkillLevel      string              `json:"skill_level"`
	Interests       []string            `json:"interests,omitempty"`
	LearningGoals   []string            `json:"learning_goals,omitempty"`
	Personalization PersonalizationBlob `json:"personalization,omitempty"`
}

// DefaultSkillLevel is assumed when a profile does not state one.
const DefaultSkillLevel = "beginner"

// NewBackground derives a UserBackground from a stored record, with the
// language pair supplied at login taking precedence over stored values.
func NewBackground(rec *UserRecord, nativeLang, targetLang string) *UserBackground {
	bg := &UserBackground{
		NativeLang: nativeLang,
		TargetLang: targetLang,
		SkillLevel: DefaultSkillLevel,
	}
	if rec == nil {
		return bg
	}
	if bg.NativeLang == "" {
		bg.NativeLang = rec.NativeLang
	}
	if bg.TargetLang == "" {
		bg.TargetLang = rec.TargetLang
	}
	if rec.Personalization != nil {
		bg.Personalization = rec.Personalization
		if name, ok := rec.Personalization["name"].(string); ok {
			bg.Name = name
		}
		if level, ok := rec.Personalization["skill_level"].(string); ok && level != "" {
			bg.SkillLevel = level
		}
		bg.Interests = stringList(rec.Personalization["interests"])
		bg.LearningGoals = stringList(rec.Personalization["learning_goals"])
	}
	return bg
}

// stringList normalizes a blob value into a string slice. JSON decoding
// yields []any for arrays; a bare string counts as a one-element list.
func stringList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}
