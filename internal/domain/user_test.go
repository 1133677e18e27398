package domain

import (
	"reflect"
	"testing"
)

func TestNewBackgroundLoginLanguagesWin(t *testing.T) {
	rec := &UserRecord{Email: "a@x.com", NativeLang: "fr", TargetLang: "de"}

	bg := NewBackground(rec, "en", "es")
	if bg.NativeLang != "en" || bg.TargetLang != "es" {
		t.Errorf("Expected login languages to override the record, got %s/%s", bg.NativeLang, bg.TargetLang)
	}

	bg = NewBackground(rec, "", "")
	if bg.NativeLang != "fr" || bg.TargetLang != "de" {
		t.Errorf("Expected stored languages when login omits them, got %s/%s", bg.NativeLang, bg.TargetLang)
	}
}

func TestNewBackgroundPullsProfileFromBlob(t *testing.T) {
	rec := &UserRecord{
		Email: "a@x.com",
		Personalization: PersonalizationBlob{
			"name":        "Ana",
			"skill_level": "intermediate",
		},
	}

	bg := NewBackground(rec, "en", "es")
	if bg.Name != "Ana" {
		t.Errorf("Expected name from blob, got %q", bg.Name)
	}
	if bg.SkillLevel != "intermediate" {
		t.Errorf("Expected skill level from blob, got %q", bg.SkillLevel)
	}
}

func TestNewBackgroundDerivesListsFromBlob(t *testing.T) {
	// JSON decoding yields []any for arrays.
	rec := &UserRecord{
		Email: "a@x.com",
		Personalization: PersonalizationBlob{
			"interests":      []any{"music", "cooking"},
			"learning_goals": "travel",
		},
	}

	bg := NewBackground(rec, "en", "es")
	if !reflect.DeepEqual(bg.Interests, []string{"music", "cooking"}) {
		t.Errorf("Expected interests derived from blob, got %v", bg.Interests)
	}
	if !reflect.DeepEqual(bg.LearningGoals, []string{"travel"}) {
		t.Errorf("Expected bare string treated as one goal, got %v", bg.LearningGoals)
	}
}

func TestStringList(t *testing.T) {
	if got := stringList(nil); got != nil {
		t.Errorf("Expected nil for absent value, got %v", got)
	}
	if got := stringList([]any{1, "a", ""}); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Expected non-string and empty elements dropped, got %v", got)
	}
	if got := stringList(""); got != nil {
		t.Errorf("Expected nil for empty string, got %v", got)
	}
}

func TestNewBackgroundNilRecord(t *testing.T) {
	bg := NewBackground(nil, "en", "es")
	if bg.NativeLang != "en" || bg.TargetLang != "es" || bg.SkillLevel != DefaultSkillLevel {
		t.Errorf("Unexpected background for missing record: %+v", bg)
	}
}
