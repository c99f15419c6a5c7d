package guardrail

import "testing"

func TestResolveModerationCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"canonical", "Toxic", "Toxic", true},
		{"lower case", "toxic", "Toxic", true},
		{"upper case", "TOXIC", "Toxic", true},
		{"padded", "  insult ", "Insult", true},
		{"alias drugs", "drugs", "Illicit Drugs", true},
		{"alias upper", "DRUGS", "Illicit Drugs", true},
		{"alias illicit", "illicit", "Illicit Drugs", true},
		{"canonical with punctuation", "Death, Harm & Tragedy", "Death, Harm & Tragedy", true},
		{"identifier form", "death_harm_tragedy", "Death, Harm & Tragedy", true},
		{"dashed identifier", "public-safety", "Public Safety", true},
		{"spaced identifier", "war conflict", "War & Conflict", true},
		{"weapons", "weapons", "Firearms & Weapons", true},
		{"belief", "Belief", "Religion & Belief", true},
		{"unknown", "spam", "", false},
		{"no substring search", "tox", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveModerationCategory(tt.input)
			if ok != tt.ok {
				t.Fatalf("ResolveModerationCategory(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ResolveModerationCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModerationCategories_AllResolve(t *testing.T) {
	if len(ModerationCategories) != 16 {
		t.Fatalf("expected 16 moderation categories, got %d", len(ModerationCategories))
	}
	for _, c := range ModerationCategories {
		got, ok := ResolveModerationCategory(c)
		if !ok || got != c {
			t.Errorf("canonical category %q resolved to %q (ok=%v)", c, got, ok)
		}
	}
}

func TestNormalizeEntityType(t *testing.T) {
	tests := map[string]string{
		"person":        "PERSON",
		"phone number":  "PHONE_NUMBER",
		"phone-number":  "PHONE_NUMBER",
		" credit card ": "CREDIT_CARD",
		"SSN":           "SSN",
	}
	for in, want := range tests {
		if got := NormalizeEntityType(in); got != want {
			t.Errorf("NormalizeEntityType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEntityTypeSets(t *testing.T) {
	if !IsAPIEntityType("PERSON") || IsAPIEntityType("SSN") {
		t.Error("PERSON must be an API type and SSN must not")
	}
	if !IsRegexOnlyEntityType("CREDIT_CARD") || IsRegexOnlyEntityType("EMAIL") {
		t.Error("CREDIT_CARD must be regex-only and EMAIL must not")
	}
	if IsKnownEntityType("PASSPORT") {
		t.Error("PASSPORT must not be a known entity type")
	}
	if len(APIEntityTypes) != 18 {
		t.Errorf("expected 18 API entity types, got %d", len(APIEntityTypes))
	}
}
