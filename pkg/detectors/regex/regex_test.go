package regex

import (
	"testing"

	"guardrail-hq/sentinel/pkg/guardrail"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		types []string
		want  map[string][]string
	}{
		{
			name:  "no PII",
			text:  "Hello, how are you today?",
			types: SupportedTypes(),
			want:  map[string][]string{},
		},
		{
			name:  "SSN with dashes",
			text:  "My SSN is 123-45-6789.",
			types: []string{"SSN"},
			want:  map[string][]string{"SSN": {"123-45-6789"}},
		},
		{
			name:  "SSN with spaces",
			text:  "ssn 123 45 6789 on file",
			types: []string{"SSN"},
			want:  map[string][]string{"SSN": {"123 45 6789"}},
		},
		{
			name:  "credit card",
			text:  "Card number: 4111-1111-1111-1111",
			types: []string{"CREDIT_CARD"},
			want:  map[string][]string{"CREDIT_CARD": {"4111-1111-1111-1111"}},
		},
		{
			name:  "email case-insensitive",
			text:  "Contact OPS@Example.COM today",
			types: []string{"EMAIL"},
			want:  map[string][]string{"EMAIL": {"OPS@Example.COM"}},
		},
		{
			name:  "phone formats",
			text:  "Call 555-123-4567 or (555) 987-6543 or +1 555 222 3333",
			types: []string{"PHONE_NUMBER"},
			// The bare-number pattern also matches inside the international form.
			want:  map[string][]string{"PHONE_NUMBER": {"555-123-4567", "555 222 3333", "(555) 987-6543", "+1 555 222 3333"}},
		},
		{
			name:  "unrequested types are not scanned",
			text:  "user@example.com 123-45-6789",
			types: []string{"SSN"},
			want:  map[string][]string{"SSN": {"123-45-6789"}},
		},
		{
			name:  "repeated literal reported once",
			text:  "123-45-6789 and again 123-45-6789",
			types: []string{"SSN"},
			want:  map[string][]string{"SSN": {"123-45-6789"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Detect(tt.text, tt.types)

			got := make(map[string][]string)
			for _, r := range records {
				if r.Entity == nil {
					t.Fatalf("record without entity payload: %+v", r)
				}
				if r.Entity.Source != guardrail.SourceRegex || r.Entity.Salience != Salience {
					t.Errorf("record = %+v, want regex source with salience 1.0", r.Entity)
				}
				got[r.Entity.Type] = append(got[r.Entity.Type], r.Entity.Span)
			}

			for typ, spans := range tt.want {
				if len(got[typ]) != len(spans) {
					t.Fatalf("%s: got %v, want %v", typ, got[typ], spans)
				}
				for _, want := range spans {
					found := false
					for _, s := range got[typ] {
						if s == want {
							found = true
							break
						}
					}
					if !found {
						t.Errorf("%s: missing %q in %v", typ, want, got[typ])
					}
				}
			}
			for typ := range got {
				if _, ok := tt.want[typ]; !ok {
					t.Errorf("unexpected %s detections: %v", typ, got[typ])
				}
			}
		})
	}
}

func TestDetect_Empty(t *testing.T) {
	if got := Detect("", SupportedTypes()); got != nil {
		t.Errorf("Detect(\"\") = %v, want nil", got)
	}
	if got := Detect("123-45-6789", nil); got != nil {
		t.Errorf("Detect() with no types = %v, want nil", got)
	}
}
