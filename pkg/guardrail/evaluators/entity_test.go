package evaluators

import (
	"testing"

	"guardrail-hq/sentinel/pkg/guardrail"
)

func entitySpec(types []string, def float64, per map[string]float64) guardrail.CheckSpec {
	return guardrail.CheckSpec{
		Function: guardrail.FunctionEntities,
		Entity: &guardrail.EntityOptions{
			BlockedTypes:       types,
			SalienceThreshold:  def,
			SalienceThresholds: per,
		},
	}
}

func TestEvaluateEntities_RegexSSNNotDuplicated(t *testing.T) {
	spec := entitySpec([]string{"SSN", "PERSON"}, 0.9, nil)

	tests := []struct {
		name    string
		apiType string
	}{
		{"api reports a different type", "NUMBER"},
		{"api reports an id number", "ID_NUMBER"},
		{"api reports the same type", "SSN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []guardrail.DetectionRecord{
				guardrail.EntityDetection("PERSON", 0.95, "Jane Roe", guardrail.SourceAPI),
				guardrail.EntityDetection(tt.apiType, 0.1, "123-45-6789", guardrail.SourceAPI),
				guardrail.EntityDetection("SSN", 1.0, "123 45 6789", guardrail.SourceRegex),
			}

			got := EvaluateEntities(spec, records)
			if len(got) != 2 {
				t.Fatalf("got %d evaluations, want 2: %+v", len(got), got)
			}
			ssn := got[1]
			if ssn.Category != "SSN" || !ssn.Blocked || ssn.Source != guardrail.SourceRegex {
				t.Errorf("SSN evaluation = %+v, want blocked regex SSN", ssn)
			}
			if ssn.Severity != guardrail.SeverityHigh || ssn.Value != 1.0 {
				t.Errorf("regex salience should be 1.0 and HIGH, got %v %q", ssn.Value, ssn.Severity)
			}
		})
	}
}

func TestEvaluateEntities_RegexBlocksIrrespectiveOfThreshold(t *testing.T) {
	spec := entitySpec([]string{"EMAIL", "CREDIT_CARD"}, 1.0, map[string]float64{"EMAIL": 1.0})
	records := []guardrail.DetectionRecord{
		guardrail.EntityDetection("EMAIL", 1.0, "a@b.io", guardrail.SourceRegex),
		guardrail.EntityDetection("CREDIT_CARD", 1.0, "4111 1111 1111 1111", guardrail.SourceRegex),
	}
	for _, ev := range EvaluateEntities(spec, records) {
		if !ev.Blocked {
			t.Errorf("regex detection of %s should block: %+v", ev.Category, ev)
		}
	}
}

func TestEvaluateEntities_Thresholds(t *testing.T) {
	spec := entitySpec([]string{"PERSON", "LOCATION"}, 0.3, map[string]float64{"PERSON": 0.6})
	records := []guardrail.DetectionRecord{
		guardrail.EntityDetection("person", 0.59, "Ada", guardrail.SourceAPI),
		guardrail.EntityDetection("PERSON", 0.6, "Grace", guardrail.SourceAPI),
		guardrail.EntityDetection("LOCATION", 0.3, "Paris", guardrail.SourceAPI),
		guardrail.EntityDetection("ORGANIZATION", 0.99, "Acme", guardrail.SourceAPI),
		guardrail.EntityDetection("OTHER", 0.99, "thing", guardrail.SourceAPI),
		guardrail.EntityDetection("UNKNOWN", 0.99, "stuff", guardrail.SourceAPI),
	}

	got := EvaluateEntities(spec, records)
	want := []struct {
		category string
		blocked  bool
	}{
		{"PERSON", false},
		{"PERSON", true},
		{"LOCATION", true},
		{"ORGANIZATION", false},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d evaluations, want %d (OTHER and UNKNOWN dropped)", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Category != w.category || got[i].Blocked != w.blocked {
			t.Errorf("evaluation %d = %s blocked=%v, want %s blocked=%v", i, got[i].Category, got[i].Blocked, w.category, w.blocked)
		}
	}
}

func TestMergeEntities_RegexReplacesAPIForSameSpan(t *testing.T) {
	records := []guardrail.DetectionRecord{
		guardrail.EntityDetection("PHONE_NUMBER", 0.4, "555-123-4567", guardrail.SourceAPI),
		guardrail.EntityDetection("PHONE_NUMBER", 1.0, "555.123.4567", guardrail.SourceRegex),
		guardrail.EntityDetection("EMAIL", 1.0, "ops@example.com", guardrail.SourceRegex),
		guardrail.EntityDetection("EMAIL", 1.0, "ops@example.com", guardrail.SourceRegex),
	}

	got := MergeEntities(records)
	if len(got) != 2 {
		t.Fatalf("got %d entities, want 2: %+v", len(got), got)
	}
	if got[0].Source != guardrail.SourceRegex || got[0].Salience != 1.0 {
		t.Errorf("regex phone record should replace the API record: %+v", got[0])
	}
	if got[1].Type != "EMAIL" {
		t.Errorf("second entity = %+v, want EMAIL", got[1])
	}
}

func TestEvaluateEntities_RegexMatchBlocksDespiteLowAPISalience(t *testing.T) {
	tests := []struct {
		name       string
		entityType string
		apiSpan    string
		regexSpan  string
	}{
		{"phone", "PHONE_NUMBER", "555-123-4567", "555-123-4567"},
		{"email", "EMAIL", "Ops@Example.com", "ops@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := guardrail.CheckSpec{
				Function: guardrail.FunctionEntities,
				Entity: &guardrail.EntityOptions{
					BlockedTypes:       []string{tt.entityType},
					SalienceThresholds: map[string]float64{tt.entityType: 0.5},
				},
			}
			records := []guardrail.DetectionRecord{
				guardrail.EntityDetection(tt.entityType, 0.05, tt.apiSpan, guardrail.SourceAPI),
				guardrail.EntityDetection(tt.entityType, 1.0, tt.regexSpan, guardrail.SourceRegex),
			}

			got := EvaluateEntities(spec, records)
			if len(got) != 1 {
				t.Fatalf("got %d evaluations, want 1: %+v", len(got), got)
			}
			if !got[0].Blocked || got[0].Source != guardrail.SourceRegex || got[0].Severity != guardrail.SeverityHigh {
				t.Errorf("evaluation = %+v, want blocked HIGH regex match", got[0])
			}
		})
	}
}

func TestNormalizeSpan(t *testing.T) {
	tests := map[string]string{
		"555-123-4567":    "5551234567",
		"(555) 123 4567":  "5551234567",
		"Ops@Example.COM": "ops@examplecom",
		"  ":              "",
	}
	for in, want := range tests {
		if got := NormalizeSpan(in); got != want {
			t.Errorf("NormalizeSpan(%q) = %q, want %q", in, got, want)
		}
	}
}
