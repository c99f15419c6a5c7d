package query

import (
	"errors"
	"testing"
	"time"

	"guardrail-hq/sentinel/pkg/runlog"
)

func TestValidate(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name    string
		query   runlog.Query
		wantErr bool
	}{
		{"empty", runlog.Query{}, false},
		{"valid range", runlog.Query{StartTime: &earlier, EndTime: &now, Limit: 10, SortOrder: "asc"}, false},
		{"negative limit", runlog.Query{Limit: -1}, true},
		{"limit too large", runlog.Query{Limit: MaxLimit + 1}, true},
		{"negative offset", runlog.Query{Offset: -5}, true},
		{"bad sort order", runlog.Query{SortOrder: "sideways"}, true},
		{"inverted range", runlog.Query{StartTime: &now, EndTime: &earlier}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var qe *runlog.QueryError
			if err != nil && !errors.As(err, &qe) {
				t.Errorf("error %v is not a *runlog.QueryError", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	q := &runlog.Query{}
	ApplyDefaults(q)
	if q.Limit != DefaultLimit || q.SortOrder != "desc" {
		t.Errorf("defaults = %+v", q)
	}

	q = &runlog.Query{Limit: 5, SortOrder: "asc"}
	ApplyDefaults(q)
	if q.Limit != 5 || q.SortOrder != "asc" {
		t.Errorf("explicit values overwritten: %+v", q)
	}
}
