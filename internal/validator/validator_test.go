package validator

import (
	"testing"
)

func TestValidateRunRequest(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name  string
		body  map[string]interface{}
		valid bool
	}{
		{"empty body", map[string]interface{}{}, true},
		{"all options", map[string]interface{}{
			"skip_analysis": true,
			"topic":         "NVDA earnings",
			"collect_data":  true,
			"quick":         false,
		}, true},
		{"wrong type", map[string]interface{}{"skip_analysis": "yes"}, false},
		{"unknown field", map[string]interface{}{"skip": true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateRunRequest(tt.body)
			if result.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (errors: %+v)", result.Valid, tt.valid, result.Errors)
			}
		})
	}
}

func TestValidateAgentRequest(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ok := v.ValidateAgentRequest(map[string]interface{}{
		"topic": "BTC funding",
		"seed":  map[string]interface{}{"report": "yesterday's report"},
	})
	if !ok.Valid {
		t.Errorf("expected valid, got %+v", ok.Errors)
	}

	bad := v.ValidateAgentRequest(map[string]interface{}{
		"seed": map[string]interface{}{"report": 42},
	})
	if bad.Valid {
		t.Error("non-string seed values must be rejected")
	}
}

func TestValidateRejectRequest(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if r := v.ValidateRejectRequest(map[string]interface{}{"reason": "bad tone"}); !r.Valid {
		t.Errorf("expected valid, got %+v", r.Errors)
	}
	if r := v.ValidateRejectRequest(map[string]interface{}{"why": "no"}); r.Valid {
		t.Error("unknown fields must be rejected")
	}
}
