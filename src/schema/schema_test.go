package schema

import (
	"errors"
	"strings"
	"testing"
)

const samplePayload = `{
  "risk_distribution": {"Low Risk": 12, "High Risk": 5, "Moderate Risk": 8},
  "health_stats": [
    {"health": "Critical", "Risk": "High Risk", "count": 4},
    {"health": "Stable", "Risk": "Low Risk", "count": 9}
  ],
  "attendance_stats": [
    {"attendance": "Poor", "Risk": "High Risk", "count": 3}
  ],
  "scholarship_stats": [
    {"scholarship": "Endangered", "Risk": "High Risk", "count": 2}
  ],
  "gpa_data": [
    {"cgpa": 3.4, "Risk": "Low Risk"},
    {"cgpa": 2.1, "Risk": "High Risk"}
  ]
}`

func TestDecodeSamplePayload(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := p.RiskDistribution.Get("Moderate Risk"); got != 8 {
		t.Errorf("Moderate Risk count = %d, want 8", got)
	}
	if len(p.HealthStats) != 2 {
		t.Fatalf("health_stats len = %d, want 2", len(p.HealthStats))
	}
	if got := p.HealthStats[0].Category("health"); got != "Critical" {
		t.Errorf("health category = %q, want Critical", got)
	}
	if p.HealthStats[0].Risk != "High Risk" || p.HealthStats[0].Count != 4 {
		t.Errorf("health_stats[0] = %+v", p.HealthStats[0])
	}
	if len(p.GPAData) != 2 || p.GPAData[0].CGPA != 3.4 {
		t.Errorf("gpa_data = %+v", p.GPAData)
	}
}

func TestOrderedCountsPreservesDocumentOrder(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []string{"Low Risk", "High Risk", "Moderate Risk"}
	got := p.RiskDistribution.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOrderedCountsRoundTrip(t *testing.T) {
	oc := NewOrderedCounts([]string{"b", "a"}, []int{2, 1})
	b, err := oc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `{"b":2,"a":1}` {
		t.Errorf("marshal = %s", b)
	}
	var back OrderedCounts
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if back.Get("b") != 2 || back.Keys()[0] != "b" {
		t.Errorf("round trip lost order or values: %v", back.Keys())
	}
}

func TestOrderedCountsRejectsNonObject(t *testing.T) {
	var oc OrderedCounts
	if err := oc.UnmarshalJSON([]byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object input")
	}
}

func TestDecodeMissingSectionsStayNil(t *testing.T) {
	p, err := Decode(strings.NewReader(`{"risk_distribution": {"High Risk": 1}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.HealthStats != nil || p.GPAData != nil {
		t.Errorf("absent sections should be nil, got health=%v gpa=%v", p.HealthStats, p.GPAData)
	}
	if p.RiskTrend.IsZero() != true {
		t.Errorf("risk_trend should be zero when absent")
	}
}

func TestValidateRejectsNegativeCount(t *testing.T) {
	in := `{"health_stats": [{"health": "Stable", "Risk": "Low Risk", "count": -1}]}`
	_, err := Decode(strings.NewReader(in))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestValidateRejectsMissingRisk(t *testing.T) {
	in := `{"gpa_data": [{"cgpa": 2.5}]}`
	_, err := Decode(strings.NewReader(in))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestCrossTabSectionLookup(t *testing.T) {
	p := &Payload{
		HealthStats: []CrossTab{NewCrossTab("health", "Stable", "Low Risk", 1)},
		CombinedMetrics: map[string][]CrossTab{
			"housing": {NewCrossTab("housing", "Off Campus", "High Risk", 2)},
		},
	}
	if recs := p.CrossTabSection("health"); len(recs) != 1 {
		t.Errorf("health section len = %d", len(recs))
	}
	if recs := p.CrossTabSection("housing"); len(recs) != 1 || recs[0].Category("housing") != "Off Campus" {
		t.Errorf("housing section = %+v", recs)
	}
	if recs := p.CrossTabSection("unknown"); recs != nil {
		t.Errorf("unknown section = %+v, want nil", recs)
	}
}

func TestCrossTabIgnoresNonStringExtras(t *testing.T) {
	var c CrossTab
	if err := c.UnmarshalJSON([]byte(`{"health": "Stable", "Risk": "Low Risk", "count": 3, "weight": 1.5}`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if c.Category("weight") != "" {
		t.Errorf("numeric extra should not become a category")
	}
	if c.Category("health") != "Stable" {
		t.Errorf("health category = %q", c.Category("health"))
	}
}
