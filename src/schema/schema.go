// Package schema defines the typed analytics payload returned by the
// visualization endpoint and validates its shape at the HTTP boundary.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed tags responses that decoded but violate the expected shape.
// Callers match it with errors.Is.
var ErrMalformed = errors.New("malformed response")

// Payload is the analytics object carried under the "data" field of a
// visualization response. Absent sections stay nil; the rendering pipeline
// skips the charts that depend on them.
type Payload struct {
	RiskDistribution OrderedCounts `json:"risk_distribution"`
	HealthStats      []CrossTab    `json:"health_stats"`
	AttendanceStats  []CrossTab    `json:"attendance_stats"`
	ScholarshipStats []CrossTab    `json:"scholarship_stats"`
	GPAData          []GPAPoint    `json:"gpa_data"`

	// Extra sections the service also emits. They are decoded for
	// completeness but the charts recompute trend and combined metrics from
	// the primary sections.
	PerformanceStats []PerformanceStat     `json:"performance_stats,omitempty"`
	RiskTrend        OrderedCounts         `json:"risk_trend,omitempty"`
	CombinedMetrics  map[string][]CrossTab `json:"combined_metrics,omitempty"`
}

// CrossTab is one cross-tabulation cell: a category value for some metric, a
// risk level, and the observed student count. The category field name is
// metric-specific ("health", "attendance", ...), so all non-reserved string
// fields are retained and looked up via Category.
type CrossTab struct {
	Risk   string
	Count  int
	fields map[string]string
}

// Category returns the category value stored under the given JSON field name,
// or "" when the record does not carry it.
func (c CrossTab) Category(field string) string {
	return c.fields[field]
}

// UnmarshalJSON keeps Risk and count typed and collects the remaining
// string-valued fields as candidate category values.
func (c *CrossTab) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.fields = make(map[string]string, len(raw))
	for k, v := range raw {
		switch k {
		case "Risk":
			if err := json.Unmarshal(v, &c.Risk); err != nil {
				return fmt.Errorf("cross-tab Risk: %w", err)
			}
		case "count":
			if err := json.Unmarshal(v, &c.Count); err != nil {
				return fmt.Errorf("cross-tab count: %w", err)
			}
		default:
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				c.fields[k] = s
			}
		}
	}
	return nil
}

// MarshalJSON restores the flat wire shape.
func (c CrossTab) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.fields)+2)
	for k, v := range c.fields {
		out[k] = v
	}
	out["Risk"] = c.Risk
	out["count"] = c.Count
	return json.Marshal(out)
}

// NewCrossTab builds a cell for tests and local construction.
func NewCrossTab(field, category, risk string, count int) CrossTab {
	return CrossTab{Risk: risk, Count: count, fields: map[string]string{field: category}}
}

// GPAPoint is one per-student observation.
type GPAPoint struct {
	CGPA float64 `json:"cgpa"`
	Risk string  `json:"Risk"`
}

// PerformanceStat is the per-risk-level CGPA aggregate the service computes.
type PerformanceStat struct {
	Risk string  `json:"Risk"`
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// OrderedCounts is a string-to-count mapping that preserves the key order of
// the JSON document, so charts iterating the keys stay deterministic and match
// what the service emitted.
type OrderedCounts struct {
	keys   []string
	counts map[string]int
}

// NewOrderedCounts builds an OrderedCounts from parallel keys/values.
func NewOrderedCounts(keys []string, values []int) OrderedCounts {
	oc := OrderedCounts{counts: make(map[string]int, len(keys))}
	for i, k := range keys {
		oc.keys = append(oc.keys, k)
		oc.counts[k] = values[i]
	}
	return oc
}

// Keys returns the labels in document order.
func (o OrderedCounts) Keys() []string { return o.keys }

// Get returns the count for a label.
func (o OrderedCounts) Get(label string) int { return o.counts[label] }

// Len reports the number of labels.
func (o OrderedCounts) Len() int { return len(o.keys) }

// IsZero reports whether the section was absent from the payload.
func (o OrderedCounts) IsZero() bool { return o.counts == nil }

// UnmarshalJSON walks the object tokens so key order survives decoding.
func (o *OrderedCounts) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ordered counts: expected object, got %v", tok)
	}
	o.keys = nil
	o.counts = make(map[string]int)
	for dec.More() {
		kTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kTok.(string)
		if !ok {
			return fmt.Errorf("ordered counts: non-string key %v", kTok)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("ordered counts %q: %w", key, err)
		}
		o.keys = append(o.keys, key)
		o.counts[key] = int(v)
	}
	_, err = dec.Token() // closing brace
	return err
}

// MarshalJSON emits the object with keys in stored order.
func (o OrderedCounts) MarshalJSON() ([]byte, error) {
	if o.counts == nil {
		return []byte("null"), nil
	}
	buf := []byte{'{'}
	for i, k := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, []byte(fmt.Sprintf("%d", o.counts[k]))...)
	}
	return append(buf, '}'), nil
}

// CrossTabSection returns the cross-tab records for a metric by name. The
// three primary sections have dedicated payload fields; any further metric a
// deployment configures is looked up in combined_metrics.
func (p *Payload) CrossTabSection(name string) []CrossTab {
	switch name {
	case "health":
		return p.HealthStats
	case "attendance":
		return p.AttendanceStats
	case "scholarship":
		return p.ScholarshipStats
	default:
		return p.CombinedMetrics[name]
	}
}

// Decode reads and validates a payload. Shape violations are reported as
// ErrMalformed so the caller can surface them distinctly from transport or
// server errors.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the invariants the charts rely on: counts are non-negative
// and every record names a risk level.
func (p *Payload) Validate() error {
	for _, k := range p.RiskDistribution.Keys() {
		if p.RiskDistribution.Get(k) < 0 {
			return fmt.Errorf("%w: risk_distribution[%q] is negative", ErrMalformed, k)
		}
	}
	sections := []struct {
		name string
		recs []CrossTab
	}{
		{"health_stats", p.HealthStats},
		{"attendance_stats", p.AttendanceStats},
		{"scholarship_stats", p.ScholarshipStats},
	}
	for _, s := range sections {
		for i, rec := range s.recs {
			if rec.Risk == "" {
				return fmt.Errorf("%w: %s[%d] missing Risk", ErrMalformed, s.name, i)
			}
			if rec.Count < 0 {
				return fmt.Errorf("%w: %s[%d] negative count", ErrMalformed, s.name, i)
			}
		}
	}
	for i, g := range p.GPAData {
		if g.Risk == "" {
			return fmt.Errorf("%w: gpa_data[%d] missing Risk", ErrMalformed, i)
		}
	}
	return nil
}
