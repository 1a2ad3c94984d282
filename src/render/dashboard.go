// Package render turns an analytics payload into the dashboard's chart
// specifications and draws them through the charting backends. Derivation is
// kept separate from emission so the regrouping, cross-tabulation and
// filtering logic stays testable without a rendering engine.
package render

import (
	"github.com/eduwatch/StudentRiskViewer/src/config"
	"github.com/eduwatch/StudentRiskViewer/src/logging"
	"github.com/eduwatch/StudentRiskViewer/src/schema"
)

// Stable container IDs for the charts that are not metric-table driven.
const (
	ContainerRiskDistribution = "riskDistribution"
	ContainerGPAScatter       = "gpaChart"
	ContainerGPABoxes         = "performanceIndicatorChart"
	ContainerRiskTrend        = "riskTrendChart"
	ContainerCombinedRadar    = "combinedMetricsChart"
)

// Kind selects how a chart's traces are drawn.
type Kind string

const (
	KindDonut   Kind = "donut"
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
	KindBox     Kind = "box"
	KindLine    Kind = "line"
	KindRadar   Kind = "radar"
)

// Trace is one named data series within a chart. Labels carry categorical
// axes (pie slices, bar groups, radar spokes); X/Y carry numeric data. For
// box traces Y holds the raw observations and the five-number summary is
// computed at emission time.
type Trace struct {
	Name   string
	Labels []string
	X      []float64
	Y      []float64
	Color  string
}

// ChartSpec is one derived chart: traces plus the layout facts the emitters
// need. Specs are ephemeral; a new payload produces a fresh set.
type ChartSpec struct {
	ContainerID string
	Title       string
	Kind        Kind
	Traces      []Trace
	XTitle      string
	YTitle      string
	YRange      *[2]float64
}

// Dashboard is the full derived chart set for one payload, in draw order.
type Dashboard struct {
	Charts []ChartSpec
}

// Spec returns the chart bound to the given container, or nil.
func (d *Dashboard) Spec(containerID string) *ChartSpec {
	for i := range d.Charts {
		if d.Charts[i].ContainerID == containerID {
			return &d.Charts[i]
		}
	}
	return nil
}

// ContainerIDs lists the containers the dashboard will draw into.
func (d *Dashboard) ContainerIDs() []string {
	ids := make([]string, 0, len(d.Charts))
	for _, c := range d.Charts {
		ids = append(ids, c.ContainerID)
	}
	return ids
}

// Build derives every chart the payload supports. Each derivation runs
// guarded: a malformed section skips that one chart and the rest still
// render. Missing top-level sections simply produce no chart.
func Build(p *schema.Payload, tables config.Tables) *Dashboard {
	d := &Dashboard{}
	add := func(name string, fn func() *ChartSpec) {
		defer func() {
			if r := recover(); r != nil {
				logging.Errorf("chart %s: %v (skipped)", name, r)
			}
		}()
		if spec := fn(); spec != nil {
			d.Charts = append(d.Charts, *spec)
		}
	}

	add(ContainerRiskDistribution, func() *ChartSpec { return buildDistribution(p, tables) })
	for _, m := range tables.Metrics {
		metric := m
		add(metric.ContainerID, func() *ChartSpec { return buildCrossTab(p, tables, metric) })
	}
	add(ContainerGPAScatter, func() *ChartSpec { return buildGPAScatter(p, tables) })
	add(ContainerGPABoxes, func() *ChartSpec { return buildGPABoxes(p, tables) })
	add(ContainerRiskTrend, func() *ChartSpec { return buildTrend(p) })
	add(ContainerCombinedRadar, func() *ChartSpec { return buildRadar(p, tables) })
	return d
}

// buildDistribution derives the donut. Slices are data-driven: whatever keys
// the distribution carries are rendered, not a fixed three.
func buildDistribution(p *schema.Payload, tables config.Tables) *ChartSpec {
	if p.RiskDistribution.IsZero() || p.RiskDistribution.Len() == 0 {
		return nil
	}
	keys := p.RiskDistribution.Keys()
	tr := Trace{Name: "Risk"}
	for _, k := range keys {
		tr.Labels = append(tr.Labels, k)
		tr.Y = append(tr.Y, float64(p.RiskDistribution.Get(k)))
	}
	return &ChartSpec{
		ContainerID: ContainerRiskDistribution,
		Title:       "Risk Distribution",
		Kind:        KindDonut,
		Traces:      []Trace{tr},
	}
}

// buildCrossTab derives one grouped-bar chart from a metric table: one bar
// group per configured category, one colored series per risk level, counts
// looked up by exact (category, risk) match with absent cells defaulting to 0.
func buildCrossTab(p *schema.Payload, tables config.Tables, m config.MetricTable) *ChartSpec {
	recs := p.CrossTabSection(m.Name)
	if recs == nil {
		return nil
	}
	spec := &ChartSpec{
		ContainerID: m.ContainerID,
		Title:       m.Title,
		Kind:        KindBar,
		XTitle:      m.AxisTitle,
		YTitle:      "Number of Students",
	}
	for i, risk := range tables.RiskLevels {
		tr := Trace{Name: risk, Labels: m.Categories, Color: riskColor(tables, i)}
		for _, cat := range m.Categories {
			tr.Y = append(tr.Y, float64(cellCount(recs, m.Field, cat, risk)))
		}
		spec.Traces = append(spec.Traces, tr)
	}
	return spec
}

// cellCount finds the count for an exact (category, risk) pair; 0 if absent.
func cellCount(recs []schema.CrossTab, field, category, risk string) int {
	for _, r := range recs {
		if r.Category(field) == category && r.Risk == risk {
			return r.Count
		}
	}
	return 0
}

// buildGPAScatter derives per-risk scatter traces: x is the 1-based position
// within that risk level's subsequence, y is the cgpa, plotted in received
// order with a fixed y-range.
func buildGPAScatter(p *schema.Payload, tables config.Tables) *ChartSpec {
	if p.GPAData == nil {
		return nil
	}
	spec := &ChartSpec{
		ContainerID: ContainerGPAScatter,
		Title:       "CGPA Distribution by Risk Level",
		Kind:        KindScatter,
		XTitle:      "Student Number",
		YTitle:      "CGPA",
		YRange:      &[2]float64{1.5, 4.0},
	}
	for i, risk := range tables.RiskLevels {
		tr := Trace{Name: risk, Color: riskColor(tables, i)}
		n := 0
		for _, g := range p.GPAData {
			if g.Risk != risk {
				continue
			}
			n++
			tr.X = append(tr.X, float64(n))
			tr.Y = append(tr.Y, g.CGPA)
		}
		spec.Traces = append(spec.Traces, tr)
	}
	return spec
}

// buildGPABoxes derives one box-and-whisker trace per risk level over the
// same filtered cgpa values as the scatter. Y carries the raw observations.
func buildGPABoxes(p *schema.Payload, tables config.Tables) *ChartSpec {
	if p.GPAData == nil {
		return nil
	}
	spec := &ChartSpec{
		ContainerID: ContainerGPABoxes,
		Title:       "GPA Distribution by Risk Level",
		Kind:        KindBox,
		XTitle:      "Risk Level",
		YTitle:      "CGPA",
		YRange:      &[2]float64{1.5, 4.0},
	}
	for i, risk := range tables.RiskLevels {
		tr := Trace{Name: risk, Color: riskColor(tables, i)}
		for _, g := range p.GPAData {
			if g.Risk == risk {
				tr.Y = append(tr.Y, g.CGPA)
			}
		}
		spec.Traces = append(spec.Traces, tr)
	}
	return spec
}

// buildTrend derives the connected line over the distribution's keys in their
// document order.
func buildTrend(p *schema.Payload) *ChartSpec {
	if p.RiskDistribution.IsZero() || p.RiskDistribution.Len() == 0 {
		return nil
	}
	tr := Trace{Name: "Students"}
	for _, k := range p.RiskDistribution.Keys() {
		tr.Labels = append(tr.Labels, k)
		tr.Y = append(tr.Y, float64(p.RiskDistribution.Get(k)))
	}
	return &ChartSpec{
		ContainerID: ContainerRiskTrend,
		Title:       "Risk Level Distribution Trend",
		Kind:        KindLine,
		XTitle:      "Risk Level",
		YTitle:      "Number of Students",
		Traces:      []Trace{tr},
	}
}

// buildRadar derives the combined-metrics radar: one spoke per risk level,
// one polygon per metric. It is only attempted when every configured metric's
// section is present. The radial value is the number of matching records, not
// the summed count field, matching the service's historical dashboard.
func buildRadar(p *schema.Payload, tables config.Tables) *ChartSpec {
	for _, m := range tables.Metrics {
		if p.CrossTabSection(m.Name) == nil {
			return nil
		}
	}
	if len(tables.Metrics) == 0 {
		return nil
	}
	spec := &ChartSpec{
		ContainerID: ContainerCombinedRadar,
		Title:       "Combined Risk Metrics Analysis",
		Kind:        KindRadar,
	}
	for _, m := range tables.Metrics {
		tr := Trace{Name: titleCase(m.Name), Labels: tables.RiskLevels}
		for _, risk := range tables.RiskLevels {
			n := 0
			for _, rec := range p.CrossTabSection(m.Name) {
				if rec.Risk == risk {
					n++
				}
			}
			tr.Y = append(tr.Y, float64(n))
		}
		spec.Traces = append(spec.Traces, tr)
	}
	return spec
}

// riskColor returns the configured color for the i-th risk level, falling
// back to a rotating default palette when the config supplies fewer colors.
func riskColor(tables config.Tables, i int) string {
	if i < len(tables.RiskColors) {
		return tables.RiskColors[i]
	}
	fallback := []string{"#ff6b6b", "#ffd93d", "#6bcb77", "#4d96ff", "#b983ff"}
	return fallback[i%len(fallback)]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}

// maxRadial returns the largest radial value across the radar's traces, used
// to fix the radar axis range.
func maxRadial(spec *ChartSpec) float64 {
	max := 0.0
	for _, tr := range spec.Traces {
		for _, v := range tr.Y {
			if v > max {
				max = v
			}
		}
	}
	if max <= 0 {
		max = 1
	}
	return max
}
