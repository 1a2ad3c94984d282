package render

import (
	"strings"
	"testing"

	"github.com/eduwatch/StudentRiskViewer/src/config"
	"github.com/eduwatch/StudentRiskViewer/src/schema"
)

func fullPayload() *schema.Payload {
	return &schema.Payload{
		RiskDistribution: schema.NewOrderedCounts(
			[]string{"High Risk", "Moderate Risk", "Low Risk"},
			[]int{5, 8, 12},
		),
		HealthStats: []schema.CrossTab{
			schema.NewCrossTab("health", "Critical", "High Risk", 4),
			schema.NewCrossTab("health", "Stable", "Low Risk", 9),
		},
		AttendanceStats: []schema.CrossTab{
			schema.NewCrossTab("attendance", "Poor", "High Risk", 3),
			schema.NewCrossTab("attendance", "Excellent", "Low Risk", 10),
		},
		ScholarshipStats: []schema.CrossTab{
			schema.NewCrossTab("scholarship", "Endangered", "High Risk", 2),
			schema.NewCrossTab("scholarship", "Safe", "Low Risk", 11),
		},
		GPAData: []schema.GPAPoint{
			{CGPA: 3.4, Risk: "Low Risk"},
			{CGPA: 2.1, Risk: "High Risk"},
			{CGPA: 3.0, Risk: "Low Risk"},
			{CGPA: 2.6, Risk: "Moderate Risk"},
		},
	}
}

func TestBuildProducesAllCharts(t *testing.T) {
	d := Build(fullPayload(), config.DefaultTables())
	want := []string{
		ContainerRiskDistribution,
		"healthRiskChart",
		"attendanceRiskChart",
		"scholarshipRiskChart",
		ContainerGPAScatter,
		ContainerGPABoxes,
		ContainerRiskTrend,
		ContainerCombinedRadar,
	}
	got := d.ContainerIDs()
	if len(got) != len(want) {
		t.Fatalf("containers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("containers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDistributionIsDataDriven(t *testing.T) {
	p := &schema.Payload{
		RiskDistribution: schema.NewOrderedCounts(
			[]string{"Extreme Risk", "Low Risk"},
			[]int{3, 4},
		),
	}
	d := Build(p, config.DefaultTables())
	spec := d.Spec(ContainerRiskDistribution)
	if spec == nil {
		t.Fatal("no distribution chart")
	}
	tr := spec.Traces[0]
	if len(tr.Labels) != 2 || tr.Labels[0] != "Extreme Risk" {
		t.Errorf("labels = %v, want the payload's own keys in order", tr.Labels)
	}
	if tr.Y[0] != 3 || tr.Y[1] != 4 {
		t.Errorf("values = %v", tr.Y)
	}
}

func TestCrossTabAbsentCellsDefaultToZero(t *testing.T) {
	d := Build(fullPayload(), config.DefaultTables())
	spec := d.Spec("healthRiskChart")
	if spec == nil {
		t.Fatal("no health chart")
	}
	// Series order follows the risk-level table; categories follow the
	// metric table: Critical, Unstable, Stable.
	high := spec.Traces[0]
	if high.Name != "High Risk" {
		t.Fatalf("traces[0] = %q", high.Name)
	}
	if high.Y[0] != 4 {
		t.Errorf("High Risk x Critical = %v, want 4", high.Y[0])
	}
	if high.Y[1] != 0 || high.Y[2] != 0 {
		t.Errorf("absent cells = %v, want zeros", high.Y[1:])
	}
	low := spec.Traces[2]
	if low.Y[2] != 9 {
		t.Errorf("Low Risk x Stable = %v, want 9", low.Y[2])
	}
}

func TestCrossTabRequiresExactCategoryMatch(t *testing.T) {
	p := &schema.Payload{
		HealthStats: []schema.CrossTab{
			schema.NewCrossTab("health", "stable", "Low Risk", 9), // wrong case
		},
	}
	d := Build(p, config.DefaultTables())
	spec := d.Spec("healthRiskChart")
	if spec == nil {
		t.Fatal("no health chart")
	}
	for _, tr := range spec.Traces {
		for i, v := range tr.Y {
			if v != 0 {
				t.Errorf("%s[%d] = %v, want 0 for non-matching category case", tr.Name, i, v)
			}
		}
	}
}

func TestGPAScatterSubsequenceIndexing(t *testing.T) {
	d := Build(fullPayload(), config.DefaultTables())
	spec := d.Spec(ContainerGPAScatter)
	if spec == nil {
		t.Fatal("no scatter chart")
	}
	if spec.YRange == nil || spec.YRange[0] != 1.5 || spec.YRange[1] != 4.0 {
		t.Errorf("y range = %v, want [1.5 4]", spec.YRange)
	}
	var low *Trace
	for i := range spec.Traces {
		if spec.Traces[i].Name == "Low Risk" {
			low = &spec.Traces[i]
		}
	}
	if low == nil {
		t.Fatal("no Low Risk trace")
	}
	// Two Low Risk points, indexed 1 and 2 within their own subsequence.
	if len(low.X) != 2 || low.X[0] != 1 || low.X[1] != 2 {
		t.Errorf("x = %v, want [1 2]", low.X)
	}
	if low.Y[0] != 3.4 || low.Y[1] != 3.0 {
		t.Errorf("y = %v", low.Y)
	}
}

func TestGPABoxesCarryRawObservations(t *testing.T) {
	d := Build(fullPayload(), config.DefaultTables())
	spec := d.Spec(ContainerGPABoxes)
	if spec == nil {
		t.Fatal("no box chart")
	}
	for _, tr := range spec.Traces {
		if tr.Name == "Moderate Risk" {
			if len(tr.Y) != 1 || tr.Y[0] != 2.6 {
				t.Errorf("Moderate Risk observations = %v", tr.Y)
			}
		}
	}
}

func TestTrendFollowsDocumentOrder(t *testing.T) {
	p := &schema.Payload{
		RiskDistribution: schema.NewOrderedCounts(
			[]string{"Low Risk", "High Risk"},
			[]int{7, 2},
		),
	}
	d := Build(p, config.DefaultTables())
	spec := d.Spec(ContainerRiskTrend)
	if spec == nil {
		t.Fatal("no trend chart")
	}
	tr := spec.Traces[0]
	if tr.Labels[0] != "Low Risk" || tr.Labels[1] != "High Risk" {
		t.Errorf("labels = %v, want document order preserved", tr.Labels)
	}
	if tr.Y[0] != 7 || tr.Y[1] != 2 {
		t.Errorf("values = %v", tr.Y)
	}
}

func TestRadarCountsRecordsNotSums(t *testing.T) {
	d := Build(fullPayload(), config.DefaultTables())
	spec := d.Spec(ContainerCombinedRadar)
	if spec == nil {
		t.Fatal("no radar chart")
	}
	health := spec.Traces[0]
	if health.Name != "Health" {
		t.Fatalf("traces[0] = %q", health.Name)
	}
	// One High Risk record in health_stats with count 4: the radial value is
	// the record count (1), not the summed count (4).
	if health.Y[0] != 1 {
		t.Errorf("High Risk radial = %v, want 1", health.Y[0])
	}
}

func TestRadarSkippedWhenSectionMissing(t *testing.T) {
	p := fullPayload()
	p.ScholarshipStats = nil
	d := Build(p, config.DefaultTables())
	if d.Spec(ContainerCombinedRadar) != nil {
		t.Error("radar must be skipped when a metric section is absent")
	}
	// The remaining charts still render.
	if d.Spec(ContainerRiskDistribution) == nil || d.Spec(ContainerGPAScatter) == nil {
		t.Error("other charts missing")
	}
}

func TestBuildSkipsOnlyTheFailingChart(t *testing.T) {
	p := fullPayload()
	p.GPAData = nil // scatter and boxes have no input
	d := Build(p, config.DefaultTables())
	if d.Spec(ContainerGPAScatter) != nil || d.Spec(ContainerGPABoxes) != nil {
		t.Error("gpa charts should be absent without gpa_data")
	}
	if d.Spec(ContainerRiskDistribution) == nil || d.Spec("healthRiskChart") == nil {
		t.Error("unrelated charts must still be derived")
	}
}

func TestBuildEmptyPayload(t *testing.T) {
	d := Build(&schema.Payload{}, config.DefaultTables())
	if len(d.Charts) != 0 {
		t.Errorf("empty payload produced charts: %v", d.ContainerIDs())
	}
}

func TestConfiguredMetricBeyondDefaults(t *testing.T) {
	tables := config.DefaultTables()
	tables.Metrics = append(tables.Metrics, config.MetricTable{
		Name:        "housing",
		Title:       "Housing vs Risk Level",
		AxisTitle:   "Housing",
		Field:       "housing",
		Categories:  []string{"On Campus", "Off Campus"},
		ContainerID: "housingRiskChart",
	})
	p := fullPayload()
	p.CombinedMetrics = map[string][]schema.CrossTab{
		"housing": {schema.NewCrossTab("housing", "Off Campus", "High Risk", 6)},
	}
	d := Build(p, tables)
	spec := d.Spec("housingRiskChart")
	if spec == nil {
		t.Fatal("configured metric produced no chart")
	}
	if spec.Traces[0].Y[1] != 6 {
		t.Errorf("High Risk x Off Campus = %v, want 6", spec.Traces[0].Y[1])
	}
}

func TestRiskColorFallbackPalette(t *testing.T) {
	tables := config.DefaultTables()
	tables.RiskLevels = append(tables.RiskLevels, "Extreme Risk")
	// Only three colors configured for four levels.
	c := riskColor(tables, 3)
	if !strings.HasPrefix(c, "#") {
		t.Errorf("fallback color = %q", c)
	}
}
