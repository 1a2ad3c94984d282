package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/eduwatch/StudentRiskViewer/src/logging"
)

const (
	chartWidth  = "640px"
	chartHeight = "340px"
)

// RenderHTML draws every chart of the dashboard into a single HTML page. Each
// chart keeps its stable container id, and a full page rewrite replaces any
// previously rendered charts.
func RenderHTML(d *Dashboard, w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = "Student Risk Dashboard"
	page.SetLayout(components.PageFlexLayout)
	for i := range d.Charts {
		spec := &d.Charts[i]
		ch, err := emit(spec)
		if err != nil {
			logging.Errorf("emit %s: %v (skipped)", spec.ContainerID, err)
			continue
		}
		page.AddCharts(ch)
	}
	return page.Render(w)
}

func emit(spec *ChartSpec) (components.Charter, error) {
	switch spec.Kind {
	case KindDonut:
		return emitDonut(spec), nil
	case KindBar:
		return emitBar(spec), nil
	case KindScatter:
		return emitScatter(spec), nil
	case KindBox:
		return emitBox(spec), nil
	case KindLine:
		return emitLine(spec), nil
	case KindRadar:
		return emitRadar(spec), nil
	default:
		return nil, fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
}

// yRange returns the spec's fixed y-range, or open bounds when unset.
func yRange(spec *ChartSpec) (min, max interface{}) {
	if spec.YRange == nil {
		return nil, nil
	}
	return spec.YRange[0], spec.YRange[1]
}

func initOpts(spec *ChartSpec) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: spec.ContainerID,
		Width:   chartWidth,
		Height:  chartHeight,
	})
}

func emitDonut(spec *ChartSpec) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts(spec),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)
	tr := spec.Traces[0]
	data := make([]opts.PieData, 0, len(tr.Labels))
	for i, label := range tr.Labels {
		data = append(data, opts.PieData{Name: label, Value: tr.Y[i]})
	}
	pie.AddSeries(tr.Name, data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
	)
	return pie
}

func emitBar(spec *ChartSpec) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(spec),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.XTitle}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.YTitle}),
	)
	if len(spec.Traces) > 0 {
		bar.SetXAxis(spec.Traces[0].Labels)
	}
	for _, tr := range spec.Traces {
		data := make([]opts.BarData, 0, len(tr.Y))
		for _, v := range tr.Y {
			data = append(data, opts.BarData{Value: v})
		}
		bar.AddSeries(tr.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: tr.Color}),
		)
	}
	return bar
}

func emitScatter(spec *ChartSpec) *charts.Scatter {
	sc := charts.NewScatter()
	yMin, yMax := yRange(spec)
	sc.SetGlobalOptions(
		initOpts(spec),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.XTitle, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.YTitle, Type: "value", Min: yMin, Max: yMax}),
	)
	for _, tr := range spec.Traces {
		data := make([]opts.ScatterData, 0, len(tr.Y))
		for i := range tr.Y {
			data = append(data, opts.ScatterData{
				Value:      []interface{}{tr.X[i], tr.Y[i]},
				SymbolSize: 8,
			})
		}
		sc.AddSeries(tr.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: tr.Color, Opacity: opts.Float(0.7)}),
		)
	}
	return sc
}

func emitBox(spec *ChartSpec) *charts.BoxPlot {
	bp := charts.NewBoxPlot()
	yMin, yMax := yRange(spec)
	bp.SetGlobalOptions(
		initOpts(spec),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.XTitle}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.YTitle, Min: yMin, Max: yMax}),
	)
	labels := make([]string, 0, len(spec.Traces))
	data := make([]opts.BoxPlotData, 0, len(spec.Traces))
	for _, tr := range spec.Traces {
		labels = append(labels, tr.Name)
		data = append(data, opts.BoxPlotData{Name: tr.Name, Value: fiveNumberSummary(tr.Y)})
	}
	bp.SetXAxis(labels)
	bp.AddSeries("CGPA", data)
	return bp
}

func emitLine(spec *ChartSpec) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(spec),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.XTitle, Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.YTitle}),
	)
	tr := spec.Traces[0]
	line.SetXAxis(tr.Labels)
	data := make([]opts.LineData, 0, len(tr.Y))
	for _, v := range tr.Y {
		data = append(data, opts.LineData{Value: v})
	}
	line.AddSeries(tr.Name, data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)
	return line
}

func emitRadar(spec *ChartSpec) *charts.Radar {
	radar := charts.NewRadar()
	max := maxRadial(spec)
	var indicators []*opts.Indicator
	if len(spec.Traces) > 0 {
		for _, risk := range spec.Traces[0].Labels {
			indicators = append(indicators, &opts.Indicator{Name: risk, Max: float32(max)})
		}
	}
	radar.SetGlobalOptions(
		initOpts(spec),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
	)
	for _, tr := range spec.Traces {
		radar.AddSeries(tr.Name, []opts.RadarData{{Name: tr.Name, Value: tr.Y}})
	}
	return radar
}
