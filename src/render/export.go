package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/eduwatch/StudentRiskViewer/src/logging"
)

// PNG export filenames, keyed by the container whose chart they mirror.
var exportNames = map[string]string{
	ContainerRiskDistribution: "risk_distribution.png",
	ContainerRiskTrend:        "risk_trend.png",
}

// Writer persists a dashboard to an output directory: the full HTML page plus
// standalone PNG exports of the distribution and trend charts. Every write
// first clears the previous render so stale charts never linger.
type Writer struct {
	OutDir string
}

// Write renders the dashboard and returns the HTML path.
func (w *Writer) Write(d *Dashboard) (string, error) {
	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return "", err
	}
	w.clearStale()

	htmlPath := filepath.Join(w.OutDir, "dashboard.html")
	tmp := htmlPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if err := RenderHTML(d, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("render dashboard: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, htmlPath); err != nil {
		return "", err
	}

	if spec := d.Spec(ContainerRiskDistribution); spec != nil {
		w.exportPNG(exportNames[ContainerRiskDistribution], func() (image.Image, error) {
			return distributionImage(spec)
		})
	}
	if spec := d.Spec(ContainerRiskTrend); spec != nil {
		w.exportPNG(exportNames[ContainerRiskTrend], func() (image.Image, error) {
			return trendImage(spec)
		})
	}
	return htmlPath, nil
}

// clearStale removes outputs from a previous payload.
func (w *Writer) clearStale() {
	for _, name := range exportNames {
		if err := os.Remove(filepath.Join(w.OutDir, name)); err != nil && !os.IsNotExist(err) {
			logging.Warnf("remove stale export %s: %v", name, err)
		}
	}
}

// exportPNG renders one standalone chart; failures are logged, not fatal,
// so a single export cannot sink the dashboard write.
func (w *Writer) exportPNG(name string, render func() (image.Image, error)) {
	img, err := render()
	if err != nil {
		logging.Errorf("export %s: %v (skipped)", name, err)
		return
	}
	stamped := annotate(img, "riskctl export "+time.Now().Format("2006-01-02 15:04"))
	path := filepath.Join(w.OutDir, name)
	f, err := os.Create(path)
	if err != nil {
		logging.Errorf("export %s: %v", name, err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, stamped); err != nil {
		logging.Errorf("encode %s: %v", name, err)
	}
}

// distributionImage renders the risk distribution as a bar chart PNG.
func distributionImage(spec *ChartSpec) (image.Image, error) {
	tr := spec.Traces[0]
	bars := make([]chart.Value, 0, len(tr.Labels))
	for i, label := range tr.Labels {
		col := drawing.ColorFromHex(strings.TrimPrefix(riskHexFor(i), "#"))
		bars = append(bars, chart.Value{
			Value: tr.Y[i],
			Label: label,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}
	ch := chart.BarChart{
		Title:      spec.Title,
		Background: chart.Style{Padding: chart.Box{Top: 28, Left: 16, Right: 12, Bottom: 28}},
		Width:      640,
		Height:     340,
		BarWidth:   64,
		Bars:       bars,
	}
	return renderToImage(func(buf *bytes.Buffer) error { return ch.Render(chart.PNG, buf) })
}

// trendImage renders the risk trend line PNG. go-chart needs at least two X
// values, so a single-key distribution is padded with a duplicate point.
func trendImage(spec *ChartSpec) (image.Image, error) {
	tr := spec.Traces[0]
	xs := make([]float64, len(tr.Y))
	ys := append([]float64(nil), tr.Y...)
	ticks := make([]chart.Tick, 0, len(tr.Labels))
	for i := range tr.Y {
		xs[i] = float64(i)
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: tr.Labels[i]})
	}
	if len(xs) == 1 {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
		ticks = append(ticks, chart.Tick{Value: 1, Label: tr.Labels[0]})
	}
	lineColor := drawing.ColorFromHex("1a73e8")
	ch := chart.Chart{
		Title:      spec.Title,
		Background: chart.Style{Padding: chart.Box{Top: 28, Left: 16, Right: 12, Bottom: 28}},
		Width:      640,
		Height:     340,
		XAxis:      chart.XAxis{Ticks: ticks},
		YAxis:      chart.YAxis{Name: spec.YTitle},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    tr.Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 3,
					DotColor:    lineColor,
					DotWidth:    4,
				},
			},
		},
	}
	return renderToImage(func(buf *bytes.Buffer) error { return ch.Render(chart.PNG, buf) })
}

func renderToImage(render func(*bytes.Buffer) error) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// riskHexFor picks a palette color for the i-th distribution slice.
func riskHexFor(i int) string {
	palette := []string{"#ff6b6b", "#ffd93d", "#6bcb77", "#4d96ff", "#b983ff"}
	return palette[i%len(palette)]
}

// annotate draws a small footer string onto the image near the bottom-left.
func annotate(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 4
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 190})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
