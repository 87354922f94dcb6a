package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

// TracePoint is the objective score after a share of the run
type TracePoint struct {
	Percent int
	Score   float64 // mm
}

// Trace collects the score of a run as it progresses
type Trace struct {
	Objective placement.Objective
	Points    []TracePoint
}

// NewTrace starts a trace at the initial score of b
func NewTrace(b *placement.Board, obj placement.Objective) *Trace {
	t := &Trace{Objective: obj}
	t.Record(0, b.Score(obj))
	return t
}

// Record adds the score in board units at percent. A repeated percent
// replaces the previous point.
func (t *Trace) Record(percent int, score float64) {
	p := TracePoint{Percent: percent, Score: score / unitsPerMM}
	if n := len(t.Points); n > 0 && t.Points[n-1].Percent == percent {
		t.Points[n-1] = p
		return
	}
	t.Points = append(t.Points, p)
}

// Progress returns a progress callback recording the score of b
func (t *Trace) Progress(b *placement.Board) placement.ProgressFunc {
	return func(percent int) {
		t.Record(percent, b.Score(t.Objective))
	}
}

// Chart builds a line chart of the trace
func (t *Trace) Chart(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: t.Objective.String()}),
		charts.WithXAxisOpts(opts.XAxis{Name: "progress (%)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score (mm)"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(t.Points))
	ys := make([]opts.LineData, len(t.Points))
	for i, p := range t.Points {
		xs[i] = strconv.Itoa(p.Percent)
		ys[i] = opts.LineData{Value: p.Score}
	}
	line.SetXAxis(xs).AddSeries(t.Objective.String(), ys)
	return line
}

// Render writes the chart as a standalone HTML page
func (t *Trace) Render(w io.Writer, title string) error {
	return t.Chart(title).Render(w)
}

// Save writes the chart page to path
func (t *Trace) Save(path, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := t.Render(f, title); err != nil {
		f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}
