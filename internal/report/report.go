// Package report renders an HTML report of a recording: hypnogram, channel
// traces and detected events, as a self-contained page of ECharts charts.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/somnolabs/somnoscope/internal/eeg"
)

// maxPointsPerTrace bounds the payload size of a channel trace; longer series
// are downsampled by stride.
const maxPointsPerTrace = 4000

// stageLevel maps stages onto the conventional hypnogram y-axis: Wake on
// top, deep sleep at the bottom, REM between Wake and the NREM stages.
var stageLevel = map[eeg.Stage]float64{
	eeg.StageWake: 4,
	eeg.StageREM:  3,
	eeg.StageN1:   2,
	eeg.StageN2:   1,
	eeg.StageN3:   0,
}

// Render writes the full HTML report for a dataset and its detected events.
func Render(w io.Writer, ds *eeg.Dataset, events []eeg.Event) error {
	if ds.Samples() == 0 {
		return fmt.Errorf("rendering report: %w", eeg.ErrEmptyDataset)
	}

	page := components.NewPage()
	page.PageTitle = "somnoscope report"

	if ds.Stages != nil {
		page.AddCharts(hypnogramChart(ds))
	}
	for _, name := range ds.ChannelNames() {
		page.AddCharts(channelChart(ds, name))
	}
	if len(events) > 0 {
		page.AddCharts(eventChart(ds, events))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func hypnogramChart(ds *eeg.Dataset) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Hypnogram",
			Subtitle: "4=Wake 3=REM 2=N1 1=N2 0=N3",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 4}),
	)

	stride := strideFor(ds.Samples())
	xs := make([]string, 0, ds.Samples()/stride+1)
	data := make([]opts.LineData, 0, ds.Samples()/stride+1)
	for i := 0; i < ds.Samples(); i += stride {
		xs = append(xs, formatSeconds(ds.Time[i]))
		data = append(data, opts.LineData{Value: stageLevel[ds.StageAt(i)]})
	}

	line.SetXAxis(xs).AddSeries("stage", data)
	return line
}

func channelChart(ds *eeg.Dataset, name string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "260px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Channel %s (µV)", name)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	series := ds.Channels[name]
	stride := strideFor(len(series))
	xs := make([]string, 0, len(series)/stride+1)
	data := make([]opts.LineData, 0, len(series)/stride+1)
	for i := 0; i < len(series); i += stride {
		xs = append(xs, formatSeconds(ds.Time[i]))
		data = append(data, opts.LineData{Value: series[i]})
	}

	line.SetXAxis(xs).AddSeries(name, data)
	return line
}

func eventChart(ds *eeg.Dataset, events []eeg.Event) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Detected events",
			Subtitle: fmt.Sprintf("%d events over %s", len(events), formatSeconds(ds.Duration())),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time (s)", Min: 0, Max: math.Ceil(ds.Duration())}),
	)

	byType := make(map[eeg.EventType][]opts.ScatterData)
	for _, ev := range events {
		byType[ev.Type] = append(byType[ev.Type], opts.ScatterData{
			Value: []interface{}{ev.Time, ev.Confidence},
		})
	}
	for _, t := range []eeg.EventType{eeg.EventSpindle, eeg.EventKComplex, eeg.EventREMBurst} {
		if data, ok := byType[t]; ok {
			scatter.AddSeries(string(t), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
		}
	}
	return scatter
}

func strideFor(n int) int {
	if n <= maxPointsPerTrace {
		return 1
	}
	return int(math.Ceil(float64(n) / float64(maxPointsPerTrace)))
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.1fs", s)
}
