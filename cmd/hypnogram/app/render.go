package app

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

const (
	defaultContentWidth = 1200

	hypnogramHeight = 150
	traceHeight     = 160
	eventLaneHeight = 26
	laneGap         = 12

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 50
	defaultRightBorder  = 40
)

// RenderConfig holds the configuration options for hypnogram rendering.
type RenderConfig struct {
	TraceChannel string // channel drawn in the signal trace lane
	Annotations  bool   // draw time scale and info bar
	Width        int    // content width in pixels (0 for default)
}

// layout captures the computed pixel geometry of one render.
type layout struct {
	Width          int // content width
	HypnogramTop   int
	TraceTop       int
	EventLaneTop   int
	ContentLeft    int
	ContentBottom  int
	SecondsPerPx   float64
	TimeStart      float64
}

// Renderer draws a stored session as a stacked strip: stage hypnogram,
// one channel's signal trace and a detected-event lane.
type Renderer struct {
	config    RenderConfig
	annotator *Annotator
}

// NewRenderer creates a renderer with the given configuration.
func NewRenderer(config RenderConfig) (*Renderer, error) {
	if config.Width == 0 {
		config.Width = defaultContentWidth
	}

	r := Renderer{config: config}
	if config.Annotations {
		annotator, err := NewAnnotator()
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		r.annotator = annotator
	}

	return &r, nil
}

// Render draws the dataset and its events into a new image.
func (r *Renderer) Render(ds *eeg.Dataset, events []eeg.Event) (*image.RGBA, error) {
	if ds.Samples() == 0 {
		return nil, eeg.ErrEmptyDataset
	}

	trace, err := r.traceSeries(ds)
	if err != nil {
		return nil, err
	}

	l := layout{
		Width:        r.config.Width,
		HypnogramTop: defaultTopBorder,
		ContentLeft:  defaultLeftBorder,
		TimeStart:    ds.Time[0],
	}
	l.TraceTop = l.HypnogramTop + hypnogramHeight + laneGap
	l.EventLaneTop = l.TraceTop + traceHeight + laneGap
	l.ContentBottom = l.EventLaneTop + eventLaneHeight
	l.SecondsPerPx = (ds.Time[len(ds.Time)-1] - ds.Time[0]) / float64(l.Width)

	fullWidth := l.Width + defaultLeftBorder + defaultRightBorder
	fullHeight := l.ContentBottom + defaultBottomBorder
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	r.drawHypnogram(img, &l, ds)
	r.drawTrace(img, &l, trace)
	r.drawEvents(img, &l, events)

	if r.annotator != nil {
		if err := r.annotator.Annotate(img, &l, ds, events, r.config.TraceChannel); err != nil {
			return nil, fmt.Errorf("annotating: %w", err)
		}
	}

	return img, nil
}

// traceSeries resolves the configured trace channel, falling back to the
// first stored channel when the configured one is absent.
func (r *Renderer) traceSeries(ds *eeg.Dataset) ([]float64, error) {
	if series, err := ds.Channel(r.config.TraceChannel); err == nil {
		return series, nil
	}

	names := ds.ChannelNames()
	if len(names) == 0 {
		return nil, eeg.ErrEmptyDataset
	}
	r.config.TraceChannel = names[0]
	return ds.Channels[names[0]], nil
}

// columnSample maps a pixel column to the first sample it covers.
func columnSample(l *layout, ds *eeg.Dataset, x int) int {
	i := int(float64(x) / float64(l.Width) * float64(ds.Samples()))
	if i >= ds.Samples() {
		i = ds.Samples() - 1
	}
	return i
}

// stageLevels mirror the conventional hypnogram ordering: Wake on top,
// deep sleep at the bottom.
var stageLevels = map[eeg.Stage]int{
	eeg.StageWake: 0,
	eeg.StageREM:  1,
	eeg.StageN1:   2,
	eeg.StageN2:   3,
	eeg.StageN3:   4,
}

func (r *Renderer) drawHypnogram(img *image.RGBA, l *layout, ds *eeg.Dataset) {
	levels := len(stageLevels)
	levelHeight := hypnogramHeight / levels

	for x := 0; x < l.Width; x++ {
		stage := ds.StageAt(columnSample(l, ds, x))
		band := stageBandColor(stage)
		line := stageColor(stage)

		for y := 0; y < hypnogramHeight; y++ {
			img.Set(l.ContentLeft+x, l.HypnogramTop+y, band)
		}

		// Stair line at the stage's level, thick enough to read.
		lineY := l.HypnogramTop + stageLevels[stage]*levelHeight + levelHeight/2
		for dy := -1; dy <= 1; dy++ {
			img.Set(l.ContentLeft+x, lineY+dy, line)
		}
	}
}

func (r *Renderer) drawTrace(img *image.RGBA, l *layout, series []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range series {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}

	scale := func(v float64) int {
		frac := (v - lo) / (hi - lo)
		return l.TraceTop + traceHeight - 1 - int(frac*float64(traceHeight-1))
	}

	midY := scale((lo + hi) / 2)
	for x := 0; x < l.Width; x++ {
		img.Set(l.ContentLeft+x, midY, gridColor)
	}

	// Min/max envelope per column keeps fast activity visible after
	// downsampling.
	samplesPerPx := float64(len(series)) / float64(l.Width)
	for x := 0; x < l.Width; x++ {
		start := int(float64(x) * samplesPerPx)
		end := int(float64(x+1) * samplesPerPx)
		if end <= start {
			end = start + 1
		}
		if end > len(series) {
			end = len(series)
		}

		cLo, cHi := math.Inf(1), math.Inf(-1)
		for _, v := range series[start:end] {
			cLo = math.Min(cLo, v)
			cHi = math.Max(cHi, v)
		}

		yTop, yBottom := scale(cHi), scale(cLo)
		for y := yTop; y <= yBottom; y++ {
			img.Set(l.ContentLeft+x, y, traceColor)
		}
	}
}

func (r *Renderer) drawEvents(img *image.RGBA, l *layout, events []eeg.Event) {
	if l.SecondsPerPx <= 0 {
		return
	}

	for _, ev := range events {
		x := int((ev.Time - l.TimeStart) / l.SecondsPerPx)
		if x < 0 || x >= l.Width {
			continue
		}

		c, ok := eventColors[ev.Type]
		if !ok {
			continue
		}

		for dx := 0; dx < 2; dx++ {
			for y := 0; y < eventLaneHeight; y++ {
				img.Set(l.ContentLeft+x+dx, l.EventLaneTop+y, c)
			}
		}
	}
}
