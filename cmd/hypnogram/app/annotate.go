package app

import (
	"fmt"
	"image"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/somnolabs/somnoscope/internal/eeg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi           float64 = 72
	fontSize      float64 = 13
	tickHeight            = 5
	pixelsPerTick         = 150
)

type Annotator struct {
	context *freetype.Context
}

func NewAnnotator() (*Annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetSrc(image.Black)
	context.SetHinting(font.HintingFull)

	return &Annotator{context: context}, nil
}

func (a *Annotator) Annotate(img *image.RGBA, l *layout, ds *eeg.Dataset, events []eeg.Event, traceChannel string) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, *layout, *eeg.Dataset, []eeg.Event, string) error
	}{
		{"drawing time scale", a.drawTimeScale},
		{"drawing lane labels", a.drawLaneLabels},
		{"drawing info", a.drawInfo},
	}
	for _, op := range ops {
		if err := op.fn(img, l, ds, events, traceChannel); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *Annotator) drawTimeScale(img *image.RGBA, l *layout, ds *eeg.Dataset, _ []eeg.Event, _ string) error {
	count := l.Width / pixelsPerTick
	if count == 0 {
		return nil
	}

	span := ds.Duration()
	secondsPerTick := span / float64(count)

	for i := 0; i <= count; i++ {
		t := l.TimeStart + float64(i)*secondsPerTick
		x := l.ContentLeft + i*pixelsPerTick
		if x > l.ContentLeft+l.Width {
			break
		}

		for dy := 0; dy < tickHeight; dy++ {
			img.Set(x, l.EventLaneTop+eventLaneHeight+dy, image.Black)
		}

		str := time.Duration(t * float64(time.Second)).Truncate(time.Second).String()
		pt := freetype.Pt(x-10, l.EventLaneTop+eventLaneHeight+tickHeight+14)
		if _, err := a.context.DrawString(str, pt); err != nil {
			return err
		}
	}

	return nil
}

func (a *Annotator) drawLaneLabels(img *image.RGBA, l *layout, _ *eeg.Dataset, _ []eeg.Event, traceChannel string) error {
	labels := []struct {
		text string
		y    int
	}{
		{"stages", l.HypnogramTop + hypnogramHeight/2},
		{traceChannel, l.TraceTop + traceHeight/2},
		{"events", l.EventLaneTop + eventLaneHeight/2},
	}
	for _, label := range labels {
		pt := freetype.Pt(10, label.y+5)
		if _, err := a.context.DrawString(label.text, pt); err != nil {
			return err
		}
	}

	return nil
}

func (a *Annotator) drawInfo(img *image.RGBA, l *layout, ds *eeg.Dataset, events []eeg.Event, _ string) error {
	counts := make(map[eeg.EventType]int)
	for _, ev := range events {
		counts[ev.Type]++
	}

	str := fmt.Sprintf("%s samples | %s | spindles %d | k-complexes %d | rem bursts %d",
		humanize.Comma(int64(ds.Samples())),
		time.Duration(ds.Duration()*float64(time.Second)).Truncate(time.Second),
		counts[eeg.EventSpindle],
		counts[eeg.EventKComplex],
		counts[eeg.EventREMBurst])

	pt := freetype.Pt(l.ContentLeft, l.HypnogramTop-14)
	_, err := a.context.DrawString(str, pt)
	return err
}
