package app

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/somnolabs/somnoscope/internal/eeg"
)

var (
	backgroundColor = color.White
	traceColor      = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	gridColor       = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
)

var eventColors = map[eeg.EventType]color.Color{
	eeg.EventSpindle:  color.RGBA{R: 0x2a, G: 0x9d, B: 0x8f, A: 0xff},
	eeg.EventKComplex: color.RGBA{R: 0xe7, G: 0x6f, B: 0x51, A: 0xff},
	eeg.EventREMBurst: color.RGBA{R: 0x9b, G: 0x5d, B: 0xe5, A: 0xff},
}

// stageColor resolves a stage's display color from its metadata table entry.
func stageColor(stage eeg.Stage) color.Color {
	c, err := colorful.Hex(stage.Info().Color)
	if err != nil {
		return color.Black
	}
	return c
}

// stageBandColor is the washed-out variant used to fill hypnogram columns so
// the stair line stays readable on top.
func stageBandColor(stage eeg.Stage) color.Color {
	c, err := colorful.Hex(stage.Info().Color)
	if err != nil {
		return color.White
	}

	white, _ := colorful.Hex("#ffffff")
	return c.BlendLab(white, 0.7).Clamped()
}
