// Package ingest converts externally supplied CSV payloads into the dataset
// shape used by the synthesizer, letting real or canned recordings substitute
// for synthesized data. Parsing is best-effort: malformed cells degrade to a
// default value, whole-file problems surface as errors.
package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

const (
	// defaultMaxRows bounds memory on oversized payloads; parsing stops
	// silently once the cap is reached.
	defaultMaxRows = 100000

	defaultSampleRate = 10 // Hz, legacy dashboard display rate
)

// WithSampleRate sets the sample rate assigned to synthesized timestamps.
// Any time column present in the payload is ignored in favour of
// rowIndex/sampleRate.
func WithSampleRate(rate float64) func(*Parser) {
	return func(p *Parser) {
		p.sampleRate = rate
	}
}

// WithMaxRows overrides the row cap applied while parsing.
func WithMaxRows(n int) func(*Parser) {
	return func(p *Parser) {
		p.maxRows = n
	}
}

// Stats counts what a parse run accepted and what it degraded or dropped.
type Stats struct {
	Rows           int // data rows accepted
	SkippedRows    int // rows dropped for having fewer fields than headers
	MalformedCells int // cells that fell back to the default value
}

// Parser turns raw CSV text into a dense dataset.
type Parser struct {
	sampleRate float64
	maxRows    int
}

// NewParser creates a Parser with the legacy defaults.
func NewParser(options ...func(*Parser)) *Parser {
	p := Parser{
		sampleRate: defaultSampleRate,
		maxRows:    defaultMaxRows,
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

// Parse reads a CSV payload: the first line is the header row, its first
// column is treated as an index and ignored, and the remaining columns become
// channel names in header order. Cells that fail to parse as floats degrade
// to 0 and are counted in Stats rather than aborting the parse. Rows with
// fewer fields than headers are skipped entirely. Input with no lines at all
// fails with eeg.ErrEmptyDataset; a header with zero data rows yields an
// empty dataset, which is a representable state, not an error.
func (p *Parser) Parse(raw string) (*eeg.Dataset, Stats, error) {
	var stats Stats

	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil, stats, fmt.Errorf("parsing CSV: %w", eeg.ErrEmptyDataset)
	}

	headers := strings.Split(lines[0], ",")
	if len(headers) < 2 {
		return nil, stats, fmt.Errorf("parsing CSV header: %w: no channel columns", eeg.ErrEmptyDataset)
	}

	names := make([]string, 0, len(headers)-1)
	for _, h := range headers[1:] {
		names = append(names, strings.TrimSpace(h))
	}

	ds := eeg.Dataset{
		SampleRate: p.sampleRate,
		Channels:   make(map[string][]float64, len(names)),
	}
	for _, name := range names {
		ds.Channels[name] = nil
	}

	for _, line := range lines[1:] {
		if stats.Rows >= p.maxRows {
			break
		}

		fields := strings.Split(line, ",")
		if len(fields) < len(headers) {
			stats.SkippedRows++
			continue
		}

		ds.Time = append(ds.Time, float64(stats.Rows)/p.sampleRate)
		for i, name := range names {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
			if err != nil {
				v = 0
				stats.MalformedCells++
			}
			ds.Channels[name] = append(ds.Channels[name], v)
		}
		stats.Rows++
	}

	return &ds, stats, nil
}

// splitLines splits on newlines, tolerating CRLF endings and dropping blank
// lines wherever they appear.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
