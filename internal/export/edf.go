// Package export writes datasets out in EDF, the interchange format
// polysomnography tooling expects.
package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/OpenPSG/edf"
	"github.com/somnolabs/somnoscope/internal/eeg"
)

// recordDuration is the span of one EDF data record. One second keeps the
// per-record sample count equal to the sample rate.
const recordDuration = time.Second

// WriteEDF writes every channel of a dense dataset to w as an EDF recording.
// Physical bounds are taken from the actual data extremes so the 16-bit
// digital range is fully used. Trailing samples that do not fill a whole
// record are dropped, per the fixed-record-size format.
func WriteEDF(w io.WriteSeeker, ds *eeg.Dataset, startTime time.Time) error {
	if ds.Samples() == 0 {
		return fmt.Errorf("writing EDF: %w", eeg.ErrEmptyDataset)
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("writing EDF: %w", err)
	}

	names := ds.ChannelNames()
	samplesPerRecord := int(ds.SampleRate)
	if samplesPerRecord < 1 {
		samplesPerRecord = 1
	}

	signals := make([]edf.SignalHeader, len(names))
	for i, name := range names {
		physMin, physMax := physicalBounds(ds.Channels[name])
		signals[i] = edf.SignalHeader{
			Label:             "EEG " + name,
			TransducerType:    "simulated",
			PhysicalDimension: "uV",
			PhysicalMin:       physMin,
			PhysicalMax:       physMax,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  samplesPerRecord,
		}
	}

	ew, err := edf.Create(w, edf.Header{
		Version:            edf.Version0,
		PatientID:          "X X X X",
		RecordingID:        "Startdate X somnoscope",
		StartTime:          startTime,
		DataRecordDuration: recordDuration,
		SignalCount:        len(signals),
		Signals:            signals,
	})
	if err != nil {
		return fmt.Errorf("creating EDF writer: %w", err)
	}

	records := ds.Samples() / samplesPerRecord
	chunk := make([][]float64, len(names))
	for r := 0; r < records; r++ {
		for i, name := range names {
			chunk[i] = ds.Channels[name][r*samplesPerRecord : (r+1)*samplesPerRecord]
		}
		if err := ew.WriteRecord(chunk); err != nil {
			return fmt.Errorf("writing EDF record %d: %w", r, err)
		}
	}

	if err := ew.Close(); err != nil {
		return fmt.Errorf("finalizing EDF file: %w", err)
	}
	return nil
}

// physicalBounds returns the series extremes, padded so a flat series still
// has a non-degenerate physical range.
func physicalBounds(series []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range series {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1 {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}
