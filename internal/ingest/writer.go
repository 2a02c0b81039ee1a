package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

// WriteCSV serializes a dense dataset in the format Parse accepts: a header
// row of "index" plus channel names, then one row per sample with the index
// in the first column and channel amplitudes to four decimal places after.
// Stage labels are not part of the format.
func WriteCSV(w io.Writer, ds *eeg.Dataset) error {
	names := ds.ChannelNames()
	if len(names) == 0 {
		return fmt.Errorf("writing CSV: %w", eeg.ErrEmptyDataset)
	}

	header := append([]string{"index"}, names...)
	if _, err := fmt.Fprintln(w, strings.Join(header, ",")); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	fields := make([]string, len(header))
	for i := 0; i < ds.Samples(); i++ {
		fields[0] = fmt.Sprintf("%d", i)
		for j, name := range names {
			fields[j+1] = fmt.Sprintf("%.4f", ds.Channels[name][i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, ",")); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}

	return nil
}
