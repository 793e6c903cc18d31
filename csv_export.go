package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CSVExportOptions configures how samples are exported to CSV.
type CSVExportOptions struct {
	FilePath          string
	IncludeTimestamps bool
	FilterByTime      bool
	StartTime         time.Time
	EndTime           time.Time
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportCSV writes the samples to a CSV file based on the provided options.
// It returns the number of data rows written.
func ExportCSV(s Series, opts CSVExportOptions) (int, error) {
	f, err := os.Create(opts.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := reportColumns
	if opts.IncludeTimestamps {
		header = append([]string{"Timestamp"}, reportColumns...)
	}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	written := 0
	for i := 0; i < s.Len(); i++ {
		stamp := s.Stamps[i]
		if opts.FilterByTime {
			if stamp.Before(opts.StartTime) || (!opts.EndTime.IsZero() && stamp.After(opts.EndTime)) {
				continue
			}
		}

		var record []string
		if opts.IncludeTimestamps {
			record = append(record, stamp.Format("2006-01-02 15:04:05.000"))
		}
		for _, v := range reportRow(s, i) {
			record = append(record, formatFloat(v.(float64)))
		}

		if err := w.Write(record); err != nil {
			return written, fmt.Errorf("failed to write record: %w", err)
		}
		written++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return written, fmt.Errorf("failed to flush csv writer: %w", err)
	}
	return written, nil
}
