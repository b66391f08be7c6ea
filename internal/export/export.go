// Package export writes record sets as CSV, XLSX workbooks or Arrow IPC
// streams.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gamesales/internal/engine"
)

type Format string

const (
	CSV   Format = "csv"
	XLSX  Format = "xlsx"
	Arrow Format = "arrow"
)

// ParseFormat maps a file extension (with or without the dot) to a Format.
func ParseFormat(ext string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(ext, "."))); f {
	case CSV, XLSX, Arrow:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", ext)
}

func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case Arrow:
		return "application/vnd.apache.arrow.stream"
	}
	return "application/octet-stream"
}

// Write renders records in format f. summary feeds the XLSX summary sheet and
// is ignored by the other formats.
func Write(w io.Writer, f Format, records []engine.Record, summary engine.Summary) error {
	switch f {
	case CSV:
		return WriteCSV(w, records)
	case XLSX:
		return WriteXLSX(w, records, summary)
	case Arrow:
		return WriteArrow(w, records)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// WriteCSV writes a header row and one row per record, in the column layout
// the loader reads. Absent values are empty cells.
func WriteCSV(w io.Writer, records []engine.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(engine.Headers()); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(r engine.Record) []string {
	row := []string{"", r.Name, r.Platform, "", r.Genre, r.Publisher,
		formatFloat(r.NASales), formatFloat(r.EUSales), formatFloat(r.JPSales),
		formatFloat(r.OtherSales), formatFloat(r.GlobalSales)}
	if r.Rank != 0 {
		row[0] = strconv.Itoa(r.Rank)
	}
	if y, ok := r.YearValue(); ok {
		row[3] = strconv.Itoa(y)
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
