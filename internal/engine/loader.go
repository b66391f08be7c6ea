package engine

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ParseError reports text that could not be read as the expected table.
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// --- 1. COLUMN MAPPING ---

type field int

const (
	fieldRank field = iota
	fieldName
	fieldPlatform
	fieldYear
	fieldGenre
	fieldPublisher
	fieldNA
	fieldEU
	fieldJP
	fieldOther
	fieldGlobal
	numFields
)

// Header names as they appear in the dataset.
var fieldHeaders = [numFields]string{
	fieldRank:      "Rank",
	fieldName:      "Name",
	fieldPlatform:  "Platform",
	fieldYear:      "Year",
	fieldGenre:     "Genre",
	fieldPublisher: "Publisher",
	fieldNA:        "NA_Sales",
	fieldEU:        "EU_Sales",
	fieldJP:        "JP_Sales",
	fieldOther:     "Other_Sales",
	fieldGlobal:    "Global_Sales",
}

// Headers returns the dataset column names in canonical order.
func Headers() []string {
	return append([]string(nil), fieldHeaders[:]...)
}

// columns maps each field to its position in a row, -1 when the header is missing.
type columns [numFields]int

func mapColumns(header []string) (columns, int) {
	var cols columns
	for i := range cols {
		cols[i] = -1
	}
	found := 0
	for pos, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for f, name := range fieldHeaders {
			if cols[f] == -1 && strings.EqualFold(h, name) {
				cols[f] = pos
				found++
				break
			}
		}
	}
	return cols, found
}

func (c columns) cell(row []string, f field) string {
	pos := c[f]
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

// --- 2. FIELD COERCION ---

// coerceSales parses a non-negative sales figure. ok is false when the cell
// holds something other than a usable number; blank cells are absent, not invalid.
func coerceSales(s string) (v float64, ok bool) {
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func coerceInt(s string) (*int, bool) {
	if s == "" {
		return nil, true
	}
	v, ok := parseYear(s)
	if !ok {
		return nil, false
	}
	return &v, true
}

// record builds one Record from row and returns how many cells failed coercion.
func (c columns) record(row []string) (Record, int) {
	invalid := 0
	r := Record{
		Name:      c.cell(row, fieldName),
		Platform:  c.cell(row, fieldPlatform),
		Genre:     c.cell(row, fieldGenre),
		Publisher: c.cell(row, fieldPublisher),
	}

	if rank, ok := coerceInt(c.cell(row, fieldRank)); !ok {
		invalid++
	} else if rank != nil {
		r.Rank = *rank
	}
	year, ok := coerceInt(c.cell(row, fieldYear))
	if !ok {
		invalid++
	}
	r.Year = year

	sales := []struct {
		f   field
		dst *float64
	}{
		{fieldNA, &r.NASales},
		{fieldEU, &r.EUSales},
		{fieldJP, &r.JPSales},
		{fieldOther, &r.OtherSales},
		{fieldGlobal, &r.GlobalSales},
	}
	for _, s := range sales {
		v, ok := coerceSales(c.cell(row, s.f))
		if !ok {
			invalid++
		}
		*s.dst = v
	}
	return r, invalid
}

// --- 3. PARSER ---

// ParseResult is the output of a successful parse. InvalidFields counts cells
// that failed coercion and were treated as absent.
type ParseResult struct {
	Records       []Record
	InvalidFields int
}

// Parser turns delimited text into records, coercing rows in parallel chunks.
type Parser struct {
	workers int
}

// NewParser returns a Parser using workers goroutines; workers <= 0 uses one
// per CPU.
func NewParser(workers int) *Parser {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Parser{workers: workers}
}

// ParseRecords parses r with a default Parser.
func ParseRecords(r io.Reader) ([]Record, error) {
	res, err := NewParser(0).Parse(context.Background(), r)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Parse reads a header row followed by data rows. Columns are found by header
// name, so their order in the file does not matter. Cells that fail coercion
// are left absent; only unreadable text yields a *ParseError.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Line: 1, Reason: "missing header row"}
	}
	if err != nil {
		return nil, &ParseError{Line: csvLine(err, 1), Reason: "unreadable header row", Err: err}
	}

	cols, found := mapColumns(header)
	if found == 0 {
		return nil, &ParseError{Line: 1, Reason: "header names none of the expected columns"}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Line: csvLine(err, 0), Reason: "malformed row", Err: err}
	}

	// Split rows into one contiguous chunk per worker; each writes its own
	// slice range so output order equals input order.
	records := make([]Record, len(rows))
	invalid := make([]int, p.workers)
	chunkSize := (len(rows) + p.workers - 1) / p.workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < p.workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, len(rows))
		if start >= end {
			break
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				rec, bad := cols.record(rows[i])
				records[i] = rec
				invalid[w] += bad
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &ParseResult{Records: records}
	for _, n := range invalid {
		res.InvalidFields += n
	}
	return res, nil
}

func csvLine(err error, fallback int) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return fallback
}
