package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"gamesales/internal/engine"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

// WriteXLSX writes a workbook with a Records sheet (one row per record) and a
// Summary sheet of headline metrics.
func WriteXLSX(w io.Writer, records []engine.Record, summary engine.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(recordsSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := writeRecordsSheet(f, records); err != nil {
		return fmt.Errorf("records sheet: %w", err)
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	return f.Write(w)
}

func writeRecordsSheet(f *excelize.File, records []engine.Record) error {
	sw, err := f.NewStreamWriter(recordsSheet)
	if err != nil {
		return err
	}

	headers := engine.Headers()
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		var rank, year interface{} = "", ""
		if r.Rank != 0 {
			rank = r.Rank
		}
		if y, ok := r.YearValue(); ok {
			year = y
		}
		row := []interface{}{rank, r.Name, r.Platform, year, r.Genre, r.Publisher,
			r.NASales, r.EUSales, r.JPSales, r.OtherSales, r.GlobalSales}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func writeSummarySheet(f *excelize.File, s engine.Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	average := engine.FormatOptional(s.Average)
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total games", s.Count},
		{"Total global sales", engine.FormatMillions(s.TotalGlobal)},
		{"Average global sales", average},
	}
	if s.TopGroup != nil {
		rows = append(rows, []interface{}{"Top platform", s.TopGroup.Key})
	} else {
		rows = append(rows, []interface{}{"Top platform", engine.NotAvailable})
	}
	for _, region := range engine.AllRegions {
		share := engine.NotAvailable
		if s.SharesDefined {
			share = engine.FormatPercent(s.RegionShares.Get(region))
		}
		rows = append(rows, []interface{}{
			string(region) + " sales", engine.FormatMillions(s.Regions.Get(region)),
		}, []interface{}{
			string(region) + " share", share,
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 24)
}
