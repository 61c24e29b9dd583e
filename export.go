// Tabular export of query results as CSV or XLSX downloads.
package main

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, sheet string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// incomeExportRows flattens income rows for download; amounts are formatted
// as plain decimal dollars.
func incomeExportRows(rows []IncomeRow) ([]string, [][]string) {
	headers := []string{"date", "description", "amount", "category", "frequency", "recurring"}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Date.Format("2006-01-02"),
			r.Description,
			centsToDecimalString(r.AmountCents),
			r.CategoryName,
			r.Frequency,
			fmt.Sprintf("%t", r.Recurring),
		})
	}
	return headers, out
}

func expenseExportRows(rows []ExpenseRow) ([]string, [][]string) {
	headers := []string{"date", "description", "amount", "category", "payment_source", "necessity_level", "frequency", "recurring"}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Date.Format("2006-01-02"),
			r.Description,
			centsToDecimalString(r.AmountCents),
			r.CategoryName,
			r.SourceLabel(),
			r.NecessityLevel,
			r.Frequency,
			fmt.Sprintf("%t", r.Recurring),
		})
	}
	return headers, out
}

// centsToDecimalString renders cents as "12.34" without currency symbol or
// thousands separators, suitable for spreadsheet import.
func centsToDecimalString(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
