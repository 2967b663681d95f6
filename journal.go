package auditrevenue

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// ReadJournalFile parses a journal CSV file and returns its booking lines.
func ReadJournalFile(filename string, cols Columns, delimiter rune) ([]BookingLine, error) {
	ifile, ierr := os.Open(filename)
	if ierr != nil {
		return nil, ierr
	}
	defer ifile.Close()
	lines, err := ReadJournal(ifile, cols, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return lines, nil
}

// ReadJournal parses a journal from a CSV stream. The first record is the
// header; required columns are located by case-insensitive name using the
// given mapping. Amounts accept both "1234.56" and German "1.234,56"
// notation. The date column is optional and parsed leniently when present.
func ReadJournal(r io.Reader, cols Columns, delimiter rune) ([]BookingLine, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.TrimLeadingSpace = true
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv parse error: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyJournal
	}

	idx, err := locateColumns(records[0], cols)
	if err != nil {
		return nil, err
	}

	lines := make([]BookingLine, 0, len(records)-1)
	for recNum, record := range records[1:] {
		line := BookingLine{
			EntryID:            strings.TrimSpace(record[idx.entryID]),
			Account:            strings.TrimSpace(record[idx.account]),
			AccountName:        strings.TrimSpace(record[idx.accountName]),
			CounterAccount:     strings.TrimSpace(record[idx.counterAccount]),
			CounterAccountName: strings.TrimSpace(record[idx.counterAccountName]),
		}

		if line.Debit, err = parseAmount(record[idx.debit]); err != nil {
			return nil, fmt.Errorf("record %d: debit: %w", recNum+2, err)
		}
		if line.Credit, err = parseAmount(record[idx.credit]); err != nil {
			return nil, fmt.Errorf("record %d: credit: %w", recNum+2, err)
		}
		if line.Balance, err = parseAmount(record[idx.balance]); err != nil {
			return nil, fmt.Errorf("record %d: balance: %w", recNum+2, err)
		}

		if idx.date >= 0 {
			if dateStr := strings.TrimSpace(record[idx.date]); dateStr != "" {
				if line.Date, err = dateparse.ParseAny(dateStr); err != nil {
					return nil, fmt.Errorf("record %d: unable to parse date(%s): %w", recNum+2, dateStr, err)
				}
			}
		}

		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyJournal
	}
	return lines, nil
}

type columnIndex struct {
	entryID            int
	account            int
	accountName        int
	counterAccount     int
	counterAccountName int
	debit              int
	credit             int
	balance            int
	date               int
}

func locateColumns(header []string, cols Columns) (columnIndex, error) {
	idx := columnIndex{
		entryID: -1, account: -1, accountName: -1,
		counterAccount: -1, counterAccountName: -1,
		debit: -1, credit: -1, balance: -1, date: -1,
	}

	for fieldIndex, fieldName := range header {
		fieldName = strings.TrimSpace(strings.TrimPrefix(fieldName, "\ufeff"))
		switch {
		case strings.EqualFold(fieldName, cols.EntryID):
			idx.entryID = fieldIndex
		case strings.EqualFold(fieldName, cols.Account):
			idx.account = fieldIndex
		case strings.EqualFold(fieldName, cols.AccountName):
			idx.accountName = fieldIndex
		case strings.EqualFold(fieldName, cols.CounterAccount):
			idx.counterAccount = fieldIndex
		case strings.EqualFold(fieldName, cols.CounterAccountName):
			idx.counterAccountName = fieldIndex
		case strings.EqualFold(fieldName, cols.Debit):
			idx.debit = fieldIndex
		case strings.EqualFold(fieldName, cols.Credit):
			idx.credit = fieldIndex
		case strings.EqualFold(fieldName, cols.Balance):
			idx.balance = fieldIndex
		case cols.Date != "" && strings.EqualFold(fieldName, cols.Date):
			idx.date = fieldIndex
		}
	}

	required := []struct {
		name string
		pos  int
	}{
		{cols.EntryID, idx.entryID},
		{cols.Account, idx.account},
		{cols.AccountName, idx.accountName},
		{cols.CounterAccount, idx.counterAccount},
		{cols.CounterAccountName, idx.counterAccountName},
		{cols.Debit, idx.debit},
		{cols.Credit, idx.credit},
		{cols.Balance, idx.balance},
	}
	for _, req := range required {
		if req.pos < 0 {
			return idx, fmt.Errorf("%w: %s", ErrMissingColumn, req.name)
		}
	}
	return idx, nil
}

// parseAmount parses a currency amount. Empty cells count as zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if dec, err := decimal.NewFromString(s); err == nil {
		return dec, nil
	}
	// German notation: thousands dot, decimal comma
	german := strings.ReplaceAll(s, ".", "")
	german = strings.ReplaceAll(german, ",", ".")
	dec, err := decimal.NewFromString(german)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount(%s)", s)
	}
	return dec, nil
}

// LinesInDateRange returns the lines whose booking date falls in
// [start, end). Lines without a date are kept.
func LinesInDateRange(lines []BookingLine, start, end time.Time) []BookingLine {
	filtered := make([]BookingLine, 0, len(lines))
	for _, line := range lines {
		if line.Date.IsZero() {
			filtered = append(filtered, line)
			continue
		}
		if line.Date.Before(start) || !line.Date.Before(end) {
			continue
		}
		filtered = append(filtered, line)
	}
	return filtered
}
