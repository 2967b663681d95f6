package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/NepomukLorenz/auditrevenue"
)

const exportTimeFormat = "20060102_150405"

// exportPath builds a timestamped file name so repeated runs never
// overwrite earlier diagnostics.
func exportPath(dir, stem string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", stem, now.Format(exportTimeFormat)))
}

func writeCSV(filename string, header []string, rows [][]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func lineHeader() []string {
	return []string{"entry_id", "account", "account_name", "counter_account", "counter_account_name", "debit", "credit", "balance"}
}

func lineRow(line auditrevenue.BookingLine) []string {
	return []string{
		line.EntryID,
		line.Account,
		line.AccountName,
		line.CounterAccount,
		line.CounterAccountName,
		line.Debit.StringFixedBank(2),
		line.Credit.StringFixedBank(2),
		line.Balance.StringFixedBank(2),
	}
}

// exportUnbalanced writes every line of every entry whose balances do
// not sum to zero, with the entry sum in an extra column.
func exportUnbalanced(dir string, violations []auditrevenue.BalanceViolation, now time.Time) (string, error) {
	filename := exportPath(dir, "saldo_nicht_null", now)
	header := append(lineHeader(), "entry_sum")
	rows := make([][]string, 0)
	for _, violation := range violations {
		for _, line := range violation.Lines {
			rows = append(rows, append(lineRow(line), violation.Sum.StringFixedBank(2)))
		}
	}
	return filename, writeCSV(filename, header, rows)
}

// exportUnmatched writes the booking lines without a mirror line in
// their entry.
func exportUnmatched(dir string, lines []auditrevenue.BookingLine, now time.Time) (string, error) {
	filename := exportPath(dir, "unmatched_bookings", now)
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = lineRow(line)
	}
	return filename, writeCSV(filename, lineHeader(), rows)
}

// exportJournal writes the normalized, replicated journal.
func exportJournal(dir string, lines []auditrevenue.BookingLine, now time.Time) (string, error) {
	filename := exportPath(dir, "expanded_journal", now)
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = lineRow(line)
	}
	return filename, writeCSV(filename, lineHeader(), rows)
}

// exportPairs writes the aggregated counter-account table.
func exportPairs(dir string, pairs []auditrevenue.PairRecord, now time.Time) (string, error) {
	filename := exportPath(dir, "account_pairs", now)
	header := []string{"account", "account_name", "counter_account", "counter_account_name", "debit", "credit", "balance"}
	rows := make([][]string, len(pairs))
	for i, pair := range pairs {
		rows[i] = []string{
			pair.Account,
			pair.AccountName,
			pair.CounterAccount,
			pair.CounterAccountName,
			pair.Debit.StringFixedBank(2),
			pair.Credit.StringFixedBank(2),
			pair.Balance.StringFixedBank(2),
		}
	}
	return filename, writeCSV(filename, header, rows)
}
