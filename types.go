package auditrevenue

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingColumn          = errors.New("required column not found in header")
	ErrEmptyJournal           = errors.New("journal contains no booking lines")
	ErrMultipleCollectiveRows = errors.New("more than one collective row in entry")
	ErrUnbalancedEntries      = errors.New("entries do not sum to zero within tolerance")
)

// Columns maps the logical journal fields to the column names of the
// input file. Defaults follow the DATEV-style export the tool was built
// around; every name can be overridden per input source.
type Columns struct {
	EntryID            string
	Account            string
	AccountName        string
	CounterAccount     string
	CounterAccountName string
	Debit              string
	Credit             string
	Balance            string

	// Date is optional. When set and present in the header, booking
	// dates are parsed and date-range filtering becomes available.
	Date string
}

// DefaultColumns returns the column mapping of a standard DATEV journal
// export.
func DefaultColumns() Columns {
	return Columns{
		EntryID:            "JOURNAL_NR",
		Account:            "KONTO_NR",
		AccountName:        "KONTO_BEZ",
		CounterAccount:     "GKTO_NR",
		CounterAccountName: "GKTO_BEZ",
		Debit:              "BETRAG_SOLL",
		Credit:             "BETRAG_HABEN",
		Balance:            "BETRAG_SALDO",
		Date:               "BUCH_DATUM",
	}
}

// BookingLine is one row of the journal. A complete journal entry is the
// group of lines sharing an EntryID; each entry must net to zero.
type BookingLine struct {
	EntryID            string
	Date               time.Time
	Account            string
	AccountName        string
	CounterAccount     string
	CounterAccountName string
	Debit              decimal.Decimal
	Credit             decimal.Decimal
	Balance            decimal.Decimal

	// collective marks a line booked against the collective/clearing
	// pseudo-account. Set and consumed during replication, never
	// visible in the prepared journal.
	collective bool
}

// PairRecord is one directed (account, counter-account) flow of the
// aggregated journal. Names are taken from the first line seen for the
// pair; amounts are the summed debit/credit/balance rounded to two
// decimal places.
type PairRecord struct {
	Account            string
	AccountName        string
	CounterAccount     string
	CounterAccountName string
	Debit              decimal.Decimal
	Credit             decimal.Decimal
	Balance            decimal.Decimal
}

// Category is one class of the closed account taxonomy used for the
// risk-styled relationship analysis.
type Category string

const (
	CategoryExpense          Category = "Expense"
	CategoryCash             Category = "Cash"
	CategorySalesRevenue     Category = "Sales Revenue"
	CategoryOtherRevenue     Category = "Other Revenue"
	CategoryReceivables      Category = "Receivables"
	CategoryOtherReceivables Category = "Other Receivables"
	CategoryPayables         Category = "Payables"
	CategoryClearing         Category = "Clearing Accounts"
	CategorySalesTax         Category = "Sales Tax"
	CategoryOtherAssets      Category = "Other Assets"
	CategoryOtherLiabilities Category = "Other Liabilities"
	CategoryOpening          Category = "Opening Balance"

	// CategoryUnknown is not part of the taxonomy. It is assigned when
	// classification fails so the account still appears in the graph.
	CategoryUnknown Category = "Unclassified"
)

// Categories lists the closed taxonomy in its fixed order.
func Categories() []Category {
	return []Category{
		CategoryExpense,
		CategoryCash,
		CategorySalesRevenue,
		CategoryOtherRevenue,
		CategoryReceivables,
		CategoryOtherReceivables,
		CategoryPayables,
		CategoryClearing,
		CategorySalesTax,
		CategoryOtherAssets,
		CategoryOtherLiabilities,
		CategoryOpening,
	}
}

// ParseCategory resolves a string to a taxonomy category. Matching is
// case-insensitive on the category name.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return CategoryUnknown, false
}
