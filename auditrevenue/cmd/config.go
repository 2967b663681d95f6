package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/araddon/dateparse"
	"github.com/pelletier/go-toml"
	"github.com/shopspring/decimal"
)

// Profile is a TOML run profile. Every field is optional; the zero
// profile reproduces the built-in defaults, so a profile only needs to
// name what differs for one client.
type Profile struct {
	Delimiter        string  `toml:"delimiter"`
	CollectiveToken  string  `toml:"collective_token"`
	BalanceTolerance float64 `toml:"balance_tolerance"`
	MirrorTolerance  float64 `toml:"mirror_tolerance"`
	Materiality      float64 `toml:"materiality"`

	// Start and End filter the journal by booking date, parsed with
	// dateparse so common export formats work as-is.
	Start string `toml:"start"`
	End   string `toml:"end"`

	Model     string `toml:"model"`
	StorePath string `toml:"store"`
	OutputDir string `toml:"output_dir"`

	// StyleRules points at a YAML file overriding the built-in graph
	// styling tables.
	StyleRules string `toml:"style_rules"`

	Columns   ColumnsProfile   `toml:"columns"`
	Subledger SubledgerProfile `toml:"subledger"`
}

// ColumnsProfile renames journal columns for exports that do not use
// the standard header names.
type ColumnsProfile struct {
	EntryID            string `toml:"entry_id"`
	Account            string `toml:"account"`
	AccountName        string `toml:"account_name"`
	CounterAccount     string `toml:"counter_account"`
	CounterAccountName string `toml:"counter_account_name"`
	Debit              string `toml:"debit"`
	Credit             string `toml:"credit"`
	Balance            string `toml:"balance"`
	Date               string `toml:"date"`
}

// SubledgerProfile collapses personal accounts onto synthetic general
// ledger accounts when both prefixes are set.
type SubledgerProfile struct {
	DebtorPrefix   string `toml:"debtor_prefix"`
	CreditorPrefix string `toml:"creditor_prefix"`
}

// LoadProfile reads a TOML run profile. An empty path yields the
// default profile.
func LoadProfile(path string) (*Profile, error) {
	profile := &Profile{}
	if path == "" {
		return profile, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if err := toml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}

func (p *Profile) delimiter() rune {
	if p.Delimiter == "" {
		return ';'
	}
	return []rune(p.Delimiter)[0]
}

func (p *Profile) columns() auditrevenue.Columns {
	cols := auditrevenue.DefaultColumns()
	if p.Columns.EntryID != "" {
		cols.EntryID = p.Columns.EntryID
	}
	if p.Columns.Account != "" {
		cols.Account = p.Columns.Account
	}
	if p.Columns.AccountName != "" {
		cols.AccountName = p.Columns.AccountName
	}
	if p.Columns.CounterAccount != "" {
		cols.CounterAccount = p.Columns.CounterAccount
	}
	if p.Columns.CounterAccountName != "" {
		cols.CounterAccountName = p.Columns.CounterAccountName
	}
	if p.Columns.Debit != "" {
		cols.Debit = p.Columns.Debit
	}
	if p.Columns.Credit != "" {
		cols.Credit = p.Columns.Credit
	}
	if p.Columns.Balance != "" {
		cols.Balance = p.Columns.Balance
	}
	if p.Columns.Date != "" {
		cols.Date = p.Columns.Date
	}
	return cols
}

func (p *Profile) collective() auditrevenue.CollectiveMatcher {
	token := p.CollectiveToken
	if token == "" {
		token = auditrevenue.DefaultCollectiveToken
	}
	return auditrevenue.NewCollectiveMatcher(token)
}

func (p *Profile) balanceTolerance() decimal.Decimal {
	if p.BalanceTolerance <= 0 {
		return auditrevenue.DefaultBalanceTolerance
	}
	return decimal.NewFromFloat(p.BalanceTolerance)
}

func (p *Profile) mirrorTolerance() decimal.Decimal {
	if p.MirrorTolerance <= 0 {
		return auditrevenue.DefaultMirrorTolerance
	}
	return decimal.NewFromFloat(p.MirrorTolerance)
}

func (p *Profile) materiality() decimal.Decimal {
	if p.Materiality <= 0 {
		return decimal.NewFromInt(10000)
	}
	return decimal.NewFromFloat(p.Materiality)
}

func (p *Profile) subledgerRule() *auditrevenue.SubledgerRule {
	if p.Subledger.DebtorPrefix == "" && p.Subledger.CreditorPrefix == "" {
		return nil
	}
	return &auditrevenue.SubledgerRule{
		DebtorPrefix:   p.Subledger.DebtorPrefix,
		CreditorPrefix: p.Subledger.CreditorPrefix,
	}
}

func (p *Profile) outputDir() string {
	if p.OutputDir == "" {
		return "."
	}
	return p.OutputDir
}

// filterByDate restricts the journal to the profile's date window.
// The end date is inclusive, matching how audit periods are stated.
func (p *Profile) filterByDate(lines []auditrevenue.BookingLine) ([]auditrevenue.BookingLine, error) {
	if p.Start == "" && p.End == "" {
		return lines, nil
	}
	start := time.Time{}
	end := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	var err error
	if p.Start != "" {
		if start, err = dateparse.ParseAny(p.Start); err != nil {
			return nil, fmt.Errorf("parse start date %q: %w", p.Start, err)
		}
	}
	if p.End != "" {
		if end, err = dateparse.ParseAny(p.End); err != nil {
			return nil, fmt.Errorf("parse end date %q: %w", p.End, err)
		}
		end = end.Add(24 * time.Hour)
	}
	return auditrevenue.LinesInDateRange(lines, start, end), nil
}
