package auditrevenue

import "strings"

// Synthetic account identifiers substituted for collapsed subledger
// accounts.
const (
	DebtorAccount   = "DEBTOR"
	CreditorAccount = "CREDITOR"
)

// SubledgerRule describes how per-customer and per-vendor subledger
// accounts are recognized by the leading digit(s) of their account
// number.
type SubledgerRule struct {
	DebtorPrefix   string
	CreditorPrefix string
}

// CollapseSubledgers folds individual debtor and creditor subledger
// accounts into the synthetic DEBTOR/CREDITOR accounts, on both the
// account and the counter-account side of every line. Charts of accounts
// with thousands of customer accounts collapse into a readable network
// this way; accounts matching neither prefix are left untouched.
func CollapseSubledgers(lines []BookingLine, rule SubledgerRule) {
	for i := range lines {
		lines[i].Account, lines[i].AccountName = rule.apply(lines[i].Account, lines[i].AccountName)
		lines[i].CounterAccount, lines[i].CounterAccountName = rule.apply(lines[i].CounterAccount, lines[i].CounterAccountName)
	}
}

func (r SubledgerRule) apply(account, name string) (string, string) {
	if account == "" {
		return account, name
	}
	if r.DebtorPrefix != "" && strings.HasPrefix(account, r.DebtorPrefix) {
		return DebtorAccount, DebtorAccount
	}
	if r.CreditorPrefix != "" && strings.HasPrefix(account, r.CreditorPrefix) {
		return CreditorAccount, CreditorAccount
	}
	return account, name
}
