package auditrevenue

import "github.com/shopspring/decimal"

// DefaultMirrorTolerance is the allowed absolute difference when
// comparing a pair record against its mirror.
var DefaultMirrorTolerance = decimal.NewFromFloat(0.1)

// DefaultTotalsTolerance is the allowed absolute difference between the
// summed debit and credit columns of the pair table.
var DefaultTotalsTolerance = decimal.NewFromFloat(0.5)

// MirrorViolation identifies a pair record whose mirror record is
// missing or inconsistent.
type MirrorViolation struct {
	Account        string
	CounterAccount string

	// Missing is true when no (counter-account, account) record exists
	// at all; otherwise the mirror exists but its amounts disagree.
	Missing bool
}

// CheckMirrorPairs verifies on the aggregated table that every (A,B)
// record has a (B,A) record with negated balance and swapped
// debit/credit totals within tolerance. Violations are a diagnostic for
// the analyst, not a hard abort: the graph stays useful as a best-effort
// artifact even when upstream data is imperfect.
func CheckMirrorPairs(pairs []PairRecord, tolerance decimal.Decimal) []MirrorViolation {
	type pairKey struct {
		account        string
		counterAccount string
	}

	index := make(map[pairKey]PairRecord, len(pairs))
	for _, pair := range pairs {
		index[pairKey{pair.Account, pair.CounterAccount}] = pair
	}

	var violations []MirrorViolation
	for _, fwd := range pairs {
		rev, ok := index[pairKey{fwd.CounterAccount, fwd.Account}]
		if !ok {
			violations = append(violations, MirrorViolation{
				Account:        fwd.Account,
				CounterAccount: fwd.CounterAccount,
				Missing:        true,
			})
			continue
		}
		balanceOK := fwd.Balance.Add(rev.Balance).Abs().LessThanOrEqual(tolerance)
		debitOK := fwd.Debit.Sub(rev.Credit).Abs().LessThanOrEqual(tolerance)
		creditOK := fwd.Credit.Sub(rev.Debit).Abs().LessThanOrEqual(tolerance)
		if !balanceOK || !debitOK || !creditOK {
			violations = append(violations, MirrorViolation{
				Account:        fwd.Account,
				CounterAccount: fwd.CounterAccount,
			})
		}
	}
	return violations
}

// Totals is the aggregate debit/credit comparison over the whole pair
// table. Balanced is false when the two sums drift apart by more than
// the tolerance.
type Totals struct {
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Balanced bool
}

// CheckTotals sums the debit and credit columns of the pair table and
// compares them within tolerance. Surfaced separately from per-pair
// mirror violations.
func CheckTotals(pairs []PairRecord, tolerance decimal.Decimal) Totals {
	totals := Totals{}
	for _, pair := range pairs {
		totals.Debit = totals.Debit.Add(pair.Debit)
		totals.Credit = totals.Credit.Add(pair.Credit)
	}
	totals.Balanced = totals.Debit.Sub(totals.Credit).Abs().LessThanOrEqual(tolerance)
	return totals
}
