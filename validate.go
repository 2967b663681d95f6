package auditrevenue

import "github.com/shopspring/decimal"

// DefaultBalanceTolerance is the allowed absolute residual per entry
// after summing its balances, covering rounding differences in the
// source system.
var DefaultBalanceTolerance = decimal.NewFromInt(1)

// BalanceViolation is an entry whose lines do not net to zero within
// tolerance, together with the offending lines for export.
type BalanceViolation struct {
	EntryID string
	Sum     decimal.Decimal
	Lines   []BookingLine
}

// CheckEntryBalances sums balances per entry and returns every entry
// whose absolute residual exceeds the tolerance. A non-empty result is a
// fatal reconciliation failure; callers export the violations before
// aborting.
func CheckEntryBalances(lines []BookingLine, tolerance decimal.Decimal) []BalanceViolation {
	order := make([]string, 0)
	sums := make(map[string]decimal.Decimal)
	grouped := make(map[string][]BookingLine)
	for _, line := range lines {
		if _, seen := sums[line.EntryID]; !seen {
			order = append(order, line.EntryID)
		}
		sums[line.EntryID] = sums[line.EntryID].Add(line.Balance)
		grouped[line.EntryID] = append(grouped[line.EntryID], line)
	}

	var violations []BalanceViolation
	for _, entryID := range order {
		if sums[entryID].Abs().GreaterThan(tolerance) {
			violations = append(violations, BalanceViolation{
				EntryID: entryID,
				Sum:     sums[entryID],
				Lines:   grouped[entryID],
			})
		}
	}
	return violations
}

// CheckMirrorBookings verifies that within each entry every line has
// exactly one partner whose accounts are swapped and whose balance is
// the negation after rounding to whole units. Matching is by multiset on
// the (reversed account pair, negated rounded balance) key, so the
// result does not depend on line order. Unmatched lines are returned as
// a warning artifact; they need human review but do not stop the run.
func CheckMirrorBookings(lines []BookingLine) []BookingLine {
	type mirrorKey struct {
		account        string
		counterAccount string
		balance        string
	}

	order := make([]string, 0)
	byEntry := make(map[string][]int)
	for i, line := range lines {
		if _, seen := byEntry[line.EntryID]; !seen {
			order = append(order, line.EntryID)
		}
		byEntry[line.EntryID] = append(byEntry[line.EntryID], i)
	}

	var unmatched []BookingLine
	for _, entryID := range order {
		indices := byEntry[entryID]

		// Bucket lines by their own key, then pair each line with the
		// first free line under its mirrored key.
		buckets := make(map[mirrorKey][]int)
		for _, i := range indices {
			k := mirrorKey{
				account:        lines[i].Account,
				counterAccount: lines[i].CounterAccount,
				balance:        lines[i].Balance.Round(0).String(),
			}
			buckets[k] = append(buckets[k], i)
		}

		matched := make(map[int]bool)
		for _, i := range indices {
			if matched[i] {
				continue
			}
			want := mirrorKey{
				account:        lines[i].CounterAccount,
				counterAccount: lines[i].Account,
				balance:        lines[i].Balance.Round(0).Neg().String(),
			}
			found := false
			for _, j := range buckets[want] {
				if j == i || matched[j] {
					continue
				}
				matched[i] = true
				matched[j] = true
				found = true
				break
			}
			if !found {
				unmatched = append(unmatched, lines[i])
			}
		}
	}
	return unmatched
}
