package auditrevenue

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PrepareOptions configures the journal preparation steps.
type PrepareOptions struct {
	// Collective decides which counter-account references denote the
	// collective/clearing account. Nil uses the default "div" matcher.
	Collective CollectiveMatcher

	// BalanceTolerance is the allowed absolute residual per entry.
	// Zero value uses DefaultBalanceTolerance.
	BalanceTolerance decimal.Decimal

	// Subledger, when non-nil, folds per-customer and per-vendor
	// subledger accounts into synthetic debtor/creditor accounts
	// before validation.
	Subledger *SubledgerRule
}

// PrepareResult is the outcome of journal preparation. On a fatal
// zero-sum failure Lines and Unbalanced are still populated so the
// offending entries can be exported for inspection.
type PrepareResult struct {
	// Lines is the normalized, replicated journal.
	Lines []BookingLine

	// Unbalanced holds the entries failing the zero-sum check. Fatal
	// when non-empty.
	Unbalanced []BalanceViolation

	// Unmatched holds booking lines without a mirrored counter-booking.
	// A warning artifact only.
	Unmatched []BookingLine
}

// Prepare runs the journal through collective-row replication, sign
// normalization and validation. The returned error is non-nil for the
// fatal conditions (collective cardinality, zero-sum); the result is
// still returned alongside a zero-sum error so callers can export the
// offending entries.
func Prepare(lines []BookingLine, opts PrepareOptions) (*PrepareResult, error) {
	prepared, err := ReplicateCollective(lines, opts.Collective)
	if err != nil {
		return nil, err
	}

	NormalizeAmounts(prepared)

	if opts.Subledger != nil {
		CollapseSubledgers(prepared, *opts.Subledger)
	}

	tolerance := opts.BalanceTolerance
	if tolerance.IsZero() {
		tolerance = DefaultBalanceTolerance
	}

	result := &PrepareResult{Lines: prepared}
	result.Unbalanced = CheckEntryBalances(prepared, tolerance)
	result.Unmatched = CheckMirrorBookings(prepared)

	if len(result.Unbalanced) > 0 {
		return result, fmt.Errorf("%w: %d entries", ErrUnbalancedEntries, len(result.Unbalanced))
	}
	return result, nil
}
