package auditrevenue

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCollectiveToken is the reserved counter-account token meaning
// "miscellaneous/unspecified counterparty" in DATEV-style journals.
const DefaultCollectiveToken = "div"

// CollectiveMatcher reports whether a counter-account reference denotes
// the collective/clearing pseudo-account.
type CollectiveMatcher func(counterAccount string) bool

// NewCollectiveMatcher builds a matcher for the given reserved token.
// A counter-account matches when it equals the token case-insensitively
// with optional trailing punctuation, or when it is blank.
func NewCollectiveMatcher(token string) CollectiveMatcher {
	re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(token) + `\.?$`)
	return func(counterAccount string) bool {
		counterAccount = strings.TrimSpace(counterAccount)
		if counterAccount == "" {
			return true
		}
		return re.MatchString(counterAccount)
	}
}

// ReplicateCollective resolves multi-leg entries booked against the
// collective account. For each entry holding exactly one collective line,
// the line is replicated once per reference line of the same entry whose
// counter-account points at the collective line's own account: the
// replica takes the reference's account as its counter-account, swaps
// the reference's debit and credit, and negates the reference's balance.
//
// The returned journal keeps entries in first-seen order, each entry's
// non-collective lines in input order followed by its replicas. Original
// collective lines never appear in the output; a collective line with no
// references produces no replicas and is dropped.
//
// More than one collective line in a single entry is a fatal input error.
func ReplicateCollective(lines []BookingLine, match CollectiveMatcher) ([]BookingLine, error) {
	if match == nil {
		match = NewCollectiveMatcher(DefaultCollectiveToken)
	}

	for i := range lines {
		lines[i].collective = match(lines[i].CounterAccount)
	}

	entryOrder := make([]string, 0, len(lines))
	byEntry := make(map[string][]int)
	for i, line := range lines {
		if _, seen := byEntry[line.EntryID]; !seen {
			entryOrder = append(entryOrder, line.EntryID)
		}
		byEntry[line.EntryID] = append(byEntry[line.EntryID], i)
	}

	// Cardinality check runs over the whole journal before any
	// replication happens.
	for _, entryID := range entryOrder {
		count := 0
		for _, i := range byEntry[entryID] {
			if lines[i].collective {
				count++
			}
		}
		if count > 1 {
			return nil, fmt.Errorf("%w: entry %s has %d collective rows", ErrMultipleCollectiveRows, entryID, count)
		}
	}

	prepared := make([]BookingLine, 0, len(lines))
	for _, entryID := range entryOrder {
		indices := byEntry[entryID]

		collectiveIdx := -1
		for _, i := range indices {
			if lines[i].collective {
				collectiveIdx = i
			} else {
				prepared = append(prepared, lines[i])
			}
		}
		if collectiveIdx < 0 {
			continue
		}

		div := lines[collectiveIdx]
		for _, i := range indices {
			ref := lines[i]
			if ref.collective || ref.CounterAccount != div.Account {
				continue
			}
			replica := div
			replica.CounterAccount = ref.Account
			replica.CounterAccountName = ref.AccountName
			replica.Debit = ref.Credit
			replica.Credit = ref.Debit
			replica.Balance = ref.Balance.Neg()
			replica.collective = false
			prepared = append(prepared, replica)
		}
	}
	return prepared, nil
}
