package auditrevenue

// AggregatePairs groups the prepared journal by (account,
// counter-account), keeping the first-seen display names and summing
// debit, credit and balance rounded to two decimal places. Records are
// returned in first-seen order of their pair, so the result is
// deterministic for a given journal ordering.
func AggregatePairs(lines []BookingLine) []PairRecord {
	type pairKey struct {
		account        string
		counterAccount string
	}

	order := make([]pairKey, 0)
	records := make(map[pairKey]*PairRecord)
	for _, line := range lines {
		key := pairKey{line.Account, line.CounterAccount}
		rec, seen := records[key]
		if !seen {
			rec = &PairRecord{
				Account:            line.Account,
				AccountName:        line.AccountName,
				CounterAccount:     line.CounterAccount,
				CounterAccountName: line.CounterAccountName,
			}
			records[key] = rec
			order = append(order, key)
		}
		rec.Debit = rec.Debit.Add(line.Debit)
		rec.Credit = rec.Credit.Add(line.Credit)
		rec.Balance = rec.Balance.Add(line.Balance)
	}

	pairs := make([]PairRecord, 0, len(order))
	for _, key := range order {
		rec := records[key]
		rec.Debit = rec.Debit.Round(2)
		rec.Credit = rec.Credit.Round(2)
		rec.Balance = rec.Balance.Round(2)
		pairs = append(pairs, *rec)
	}
	return pairs
}

// AccountInfo is one distinct account of the aggregated journal with its
// first-seen display name.
type AccountInfo struct {
	Account string
	Name    string
}

// ChartOfAccounts extracts the distinct accounts from a pair table in
// first-seen order. It feeds the categorizer's neighbor-account context.
func ChartOfAccounts(pairs []PairRecord) []AccountInfo {
	seen := make(map[string]bool)
	accounts := make([]AccountInfo, 0)
	for _, pair := range pairs {
		if !seen[pair.Account] {
			seen[pair.Account] = true
			accounts = append(accounts, AccountInfo{Account: pair.Account, Name: pair.AccountName})
		}
	}
	return accounts
}
