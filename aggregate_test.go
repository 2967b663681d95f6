package auditrevenue

import "testing"

// The clean two-entry scenario: no collective rows, the aggregator must
// yield exactly two mirrored pair records.
func TestAggregatePairs(t *testing.T) {
	lines := []BookingLine{
		{EntryID: "1", Account: "100", AccountName: "Bank", CounterAccount: "200", CounterAccountName: "Revenue", Debit: dec("500"), Balance: dec("500")},
		{EntryID: "1", Account: "200", AccountName: "Revenue", CounterAccount: "100", CounterAccountName: "Bank", Credit: dec("500"), Balance: dec("-500")},
	}

	pairs := AggregatePairs(lines)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pair records, got %d", len(pairs))
	}

	fwd := pairs[0]
	if fwd.Account != "100" || fwd.CounterAccount != "200" {
		t.Fatalf("expected first pair (100,200), got (%s,%s)", fwd.Account, fwd.CounterAccount)
	}
	if !fwd.Debit.Equal(dec("500")) || !fwd.Credit.IsZero() {
		t.Errorf("pair (100,200): expected debit 500 credit 0, got debit %s credit %s", fwd.Debit, fwd.Credit)
	}

	rev := pairs[1]
	if rev.Account != "200" || rev.CounterAccount != "100" {
		t.Fatalf("expected second pair (200,100), got (%s,%s)", rev.Account, rev.CounterAccount)
	}
	if !rev.Credit.Equal(dec("500")) || !rev.Debit.IsZero() {
		t.Errorf("pair (200,100): expected credit 500 debit 0, got debit %s credit %s", rev.Debit, rev.Credit)
	}
	if !fwd.Balance.Equal(rev.Balance.Neg()) {
		t.Errorf("expected mirrored balances, got %s and %s", fwd.Balance, rev.Balance)
	}
}

func TestAggregatePairsSumsAndRounds(t *testing.T) {
	lines := []BookingLine{
		{EntryID: "1", Account: "100", AccountName: "Bank", CounterAccount: "200", CounterAccountName: "Revenue", Debit: dec("0.105"), Balance: dec("0.105")},
		{EntryID: "2", Account: "100", AccountName: "Bank variant", CounterAccount: "200", CounterAccountName: "Revenue variant", Debit: dec("0.105"), Balance: dec("0.105")},
	}

	pairs := AggregatePairs(lines)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair record, got %d", len(pairs))
	}
	if !pairs[0].Debit.Equal(dec("0.21")) {
		t.Errorf("expected summed debit 0.21, got %s", pairs[0].Debit)
	}
	// first-seen names win
	if pairs[0].AccountName != "Bank" || pairs[0].CounterAccountName != "Revenue" {
		t.Errorf("expected first-seen names, got %q / %q", pairs[0].AccountName, pairs[0].CounterAccountName)
	}
}

func TestAggregatePairsFirstSeenDependsOnOrder(t *testing.T) {
	forward := []BookingLine{
		{EntryID: "1", Account: "100", AccountName: "First", CounterAccount: "200", Debit: dec("1"), Balance: dec("1")},
		{EntryID: "2", Account: "100", AccountName: "Second", CounterAccount: "200", Debit: dec("1"), Balance: dec("1")},
	}
	reversed := []BookingLine{forward[1], forward[0]}

	if got := AggregatePairs(forward)[0].AccountName; got != "First" {
		t.Errorf("forward order: expected name First, got %s", got)
	}
	if got := AggregatePairs(reversed)[0].AccountName; got != "Second" {
		t.Errorf("reversed order: expected name Second, got %s", got)
	}
}

func TestChartOfAccounts(t *testing.T) {
	pairs := []PairRecord{
		{Account: "100", AccountName: "Bank", CounterAccount: "200"},
		{Account: "100", AccountName: "Bank", CounterAccount: "300"},
		{Account: "200", AccountName: "Revenue", CounterAccount: "100"},
	}

	accounts := ChartOfAccounts(pairs)
	if len(accounts) != 2 {
		t.Fatalf("expected 2 distinct accounts, got %d", len(accounts))
	}
	if accounts[0].Account != "100" || accounts[1].Account != "200" {
		t.Errorf("expected accounts in first-seen order 100, 200; got %s, %s", accounts[0].Account, accounts[1].Account)
	}
}
