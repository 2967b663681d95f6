package auditrevenue

import "testing"

func TestCheckMirrorPairs(t *testing.T) {
	tests := []struct {
		name  string
		pairs []PairRecord
		want  []MirrorViolation
	}{
		{
			name: "consistent mirror pair",
			pairs: []PairRecord{
				{Account: "100", CounterAccount: "200", Debit: dec("500"), Credit: dec("0"), Balance: dec("500")},
				{Account: "200", CounterAccount: "100", Debit: dec("0"), Credit: dec("500"), Balance: dec("-500")},
			},
			want: nil,
		},
		{
			name: "drift within tolerance accepted",
			pairs: []PairRecord{
				{Account: "100", CounterAccount: "200", Debit: dec("500.05"), Credit: dec("0"), Balance: dec("500.05")},
				{Account: "200", CounterAccount: "100", Debit: dec("0"), Credit: dec("500"), Balance: dec("-500")},
			},
			want: nil,
		},
		{
			name: "balance drift beyond tolerance flagged both directions",
			pairs: []PairRecord{
				{Account: "100", CounterAccount: "200", Debit: dec("501"), Credit: dec("0"), Balance: dec("501")},
				{Account: "200", CounterAccount: "100", Debit: dec("0"), Credit: dec("500"), Balance: dec("-500")},
			},
			want: []MirrorViolation{
				{Account: "100", CounterAccount: "200"},
				{Account: "200", CounterAccount: "100"},
			},
		},
		{
			name: "missing reverse record flagged",
			pairs: []PairRecord{
				{Account: "100", CounterAccount: "200", Debit: dec("500"), Balance: dec("500")},
			},
			want: []MirrorViolation{
				{Account: "100", CounterAccount: "200", Missing: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckMirrorPairs(tt.pairs, DefaultMirrorTolerance)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d violations, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("violation %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestCheckTotals(t *testing.T) {
	tests := []struct {
		name         string
		debit        string
		credit       string
		wantBalanced bool
	}{
		{name: "equal sums", debit: "500", credit: "500", wantBalanced: true},
		{name: "drift within tolerance", debit: "500", credit: "500.3", wantBalanced: true},
		{name: "drift beyond tolerance", debit: "500", credit: "501", wantBalanced: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := []PairRecord{
				{Debit: dec(tt.debit), Credit: dec("0")},
				{Debit: dec("0"), Credit: dec(tt.credit)},
			}
			totals := CheckTotals(pairs, DefaultTotalsTolerance)
			if totals.Balanced != tt.wantBalanced {
				t.Errorf("expected balanced=%v for debit=%s credit=%s, got %v",
					tt.wantBalanced, totals.Debit, totals.Credit, totals.Balanced)
			}
		})
	}
}

// Every pair record produced from a validated journal must round-trip:
// aggregate a symmetric journal, then assert mirrors and totals.
func TestAggregateMirrorRoundTrip(t *testing.T) {
	lines := []BookingLine{
		{EntryID: "1", Account: "100", AccountName: "Bank", CounterAccount: "200", CounterAccountName: "Revenue", Debit: dec("500"), Balance: dec("500")},
		{EntryID: "1", Account: "200", AccountName: "Revenue", CounterAccount: "100", CounterAccountName: "Bank", Credit: dec("500"), Balance: dec("-500")},
		{EntryID: "2", Account: "100", AccountName: "Bank", CounterAccount: "200", CounterAccountName: "Revenue", Debit: dec("41.60"), Balance: dec("41.60")},
		{EntryID: "2", Account: "200", AccountName: "Revenue", CounterAccount: "100", CounterAccountName: "Bank", Credit: dec("41.60"), Balance: dec("-41.60")},
		{EntryID: "3", Account: "300", AccountName: "Till", CounterAccount: "100", CounterAccountName: "Bank", Debit: dec("12"), Balance: dec("12")},
		{EntryID: "3", Account: "100", AccountName: "Bank", CounterAccount: "300", CounterAccountName: "Till", Credit: dec("12"), Balance: dec("-12")},
	}

	pairs := AggregatePairs(lines)
	if violations := CheckMirrorPairs(pairs, DefaultMirrorTolerance); len(violations) != 0 {
		t.Errorf("expected no mirror violations, got %+v", violations)
	}
	totals := CheckTotals(pairs, DefaultTotalsTolerance)
	if !totals.Balanced {
		t.Errorf("expected balanced totals, got debit=%s credit=%s", totals.Debit, totals.Credit)
	}
}
