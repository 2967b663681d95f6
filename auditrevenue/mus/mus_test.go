package mus

import (
	"errors"
	"testing"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func amounts(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = dec(v)
	}
	return out
}

func TestSampleDeterministic(t *testing.T) {
	population := amounts("120.00", "4500.00", "80.00", "999.99", "310.50", "42.00", "7600.00", "15.00")

	first, err := Sample(population, 3, 42)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	second, err := Sample(population, 3, 42)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}

	if len(first) == 0 || len(first) > 3 {
		t.Fatalf("sample has %d elements, want 1 to 3", len(first))
	}
	if len(first) != len(second) {
		t.Fatalf("sample sizes differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("index %d differs between runs: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestSampleAlwaysSelectsDominantAmount(t *testing.T) {
	// 90000 exceeds the sampling interval for any size, so index 2 must
	// be in every sample regardless of seed.
	population := amounts("100.00", "250.00", "90000.00", "80.00", "45.00")

	for seed := int64(0); seed < 25; seed++ {
		indices, err := Sample(population, 2, seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		found := false
		for _, index := range indices {
			if index == 2 {
				found = true
			}
		}
		if !found {
			t.Errorf("seed %d: dominant amount not selected, sample %v", seed, indices)
		}
	}
}

func TestSampleNegativeAmountsEnterByAbsoluteValue(t *testing.T) {
	population := amounts("-90000.00", "10.00", "20.00")

	indices, err := Sample(population, 2, 7)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	found := false
	for _, index := range indices {
		if index == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("sample = %v, want the negative amount at index 0 selected", indices)
	}
}

func TestSampleCoversWholePopulation(t *testing.T) {
	population := amounts("10.00", "0.00", "30.00", "20.00")

	indices, err := Sample(population, 10, 1)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	want := []int{0, 2, 3}
	if len(indices) != len(want) {
		t.Fatalf("sample = %v, want %v", indices, want)
	}
	for i := range want {
		if indices[i] != want[i] {
			t.Fatalf("sample = %v, want %v", indices, want)
		}
	}
}

func TestSampleErrors(t *testing.T) {
	if _, err := Sample(amounts("10.00"), 0, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("size 0: error = %v, want ErrInvalidSize", err)
	}
	if _, err := Sample(amounts("0.00", "0.00"), 1, 1); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("zero population: error = %v, want ErrEmptyPopulation", err)
	}
	if _, err := Sample(nil, 1, 1); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("nil population: error = %v, want ErrEmptyPopulation", err)
	}
}

func TestSampleLinesKeepsJournalOrder(t *testing.T) {
	lines := []auditrevenue.BookingLine{
		{EntryID: "1", Account: "1200", Balance: dec("500.00")},
		{EntryID: "2", Account: "4980", Balance: dec("70000.00")},
		{EntryID: "3", Account: "8400", Balance: dec("-120.00")},
	}

	sampled, err := SampleLines(lines, 3, 9)
	if err != nil {
		t.Fatalf("SampleLines: %v", err)
	}
	if len(sampled) != 3 {
		t.Fatalf("sampled %d lines, want 3", len(sampled))
	}
	for i, line := range sampled {
		if line.EntryID != lines[i].EntryID {
			t.Errorf("line %d: entry %s, want %s", i, line.EntryID, lines[i].EntryID)
		}
	}
}

func TestMarkAlignsWithInput(t *testing.T) {
	lines := []auditrevenue.BookingLine{
		{EntryID: "1", Balance: dec("10.00")},
		{EntryID: "2", Balance: dec("90000.00")},
		{EntryID: "3", Balance: dec("25.00")},
	}

	marks, err := Mark(lines, 2, 3)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if len(marks) != len(lines) {
		t.Fatalf("marks has %d entries, want %d", len(marks), len(lines))
	}
	if !marks[1] {
		t.Error("dominant line not marked")
	}
	marked := 0
	for _, m := range marks {
		if m {
			marked++
		}
	}
	if marked > 2 {
		t.Errorf("%d lines marked, want at most 2", marked)
	}
}
