// Package mus draws monetary unit samples: every currency unit of the
// population has the same chance of selection, so large bookings are
// proportionally more likely to be examined. Selection is systematic
// with a seeded random start, which makes a drawn sample reproducible.
package mus

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyPopulation = errors.New("population has no monetary value")
	ErrInvalidSize     = errors.New("sample size must be positive")
)

// Sample selects up to size elements from the population of amounts
// and returns their indices in ascending order. Amounts enter the
// population by absolute value; an amount of at least one sampling
// interval is always selected.
func Sample(amounts []decimal.Decimal, size int, seed int64) ([]int, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	type unit struct {
		index  int
		amount decimal.Decimal
	}
	population := make([]unit, 0, len(amounts))
	total := decimal.Zero
	for i, amount := range amounts {
		abs := amount.Abs()
		if abs.IsZero() {
			continue
		}
		population = append(population, unit{index: i, amount: abs})
		total = total.Add(abs)
	}
	if total.IsZero() {
		return nil, ErrEmptyPopulation
	}
	if size >= len(population) {
		indices := make([]int, len(population))
		for i, u := range population {
			indices[i] = u.index
		}
		sort.Ints(indices)
		return indices, nil
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].amount.LessThan(population[j].amount)
	})

	cumulative := make([]decimal.Decimal, len(population))
	running := decimal.Zero
	for i, u := range population {
		running = running.Add(u.amount)
		cumulative[i] = running
	}

	interval := total.Div(decimal.NewFromInt(int64(size)))
	start := interval.Mul(decimal.NewFromFloat(rand.New(rand.NewSource(seed)).Float64()))

	selected := make(map[int]bool)
	for i := 0; i < size; i++ {
		point := start.Add(interval.Mul(decimal.NewFromInt(int64(i))))
		j := sort.Search(len(cumulative), func(k int) bool {
			return cumulative[k].GreaterThan(point)
		})
		if j < len(population) {
			selected[population[j].index] = true
		}
	}

	indices := make([]int, 0, len(selected))
	for index := range selected {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices, nil
}

// SampleLines draws a monetary unit sample over the balance column of
// the journal and returns the selected lines in journal order.
func SampleLines(lines []auditrevenue.BookingLine, size int, seed int64) ([]auditrevenue.BookingLine, error) {
	amounts := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		amounts[i] = line.Balance
	}
	indices, err := Sample(amounts, size, seed)
	if err != nil {
		return nil, err
	}
	sampled := make([]auditrevenue.BookingLine, len(indices))
	for i, index := range indices {
		sampled[i] = lines[index]
	}
	return sampled, nil
}

// Mark reports for every line of the journal whether it is part of the
// sample, aligned by index with the input.
func Mark(lines []auditrevenue.BookingLine, size int, seed int64) ([]bool, error) {
	amounts := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		amounts[i] = line.Balance
	}
	indices, err := Sample(amounts, size, seed)
	if err != nil {
		return nil, err
	}
	marks := make([]bool, len(lines))
	for _, index := range indices {
		marks[index] = true
	}
	return marks, nil
}
