// Package classify assigns each account a category from the fixed audit
// taxonomy. Classification is modeled as a single capability so the
// graph-building core never cares whether answers come from a local
// store, a trained classifier or a remote model.
package classify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/shopspring/decimal"
)

// ErrUnclassifiable signals that an implementation has no answer for
// the account; chained classifiers fall through to the next one.
var ErrUnclassifiable = errors.New("account could not be classified")

// Request carries one account plus the optional context summaries that
// sharpen classification.
type Request struct {
	Account string
	Name    string

	// CounterSummary lists the account's top counter-accounts by debit
	// volume, one per line.
	CounterSummary string

	// NeighborSummary lists numerically adjacent accounts of the chart
	// of accounts, one per line.
	NeighborSummary string
}

// Classifier maps an account to exactly one taxonomy category.
type Classifier interface {
	Classify(ctx context.Context, req Request) (auditrevenue.Category, error)
}

// Chain tries each classifier in order and returns the first answer.
// When every link fails the account stays CategoryUnknown; the joined
// errors tell the caller why.
type Chain []Classifier

func (ch Chain) Classify(ctx context.Context, req Request) (auditrevenue.Category, error) {
	var errs []error
	for _, c := range ch {
		category, err := c.Classify(ctx, req)
		if err == nil {
			return category, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return auditrevenue.CategoryUnknown, errors.Join(errs...)
}

// CounterSummary renders the top n counter-accounts of the given
// account by summed debit volume.
func CounterSummary(pairs []auditrevenue.PairRecord, account string, n int) string {
	type counter struct {
		name  string
		debit decimal.Decimal
	}

	order := make([]string, 0)
	sums := make(map[string]decimal.Decimal)
	for _, pair := range pairs {
		if pair.Account != account {
			continue
		}
		if _, seen := sums[pair.CounterAccountName]; !seen {
			order = append(order, pair.CounterAccountName)
		}
		sums[pair.CounterAccountName] = sums[pair.CounterAccountName].Add(pair.Debit)
	}

	counters := make([]counter, 0, len(order))
	for _, name := range order {
		counters = append(counters, counter{name: name, debit: sums[name]})
	}
	sort.SliceStable(counters, func(i, j int) bool {
		return counters[i].debit.GreaterThan(counters[j].debit)
	})
	if len(counters) > n {
		counters = counters[:n]
	}

	lines := make([]string, 0, len(counters))
	for _, c := range counters {
		lines = append(lines, fmt.Sprintf("%s: %s", c.name, c.debit.StringFixedBank(2)))
	}
	return strings.Join(lines, "\n")
}

// NeighborSummary renders up to n numerically adjacent accounts on each
// side of the given account in the chart of accounts. Accounts without
// a numeric identifier produce no summary.
func NeighborSummary(accounts []auditrevenue.AccountInfo, account string, n int) string {
	target, err := strconv.Atoi(account)
	if err != nil {
		return ""
	}

	type numbered struct {
		number int
		info   auditrevenue.AccountInfo
	}
	sorted := make([]numbered, 0, len(accounts))
	for _, info := range accounts {
		number, err := strconv.Atoi(info.Account)
		if err != nil {
			continue
		}
		sorted = append(sorted, numbered{number: number, info: info})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].number < sorted[j].number })

	pos := -1
	for i, entry := range sorted {
		if entry.number == target {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ""
	}

	start := pos - n
	if start < 0 {
		start = 0
	}
	end := pos + n + 1
	if end > len(sorted) {
		end = len(sorted)
	}

	lines := make([]string, 0, end-start)
	for _, entry := range sorted[start:end] {
		if entry.info.Account == account {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", entry.info.Account, entry.info.Name))
	}
	return strings.Join(lines, "\n")
}

// Result is the classification outcome for the chart of accounts.
type Result struct {
	Categories map[string]auditrevenue.Category

	// Failed lists the accounts left CategoryUnknown after every
	// classifier gave up.
	Failed []string
}

// All classifies every distinct account of the pair table exactly once,
// sequentially and in chart order, so the outcome is deterministic.
// Failures do not abort the run: the account keeps CategoryUnknown and
// is reported in the result.
func All(ctx context.Context, classifier Classifier, pairs []auditrevenue.PairRecord) (*Result, error) {
	accounts := auditrevenue.ChartOfAccounts(pairs)

	result := &Result{Categories: make(map[string]auditrevenue.Category, len(accounts))}
	for _, info := range accounts {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		req := Request{
			Account:         info.Account,
			Name:            info.Name,
			CounterSummary:  CounterSummary(pairs, info.Account, 3),
			NeighborSummary: NeighborSummary(accounts, info.Account, 3),
		}
		category, err := classifier.Classify(ctx, req)
		if err != nil {
			result.Categories[info.Account] = auditrevenue.CategoryUnknown
			result.Failed = append(result.Failed, info.Account)
			continue
		}
		result.Categories[info.Account] = category
	}
	return result, nil
}
