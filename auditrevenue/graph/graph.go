// Package graph builds the categorized, risk-styled counter-account
// relationship graph from an aggregated pair table. The finished graph
// is the pipeline's terminal artifact; rendering it is someone else's
// job.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/shopspring/decimal"
)

// Node size bounds and the per-relationship growth factor.
const (
	minNodeSize   = 10.0
	maxNodeSize   = 20.0
	sizePerDegree = 0.25
)

// Node is one account of the relationship graph.
type Node struct {
	Account  string
	Name     string
	Category auditrevenue.Category
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Balance  decimal.Decimal

	// Degree counts the distinct pair relationships touching the
	// account on either side.
	Degree int

	Color   string
	Size    float64
	Tooltip string
}

// Edge is one directed account-to-counter-account flow. Only pair
// records with a positive debit become edges; the opposite direction's
// record carries the credit flow.
type Edge struct {
	From    string
	To      string
	Flow    decimal.Decimal
	Color   string
	Opacity float64
	Width   float64
	Dashed  bool
	Tooltip string
}

// Graph is the immutable output artifact handed to the renderer.
type Graph struct {
	Nodes   []Node
	Edges   []Edge
	MaxFlow decimal.Decimal
}

// Build constructs the relationship graph from the aggregated pair
// table. Categories come from the caller's classification map; accounts
// missing from it carry CategoryUnknown and the neutral fallback color.
// Nil rules use the built-in tables.
func Build(pairs []auditrevenue.PairRecord, categories map[string]auditrevenue.Category, rules *Rules, materiality decimal.Decimal) *Graph {
	if rules == nil {
		rules = DefaultRules()
	}

	categoryOf := func(account string) auditrevenue.Category {
		if category, ok := categories[account]; ok {
			return category
		}
		return auditrevenue.CategoryUnknown
	}

	maxFlow := decimal.Zero
	for _, pair := range pairs {
		maxFlow = decimal.Max(maxFlow, pair.Debit.Abs(), pair.Credit.Abs())
	}

	g := &Graph{MaxFlow: maxFlow}
	g.Nodes = buildNodes(pairs, categoryOf, rules)

	for _, pair := range pairs {
		if pair.Debit.Sign() <= 0 {
			continue
		}
		src := categoryOf(pair.Account)
		dst := categoryOf(pair.CounterAccount)
		style := rules.EdgeStyle(src, dst, pair.Debit, pair.Credit, materiality, maxFlow)

		g.Edges = append(g.Edges, Edge{
			From:    pair.Account,
			To:      pair.CounterAccount,
			Flow:    pair.Debit,
			Color:   style.Color,
			Opacity: style.Opacity,
			Width:   style.Width,
			Dashed:  style.Dashed,
			Tooltip: edgeTooltip(pair, src, dst),
		})
	}
	return g
}

func buildNodes(pairs []auditrevenue.PairRecord, categoryOf func(string) auditrevenue.Category, rules *Rules) []Node {
	order := make([]string, 0)
	nodes := make(map[string]*Node)
	degree := make(map[string]int)

	for _, pair := range pairs {
		node, seen := nodes[pair.Account]
		if !seen {
			node = &Node{Account: pair.Account, Name: pair.AccountName}
			nodes[pair.Account] = node
			order = append(order, pair.Account)
		}
		node.Debit = node.Debit.Add(pair.Debit)
		node.Credit = node.Credit.Add(pair.Credit)
		node.Balance = node.Balance.Add(pair.Balance)

		degree[pair.Account]++
		degree[pair.CounterAccount]++
	}

	built := make([]Node, 0, len(order))
	for _, account := range order {
		node := nodes[account]
		node.Category = categoryOf(account)
		node.Color = rules.NodeColor(node.Category)
		node.Degree = degree[account]
		node.Size = nodeSize(node.Degree)
		node.Tooltip = nodeTooltip(*node, pairs)
		built = append(built, *node)
	}
	return built
}

func nodeSize(degree int) float64 {
	size := float64(degree) * sizePerDegree
	if size < minNodeSize {
		return minNodeSize
	}
	if size > maxNodeSize {
		return maxNodeSize
	}
	return size
}

// nodeTooltip lists the account's counter-accounts by debit and by
// credit volume in descending order, mirroring the workpaper layout the
// auditors review.
func nodeTooltip(node Node, pairs []auditrevenue.PairRecord) string {
	var own []auditrevenue.PairRecord
	for _, pair := range pairs {
		if pair.Account == node.Account {
			own = append(own, pair)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\n", node.Account)
	fmt.Fprintf(&b, "Name: %s\n", node.Name)
	fmt.Fprintf(&b, "Category: %s\n", node.Category)
	fmt.Fprintf(&b, "Balance: %s\n", node.Balance.StringFixedBank(2))

	byDebit := make([]auditrevenue.PairRecord, len(own))
	copy(byDebit, own)
	sort.SliceStable(byDebit, func(i, j int) bool {
		return byDebit[i].Debit.GreaterThan(byDebit[j].Debit)
	})
	b.WriteString("=== Counter-accounts by debit ===\n")
	writeCounterList(&b, byDebit, func(p auditrevenue.PairRecord) decimal.Decimal { return p.Debit })

	byCredit := make([]auditrevenue.PairRecord, len(own))
	copy(byCredit, own)
	sort.SliceStable(byCredit, func(i, j int) bool {
		return byCredit[i].Credit.GreaterThan(byCredit[j].Credit)
	})
	b.WriteString("=== Counter-accounts by credit ===\n")
	writeCounterList(&b, byCredit, func(p auditrevenue.PairRecord) decimal.Decimal { return p.Credit })

	return strings.TrimRight(b.String(), "\n")
}

func writeCounterList(b *strings.Builder, pairs []auditrevenue.PairRecord, amount func(auditrevenue.PairRecord) decimal.Decimal) {
	if len(pairs) == 0 {
		b.WriteString("none\n")
		return
	}
	for _, pair := range pairs {
		fmt.Fprintf(b, "%16s  %-10s %s\n", amount(pair).StringFixedBank(2), pair.CounterAccount, pair.CounterAccountName)
	}
}

func edgeTooltip(pair auditrevenue.PairRecord, src, dst auditrevenue.Category) string {
	return fmt.Sprintf("%s\n%s\n%s\n→\n%s\n%s\n%s\n\nAmount:\n%s",
		pair.Account, pair.AccountName, src,
		pair.CounterAccount, pair.CounterAccountName, dst,
		pair.Debit.StringFixedBank(2))
}
