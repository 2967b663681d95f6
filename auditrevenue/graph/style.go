package graph

import (
	"fmt"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Edge colors of the risk buckets.
const (
	ColorOpening    = "#b7d6ff"
	ColorPlausible  = "#00d515"
	ColorImmaterial = "#999999"
	ColorCritical   = "#ffbf00"
	ColorAnomalous  = "#ff0000"
)

// Edge width bounds in pixels.
const (
	minEdgeWidth = 1.0
	maxEdgeWidth = 5.0
)

// CategoryPair is an unordered pair of account categories.
type CategoryPair struct {
	A auditrevenue.Category
	B auditrevenue.Category
}

// EdgeStyle is the visual style chosen for a relationship edge.
type EdgeStyle struct {
	Color   string
	Opacity float64
	Width   float64
	Dashed  bool
}

// Rules holds the fixed classification tables driving node colors and
// the edge style cascade. The tables are data, not code: defaults can be
// replaced wholesale from a YAML file without touching the build loop.
type Rules struct {
	NodeColors        map[auditrevenue.Category]string
	FallbackNodeColor string

	plausible  map[CategoryPair]bool
	critical   map[CategoryPair]bool
	irrelevant map[CategoryPair]bool
}

// DefaultRules returns the built-in category color table and the
// plausible/critical/irrelevant pair sets.
func DefaultRules() *Rules {
	return newRules(
		map[auditrevenue.Category]string{
			auditrevenue.CategorySalesRevenue:     "#fbffa5",
			auditrevenue.CategoryOtherRevenue:     "#fbff87",
			auditrevenue.CategoryReceivables:      "#000000",
			auditrevenue.CategoryExpense:          "#5ca3ff",
			auditrevenue.CategoryOtherReceivables: "#000000",
			auditrevenue.CategoryPayables:         "#000000",
			auditrevenue.CategoryCash:             "#c300d5",
			auditrevenue.CategoryClearing:         "#c300d5",
			auditrevenue.CategorySalesTax:         "#c300d5",
			auditrevenue.CategoryOtherAssets:      "#ffffff",
			auditrevenue.CategoryOtherLiabilities: "#b7b7b7",
			auditrevenue.CategoryOpening:          "#ffffff",
		},
		[]CategoryPair{
			{auditrevenue.CategorySalesRevenue, auditrevenue.CategoryReceivables},
			{auditrevenue.CategorySalesRevenue, auditrevenue.CategoryPayables},
			{auditrevenue.CategoryExpense, auditrevenue.CategoryPayables},
			{auditrevenue.CategoryReceivables, auditrevenue.CategoryCash},
			{auditrevenue.CategoryOtherReceivables, auditrevenue.CategoryCash},
			{auditrevenue.CategoryPayables, auditrevenue.CategoryCash},
			{auditrevenue.CategoryOtherRevenue, auditrevenue.CategoryReceivables},
			{auditrevenue.CategoryOtherRevenue, auditrevenue.CategoryPayables},
		},
		[]CategoryPair{
			{auditrevenue.CategoryExpense, auditrevenue.CategoryCash},
			{auditrevenue.CategoryExpense, auditrevenue.CategoryClearing},
			{auditrevenue.CategoryReceivables, auditrevenue.CategoryClearing},
			{auditrevenue.CategoryReceivables, auditrevenue.CategoryOtherLiabilities},
			{auditrevenue.CategoryReceivables, auditrevenue.CategoryOtherAssets},
			{auditrevenue.CategoryPayables, auditrevenue.CategoryClearing},
			{auditrevenue.CategoryPayables, auditrevenue.CategoryOtherAssets},
			{auditrevenue.CategoryPayables, auditrevenue.CategoryOtherLiabilities},
		},
		[]CategoryPair{
			{auditrevenue.CategoryOtherLiabilities, auditrevenue.CategoryOtherAssets},
			{auditrevenue.CategoryOtherRevenue, auditrevenue.CategoryOtherLiabilities},
			{auditrevenue.CategoryOtherRevenue, auditrevenue.CategoryOtherAssets},
			{auditrevenue.CategoryOtherRevenue, auditrevenue.CategoryCash},
			{auditrevenue.CategoryOtherAssets, auditrevenue.CategoryCash},
			{auditrevenue.CategoryOtherLiabilities, auditrevenue.CategoryCash},
			{auditrevenue.CategoryOtherReceivables, auditrevenue.CategoryOtherLiabilities},
			{auditrevenue.CategoryOtherReceivables, auditrevenue.CategoryOtherAssets},
			{auditrevenue.CategoryExpense, auditrevenue.CategoryOtherLiabilities},
			{auditrevenue.CategoryExpense, auditrevenue.CategoryOtherAssets},
		},
	)
}

func newRules(colors map[auditrevenue.Category]string, plausible, critical, irrelevant []CategoryPair) *Rules {
	return &Rules{
		NodeColors:        colors,
		FallbackNodeColor: "#cccccc",
		plausible:         pairSet(plausible),
		critical:          pairSet(critical),
		irrelevant:        pairSet(irrelevant),
	}
}

// pairSet indexes pairs in both directions.
func pairSet(pairs []CategoryPair) map[CategoryPair]bool {
	set := make(map[CategoryPair]bool, 2*len(pairs))
	for _, p := range pairs {
		set[p] = true
		set[CategoryPair{p.B, p.A}] = true
	}
	return set
}

// NodeColor returns the color of a category, falling back to neutral for
// anything outside the taxonomy.
func (r *Rules) NodeColor(category auditrevenue.Category) string {
	if color, ok := r.NodeColors[category]; ok {
		return color
	}
	return r.FallbackNodeColor
}

// EdgeStyle runs the ordered classification cascade for a directed flow
// from src to dst. The flow magnitude is max(|debit|, |credit|); maxFlow
// is the largest magnitude across all edges and drives the width
// normalization. Edges below the materiality threshold are dashed no
// matter which branch colored them.
func (r *Rules) EdgeStyle(src, dst auditrevenue.Category, debit, credit, threshold, maxFlow decimal.Decimal) EdgeStyle {
	flow := decimal.Max(debit.Abs(), credit.Abs())
	pair := CategoryPair{src, dst}

	var style EdgeStyle
	switch {
	case src == auditrevenue.CategoryOpening || dst == auditrevenue.CategoryOpening:
		style.Color = ColorOpening
		style.Opacity = 0.25
	case r.plausible[pair]:
		style.Color = ColorPlausible
		style.Opacity = 1.0
	case flow.LessThan(threshold):
		style.Color = ColorImmaterial
		style.Opacity = 0.5
	case src == auditrevenue.CategorySalesTax || dst == auditrevenue.CategorySalesTax:
		style.Color = ColorPlausible
		style.Opacity = 1.0
	case src == dst:
		style.Color = ColorImmaterial
		style.Opacity = 0.5
	case r.irrelevant[pair]:
		style.Color = ColorImmaterial
		style.Opacity = 0.5
	case r.critical[pair]:
		style.Color = ColorCritical
		style.Opacity = 1.0
	default:
		style.Color = ColorAnomalous
		style.Opacity = 1.0
	}

	style.Dashed = flow.LessThan(threshold)
	style.Width = normalizeWidth(flow, maxFlow)
	return style
}

func normalizeWidth(flow, maxFlow decimal.Decimal) float64 {
	if maxFlow.Sign() <= 0 {
		return minEdgeWidth
	}
	ratio, _ := flow.Div(maxFlow).Float64()
	width := minEdgeWidth + ratio*(maxEdgeWidth-minEdgeWidth)
	// two decimal places is plenty for pixel widths
	return float64(int(width*100+0.5)) / 100
}

// rulesFile is the YAML shape of an override file. Pairs are two-element
// category-name lists; a missing section keeps the built-in table.
type rulesFile struct {
	NodeColors map[string]string `yaml:"node_colors"`
	Plausible  [][]string        `yaml:"plausible"`
	Critical   [][]string        `yaml:"critical"`
	Irrelevant [][]string        `yaml:"irrelevant"`
}

// RulesFromYAML builds a rule set from a YAML override document, keeping
// built-in defaults for any section the document omits. Unknown category
// names are rejected so a typo cannot silently drop a rule.
func RulesFromYAML(data []byte) (*Rules, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("rules file: %w", err)
	}

	rules := DefaultRules()

	if len(file.NodeColors) > 0 {
		colors := make(map[auditrevenue.Category]string, len(file.NodeColors))
		for name, color := range file.NodeColors {
			category, ok := auditrevenue.ParseCategory(name)
			if !ok {
				return nil, fmt.Errorf("rules file: unknown category %q", name)
			}
			colors[category] = color
		}
		rules.NodeColors = colors
	}

	parsePairs := func(section string, raw [][]string) ([]CategoryPair, error) {
		pairs := make([]CategoryPair, 0, len(raw))
		for _, entry := range raw {
			if len(entry) != 2 {
				return nil, fmt.Errorf("rules file: %s entry needs exactly two categories, got %d", section, len(entry))
			}
			a, ok := auditrevenue.ParseCategory(entry[0])
			if !ok {
				return nil, fmt.Errorf("rules file: unknown category %q", entry[0])
			}
			b, ok := auditrevenue.ParseCategory(entry[1])
			if !ok {
				return nil, fmt.Errorf("rules file: unknown category %q", entry[1])
			}
			pairs = append(pairs, CategoryPair{a, b})
		}
		return pairs, nil
	}

	if file.Plausible != nil {
		pairs, err := parsePairs("plausible", file.Plausible)
		if err != nil {
			return nil, err
		}
		rules.plausible = pairSet(pairs)
	}
	if file.Critical != nil {
		pairs, err := parsePairs("critical", file.Critical)
		if err != nil {
			return nil, err
		}
		rules.critical = pairSet(pairs)
	}
	if file.Irrelevant != nil {
		pairs, err := parsePairs("irrelevant", file.Irrelevant)
		if err != nil {
			return nil, err
		}
		rules.irrelevant = pairSet(pairs)
	}
	return rules, nil
}
