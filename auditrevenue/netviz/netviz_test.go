package netviz

import (
	"strings"
	"testing"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/NepomukLorenz/auditrevenue/auditrevenue/graph"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testGraph() (*graph.Graph, *graph.Rules) {
	pairs := []auditrevenue.PairRecord{
		{Account: "4980", AccountName: "Office Supplies", CounterAccount: "1200", CounterAccountName: "Bank", Debit: dec("20000.00")},
		{Account: "1200", AccountName: "Bank", CounterAccount: "8400", CounterAccountName: "Revenue 19%", Debit: dec("5000.00")},
	}
	categories := map[string]auditrevenue.Category{
		"4980": auditrevenue.CategoryExpense,
		"1200": auditrevenue.CategoryCash,
		"8400": auditrevenue.CategorySalesRevenue,
	}
	rules := graph.DefaultRules()
	return graph.Build(pairs, categories, rules, dec("1000")), rules
}

func TestRenderContainsGraphData(t *testing.T) {
	g, rules := testGraph()

	var buf strings.Builder
	if err := Render(&buf, g, rules, Options{Title: "Client 42"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<title>Client 42</title>",
		`"id":"4980"`,
		`"from":"4980"`,
		`"to":"1200"`,
		`"arrows":"to"`,
		"vis-network",
		"forceAtlas2Based",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestRenderLegendListsPresentCategories(t *testing.T) {
	g, rules := testGraph()

	var buf strings.Builder
	if err := Render(&buf, g, rules, Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()

	for _, category := range []auditrevenue.Category{
		auditrevenue.CategoryExpense,
		auditrevenue.CategoryCash,
		auditrevenue.CategorySalesRevenue,
	} {
		if !strings.Contains(html, string(category)) {
			t.Errorf("legend missing category %s", category)
		}
	}
	if strings.Contains(html, string(auditrevenue.CategoryPayables)) {
		t.Error("legend lists a category with no accounts")
	}
	for _, label := range []string{"Opening balance", "Critical relationship", "Below materiality"} {
		if !strings.Contains(html, label) {
			t.Errorf("edge legend missing %q", label)
		}
	}
}

func TestRenderPhysicsToggle(t *testing.T) {
	g, rules := testGraph()

	var buf strings.Builder
	if err := Render(&buf, g, rules, Options{DisablePhysics: true}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "enabled: false") {
		t.Error("physics not disabled in rendered page")
	}
}

func TestReadableTextColor(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#ffffff", "#000000"},
		{"#b7d6ff", "#000000"},
		{"#ff0000", "#ffffff"},
		{"#000000", "#ffffff"},
		{"not-a-color", "#000000"},
	}
	for _, tc := range tests {
		if got := readableTextColor(tc.hex); got != tc.want {
			t.Errorf("readableTextColor(%s) = %s, want %s", tc.hex, got, tc.want)
		}
	}
}
