// Package netviz renders a relationship graph as a standalone HTML
// page built on vis-network. The page is self-contained except for the
// vis-network script itself, which is loaded from a CDN.
package netviz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/NepomukLorenz/auditrevenue/auditrevenue/graph"
	"github.com/lucasb-eyer/go-colorful"
)

//go:embed graph.html.tmpl
var graphTemplate string

// Options controls the rendered page.
type Options struct {
	Title string

	// Height is the CSS height of the network container, "100vh" when
	// empty.
	Height string

	// DisablePhysics freezes the layout after stabilization. Useful
	// for very large charts of accounts.
	DisablePhysics bool
}

type visNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Title string  `json:"title,omitempty"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
	Shape string  `json:"shape"`
}

type visEdgeColor struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type visEdge struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Color  visEdgeColor `json:"color"`
	Width  float64      `json:"width"`
	Dashes bool         `json:"dashes"`
	Title  string       `json:"title,omitempty"`
	Arrows string       `json:"arrows"`
}

type legendEntry struct {
	Label     string
	Color     string
	TextColor string
	Dashed    bool
}

type pageData struct {
	Title      string
	Height     string
	Physics    bool
	Nodes      template.JS
	Edges      template.JS
	NodeLegend []legendEntry
	EdgeLegend []legendEntry
}

// Render writes the HTML page for the graph to w.
func Render(w io.Writer, g *graph.Graph, rules *graph.Rules, opts Options) error {
	if opts.Title == "" {
		opts.Title = "Account Relationship Graph"
	}
	if opts.Height == "" {
		opts.Height = "100vh"
	}

	nodes := make([]visNode, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		nodes = append(nodes, visNode{
			ID:    node.Account,
			Label: fmt.Sprintf("%s %s", node.Account, node.Name),
			Title: node.Tooltip,
			Color: node.Color,
			Size:  node.Size,
			Shape: "dot",
		})
	}
	edges := make([]visEdge, 0, len(g.Edges))
	for _, edge := range g.Edges {
		edges = append(edges, visEdge{
			From:   edge.From,
			To:     edge.To,
			Color:  visEdgeColor{Color: edge.Color, Opacity: edge.Opacity},
			Width:  edge.Width,
			Dashes: edge.Dashed,
			Title:  edge.Tooltip,
			Arrows: "to",
		})
	}

	nodeJSON, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("marshal nodes: %w", err)
	}
	edgeJSON, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("marshal edges: %w", err)
	}

	tmpl, err := template.New("graph").Parse(graphTemplate)
	if err != nil {
		return fmt.Errorf("parse graph template: %w", err)
	}
	return tmpl.Execute(w, pageData{
		Title:      opts.Title,
		Height:     opts.Height,
		Physics:    !opts.DisablePhysics,
		Nodes:      template.JS(nodeJSON),
		Edges:      template.JS(edgeJSON),
		NodeLegend: nodeLegend(g, rules),
		EdgeLegend: edgeLegend(),
	})
}

// WriteFile renders the graph page into a file.
func WriteFile(filename string, g *graph.Graph, rules *graph.Rules, opts Options) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Render(f, g, rules, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// nodeLegend lists the categories actually present in the graph, in
// taxonomy order, with a readable text color on each swatch.
func nodeLegend(g *graph.Graph, rules *graph.Rules) []legendEntry {
	present := make(map[auditrevenue.Category]bool)
	for _, node := range g.Nodes {
		present[node.Category] = true
	}

	categories := make([]auditrevenue.Category, 0, len(present))
	for _, category := range auditrevenue.Categories() {
		if present[category] {
			categories = append(categories, category)
		}
	}
	if present[auditrevenue.CategoryUnknown] {
		categories = append(categories, auditrevenue.CategoryUnknown)
	}

	legend := make([]legendEntry, 0, len(categories))
	for _, category := range categories {
		color := rules.NodeColor(category)
		legend = append(legend, legendEntry{
			Label:     string(category),
			Color:     color,
			TextColor: readableTextColor(color),
		})
	}
	return legend
}

func edgeLegend() []legendEntry {
	return []legendEntry{
		{Label: "Opening balance", Color: graph.ColorOpening},
		{Label: "Plausible relationship", Color: graph.ColorPlausible},
		{Label: "Below materiality", Color: graph.ColorImmaterial, Dashed: true},
		{Label: "Critical relationship", Color: graph.ColorCritical},
		{Label: "Unexpected relationship", Color: graph.ColorAnomalous},
	}
}

// readableTextColor picks black or white depending on the perceived
// luminance of the background swatch.
func readableTextColor(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "#000000"
	}
	if _, _, l := c.Hcl(); l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}
