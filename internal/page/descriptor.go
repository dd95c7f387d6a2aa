// Package page attaches to a live browser over CDP and turns user
// gestures — selection settles and alt-clicks — into immutable Context
// snapshots for the overlay. Capture happens once per gesture; nothing
// in the engine ever re-touches the live DOM afterwards.
package page

import (
	"strings"

	"golang.org/x/net/html"

	"actionnerd/internal/action"
)

const (
	innerTextLimit = 300
	attrValueLimit = 120
	ancestryLimit  = 3
)

var interactiveTagSet = map[string]bool{
	"a":        true,
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
	"details":  true,
	"summary":  true,
}

// orderBookHints mark elements that render financial order books;
// their dense numeric grids classify as numeric data, not tables.
var orderBookHints = []string{"orderbook", "order-book", "order_book", "bids", "asks", "depth-chart"}

var chartHints = []string{"chart", "graph", "plot", "sparkline", "recharts", "highcharts"}

// BuildElementDescriptor parses a captured outerHTML fragment into an
// ElementDescriptor. ancestry and rect come from the capture script;
// everything else derives from the fragment itself.
func BuildElementDescriptor(outerHTML string, ancestry []action.AncestorRef, rect action.Rect) (*action.ElementDescriptor, error) {
	root, err := parseFragment(outerHTML)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return &action.ElementDescriptor{TagName: "div", Rect: rect}, nil
	}

	if len(ancestry) > ancestryLimit {
		ancestry = ancestry[:ancestryLimit]
	}

	desc := &action.ElementDescriptor{
		TagName:    root.Data,
		Attributes: make(map[string]string),
		Ancestry:   ancestry,
		Rect:       rect,
	}

	for _, attr := range root.Attr {
		switch attr.Key {
		case "id":
			desc.ID = attr.Val
		case "class":
			desc.Classes = strings.Fields(attr.Val)
		}
		desc.Attributes[attr.Key] = truncate(attr.Val, attrValueLimit)
	}

	text := collectText(root)
	desc.InnerText = truncate(text, innerTextLimit)
	desc.Flags = computeFlags(root, desc, text)
	return desc, nil
}

// parseFragment returns the first element node of the fragment.
func parseFragment(outerHTML string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(outerHTML))
	if err != nil {
		return nil, err
	}
	return firstMeaningfulElement(doc), nil
}

// firstMeaningfulElement walks past the html/head/body wrappers the
// parser synthesizes around fragments.
func firstMeaningfulElement(n *html.Node) *html.Node {
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html", "head", "body":
				// Wrapper; look inside.
			default:
				return n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}
	return find(n)
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func computeFlags(root *html.Node, desc *action.ElementDescriptor, text string) action.StructuralFlags {
	flags := action.StructuralFlags{}

	tag := strings.ToLower(desc.TagName)
	if interactiveTagSet[tag] || desc.Attributes["onclick"] != "" ||
		desc.Attributes["role"] == "button" || desc.Attributes["role"] == "link" {
		flags.IsInteractive = true
	}

	classBlob := strings.ToLower(desc.ID + " " + strings.Join(desc.Classes, " "))
	for _, hint := range chartHints {
		if strings.Contains(classBlob, hint) {
			flags.HasChart = true
			break
		}
	}
	if hasDescendant(root, "canvas") || hasDescendant(root, "svg") {
		// Canvas/SVG alone is not proof of a chart; combined with a
		// chart-ish class it is.
		if flags.HasChart || tag == "canvas" {
			flags.HasChart = true
		}
	}

	if tag == "table" || hasDescendant(root, "table") {
		flags.HasTable = true
	}

	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	flags.HasNumbers = digits > 8

	for _, hint := range orderBookHints {
		if strings.Contains(classBlob, hint) {
			flags.IsOrderBook = true
			break
		}
	}

	return flags
}

func hasDescendant(n *html.Node, tag string) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return true
		}
		if hasDescendant(c, tag) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
