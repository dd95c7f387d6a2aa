// Package action defines the shared vocabulary of the contextual action
// engine: the immutable Context snapshot captured at gesture time, the
// Action records presented to the user, content classification buckets,
// and the usage statistics that feed ranking.
package action

import (
	"strings"
	"time"
	"unicode"
)

// ExcerptLimit caps how much selected text classifiers and suggestion
// calls ever see. Execution always uses the full selection.
const ExcerptLimit = 500

// Rect is a bounding rectangle in page viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextSelection is a snapshot of selected text plus where it sits on the
// page.
type TextSelection struct {
	Text string `json:"text"`
	Rect Rect   `json:"rect"`
}

// Excerpt returns at most ExcerptLimit characters of the selection,
// cut on a rune boundary.
func (s *TextSelection) Excerpt() string {
	if s == nil {
		return ""
	}
	runes := []rune(s.Text)
	if len(runes) <= ExcerptLimit {
		return s.Text
	}
	return string(runes[:ExcerptLimit])
}

// AncestorRef identifies one level of an element's ancestry.
type AncestorRef struct {
	TagName string   `json:"tag_name"`
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

// StructuralFlags are cheap structural signals computed at capture time
// so classification never has to re-walk the DOM.
type StructuralFlags struct {
	IsInteractive bool `json:"is_interactive"`
	HasChart      bool `json:"has_chart"`
	HasTable      bool `json:"has_table"`
	HasNumbers    bool `json:"has_numbers"`
	IsOrderBook   bool `json:"is_order_book"`
}

// ElementDescriptor is a snapshot of a clicked element: enough structure
// to classify it without ever re-touching the live page.
type ElementDescriptor struct {
	TagName    string            `json:"tag_name"`
	ID         string            `json:"id,omitempty"`
	Classes    []string          `json:"classes,omitempty"`
	InnerText  string            `json:"inner_text,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Ancestry   []AncestorRef     `json:"ancestry,omitempty"`
	Rect       Rect              `json:"rect"`
	Flags      StructuralFlags   `json:"flags"`
}

// Context is the immutable snapshot taken at gesture time. Exactly one
// of Selection or Element is set. It is owned by the request that
// created it and never mutated afterwards.
type Context struct {
	URL       string             `json:"url"`
	Title     string             `json:"title"`
	Domain    string             `json:"domain"`
	Selection *TextSelection     `json:"selection,omitempty"`
	Element   *ElementDescriptor `json:"element,omitempty"`
}

// Content returns the raw text carried by the context: the full
// selection text, or the element's captured inner text.
func (c *Context) Content() string {
	switch {
	case c == nil:
		return ""
	case c.Selection != nil:
		return c.Selection.Text
	case c.Element != nil:
		return c.Element.InnerText
	default:
		return ""
	}
}

// Empty reports whether the context carries nothing to act on. A
// text selection must have non-whitespace content; an element gesture
// is never empty, the descriptor itself is the content (images, charts
// and icon buttons usually have no inner text).
func (c *Context) Empty() bool {
	if c == nil {
		return true
	}
	if c.Element != nil {
		return false
	}
	return strings.TrimFunc(c.Content(), unicode.IsSpace) == ""
}

// AnchorRect returns the rectangle the overlay should anchor to.
func (c *Context) AnchorRect() Rect {
	switch {
	case c == nil:
		return Rect{}
	case c.Selection != nil:
		return c.Selection.Rect
	case c.Element != nil:
		return c.Element.Rect
	default:
		return Rect{}
	}
}

// ContentType is the classification bucket that decides which heuristic
// action quadruple applies. The set is closed; switches over it must be
// exhaustive with Generic as the catch-all.
type ContentType string

const (
	TypeCode        ContentType = "code"
	TypeEmail       ContentType = "email"
	TypeList        ContentType = "list"
	TypeNumericData ContentType = "numeric_data"
	TypeQuestion    ContentType = "question"
	TypeLongText    ContentType = "long_text"
	TypeImage       ContentType = "image"
	TypeChart       ContentType = "chart"
	TypeTable       ContentType = "table"
	TypeInteractive ContentType = "interactive"
	TypeForm        ContentType = "form"
	TypeGeneric     ContentType = "generic"
)

// ContentTypes lists every ContentType variant. Tests iterate it to
// prove the heuristic table is total.
func ContentTypes() []ContentType {
	return []ContentType{
		TypeCode, TypeEmail, TypeList, TypeNumericData, TypeQuestion,
		TypeLongText, TypeImage, TypeChart, TypeTable, TypeInteractive,
		TypeForm, TypeGeneric,
	}
}

// Action is a single user-selectable operation. ID is stable snake_case
// and is the only join key with usage statistics: Label, Icon and
// Description may vary call-to-call for the same ID when a generative
// suggester produced them.
type Action struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// BatchSize is the number of actions always presented to the user.
const BatchSize = 4

// ActionStats are the per-action usage counters. Clicks only ever
// grows, except through an explicit full reset.
type ActionStats struct {
	Clicks   int        `json:"clicks"`
	LastUsed *time.Time `json:"last_used,omitempty"`
}

// UsageStats maps action ID to its counters. A missing entry means zero
// clicks.
type UsageStats map[string]ActionStats
