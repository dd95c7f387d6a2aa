// Package classify maps ambiguous page content to a ContentType.
// It is the single classification authority for both suggesters, so the
// heuristics cannot drift between them.
//
// Priority order, first match wins:
//  1. element-sourced types when an element descriptor is present
//     (Image, Chart, Table, Form, Interactive, order-book numerics)
//  2. Code
//  3. Email
//  4. NumericData
//  5. List
//  6. Question
//  7. LongText
//  8. Generic
//
// Classification is pure and total: every input maps to a known type.
// Empty or whitespace-only content must be filtered by callers before
// it reaches Classify.
package classify

import (
	"regexp"
	"strings"

	"actionnerd/internal/action"
)

var (
	codeKeywordRe = regexp.MustCompile(`\b(function|class|const|let|var|if|for|while|import|export|return|def|public|private|void)\b`)
	emailTokenRe  = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`)
	salutationRe  = regexp.MustCompile(`(?i)\b(dear|hi|hello|regards|sincerely|thanks)\b`)
	numericTokRe  = regexp.MustCompile(`^[-+]?[$€£¥]?\d[\d,.]*%?$`)
	listMarkerRe  = regexp.MustCompile(`^\s*([-*•◦▪]|\d+[.)])\s+`)
)

// codeHostDomains are hosts whose selections lean Code even without
// keyword evidence.
var codeHostDomains = map[string]bool{
	"github.com":        true,
	"gitlab.com":        true,
	"bitbucket.org":     true,
	"stackoverflow.com": true,
	"codepen.io":        true,
	"jsfiddle.net":      true,
}

// mailDomains are hosts whose selections lean Email.
var mailDomains = map[string]bool{
	"mail.google.com":    true,
	"outlook.live.com":   true,
	"outlook.office.com": true,
	"mail.yahoo.com":     true,
	"mail.proton.me":     true,
	"app.slack.com":      true,
}

// interactiveTags are tags treated as interactive controls.
var interactiveTags = map[string]bool{
	"button": true,
	"a":      true,
	"select": true,
	"input":  true,
}

// Classify resolves the content type for a gesture context. Ambiguity
// is not an error; anything unrecognized is Generic.
func Classify(ctx *action.Context) action.ContentType {
	if ctx == nil {
		return action.TypeGeneric
	}
	if ctx.Element != nil {
		return classifyElement(ctx.Element, ctx.Domain)
	}
	if ctx.Selection != nil {
		return classifyText(ctx.Selection.Excerpt(), ctx.Domain)
	}
	return action.TypeGeneric
}

func classifyElement(el *action.ElementDescriptor, domain string) action.ContentType {
	tag := strings.ToLower(el.TagName)

	switch {
	case tag == "img" || tag == "picture":
		return action.TypeImage
	case el.Flags.HasChart || tag == "canvas":
		return action.TypeChart
	case tag == "svg":
		return action.TypeImage
	case tag == "table" || el.Flags.HasTable:
		return action.TypeTable
	case tag == "form" || tag == "textarea" || tag == "fieldset":
		return action.TypeForm
	case el.Flags.IsOrderBook:
		return action.TypeNumericData
	case el.Flags.IsInteractive || interactiveTags[tag]:
		return action.TypeInteractive
	}

	// No structural match: fall through to the element's captured text.
	if strings.TrimSpace(el.InnerText) == "" {
		if el.Flags.HasNumbers {
			return action.TypeNumericData
		}
		return action.TypeGeneric
	}
	return classifyText(el.InnerText, domain)
}

func classifyText(text, domain string) action.ContentType {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch {
	case looksLikeCode(trimmed, lower, domain):
		return action.TypeCode
	case looksLikeEmail(trimmed, lower, domain):
		return action.TypeEmail
	case numericTokenCount(trimmed) > 3:
		return action.TypeNumericData
	case looksLikeList(trimmed):
		return action.TypeList
	case strings.Contains(trimmed, "?"):
		return action.TypeQuestion
	case len(strings.Fields(trimmed)) > 50:
		return action.TypeLongText
	default:
		return action.TypeGeneric
	}
}

func looksLikeCode(text, lower, domain string) bool {
	if codeHostDomains[domain] {
		return true
	}
	if codeKeywordRe.MatchString(lower) {
		return true
	}
	return strings.ContainsAny(text, "{}[]();") || strings.Contains(text, "=>")
}

func looksLikeEmail(text, lower, domain string) bool {
	if mailDomains[domain] {
		return true
	}
	return salutationRe.MatchString(lower) || emailTokenRe.MatchString(text)
}

func numericTokenCount(text string) int {
	n := 0
	for _, tok := range strings.Fields(text) {
		if numericTokRe.MatchString(tok) {
			n++
		}
	}
	return n
}

func looksLikeList(text string) bool {
	lines := strings.Split(text, "\n")
	if listMarkerRe.MatchString(lines[0]) {
		return true
	}
	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	return nonEmpty > 3
}
