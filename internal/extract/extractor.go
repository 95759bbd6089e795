package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// The generation model is told to answer with clean HTML, but its
// output drifts between formats. Extraction runs an ordered list of
// strategies and keeps the first one that yields any candidate:
//
//  1. <h2> heading text
//  2. "Título:" / "Title:" labels inside list items, paragraphs or
//     plain lines
//  3. lines that look like a capitalized title phrase
//
// A malformed document yields an empty list, never an error.
type strategy struct {
	name string
	fn   func(doc *html.Node) []string
}

var strategies = []strategy{
	{name: "heading", fn: headingTitles},
	{name: "label", fn: labeledTitles},
	{name: "capitalized-line", fn: capitalizedLines},
}

const (
	minTitleLen  = 3
	maxTitleToks = 8
)

var (
	labelRe   = regexp.MustCompile(`(?i)t[íi]tulo\s*[:\-]\s*(.+)|title\s*[:\-]\s*(.+)`)
	numberRe  = regexp.MustCompile(`^\d+\s*[.)\-]\s*`)
	capLineRe = regexp.MustCompile(`^\p{Lu}[\p{L}\p{N}'’:,&-]*(\s+[\p{Lu}\p{N}][\p{L}\p{N}'’:,&-]*)*$`)
)

// Titles extracts an ordered, deduplicated list of candidate movie
// titles from raw model output. Order is first-seen order; re-running
// on identical input yields an identical list.
func Titles(raw string) []string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// html.Parse is tolerant of arbitrary input; treat a parse
		// failure like malformed output.
		slog.Warn("could not parse generation output", "error", err)
		return nil
	}

	for _, s := range strategies {
		if titles := sift(s.fn(doc)); len(titles) > 0 {
			slog.Debug("titles extracted", "strategy", s.name, "count", len(titles))
			return titles
		}
	}

	slog.Warn("no titles found in generation output", "length", len(raw))
	return nil
}

// headingTitles collects <h2> text, the shape the prompt asks for.
func headingTitles(doc *html.Node) []string {
	var titles []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "h2" {
			titles = append(titles, clean(nodeText(n)))
		}
	})
	return titles
}

// labeledTitles matches explicit "Título:" / "Title:" markers inside
// list items and paragraphs, then in plain text lines for output that
// came back without markup.
func labeledTitles(doc *html.Node) []string {
	var segments []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "li" || n.Data == "p") {
			segments = append(segments, nodeText(n))
		}
	})
	for _, line := range strings.Split(nodeText(doc), "\n") {
		segments = append(segments, line)
	}

	var titles []string
	for _, seg := range segments {
		m := labelRe.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		title := m[1]
		if title == "" {
			title = m[2]
		}
		titles = append(titles, clean(title))
	}
	return titles
}

// capitalizedLines is the last-resort heuristic: keep plain lines
// where every word starts with a capital letter or digit.
func capitalizedLines(doc *html.Node) []string {
	var titles []string
	for _, line := range strings.Split(nodeText(doc), "\n") {
		line = clean(line)
		if capLineRe.MatchString(line) {
			titles = append(titles, line)
		}
	}
	return titles
}

// sift applies the candidate filtering rules: drop short strings, drop
// strings that look like full sentences, deduplicate preserving first
// occurrence order.
func sift(candidates []string) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, c := range candidates {
		if utf8.RuneCountInString(c) < minTitleLen {
			continue
		}
		if len(strings.Fields(c)) > maxTitleToks {
			continue
		}
		if !strings.ContainsFunc(c, unicode.IsLetter) {
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		titles = append(titles, c)
	}
	return titles
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	s = numberRe.ReplaceAllString(s, "")
	return strings.Trim(s, `"“” `)
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// nodeText returns the concatenated text content of a node, with a
// space standing in for intervening markup.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.TrimSpace(b.String())
}
