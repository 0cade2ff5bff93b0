package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText trims a selection's text and collapses inner runs of whitespace.
func CleanText(sel *goquery.Selection) string {
	var text strings.Builder
	for _, node := range sel.Nodes {
		text.WriteString(GetText(node))
	}
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(text.String()), " ")
}

// InputValue returns the value of the first <input> with the exact given name.
// `found` is false if no such input exists, an input with an empty value is
// still found.
func InputValue(doc *goquery.Document, name string) (value string, found bool) {
	var out *goquery.Selection
	doc.Find("input").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.AttrOr("name", "") == name {
			out = s
			return false
		}
		return true
	})
	if out == nil {
		return "", false
	}
	return out.AttrOr("value", ""), true
}

var hiddenStyle = regexp.MustCompile(`(?i)(display\s*:\s*none|visibility\s*:\s*hidden)`)

// IsHidden reports whether an element is marked hidden by its own attributes,
// ancestors are not considered.
func IsHidden(sel *goquery.Selection) bool {
	if _, ok := sel.Attr("hidden"); ok {
		return true
	}
	return hiddenStyle.MatchString(sel.AttrOr("style", ""))
}
