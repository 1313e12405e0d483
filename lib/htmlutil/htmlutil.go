package htmlutil

import (
	"bytes"
	"dealcrawl-backend/lib/textutil"
	"strings"
	"unicode"

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
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText returns the text content of every node in the selection with
// non-printable characters removed and whitespace collapsed.
func CleanText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	return textutil.CollapseWhitespace(removeNonPrintable(buffer.String()))
}

// TextOr returns the cleaned text of the first element matching `selector`
// under `sel`, or `fallback` if there is no such element or its text is empty.
func TextOr(sel *goquery.Selection, selector, fallback string) string {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return fallback
	}
	text := CleanText(found)
	if text == "" {
		return fallback
	}
	return text
}

// AttrOr returns the first non-empty attribute out of `attrs` on the first
// element matching `selector`, or `fallback`.
func AttrOr(sel *goquery.Selection, selector string, attrs []string, fallback string) string {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return fallback
	}
	for _, a := range attrs {
		value := strings.TrimSpace(found.AttrOr(a, ""))
		if value != "" {
			return value
		}
	}
	return fallback
}
