// Package parser extracts hyperlinks from HTML documents.
package parser

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Anchor is a single hyperlink: its visible text and the raw href value.
type Anchor struct {
	Text string
	Href string
}

// Error reports markup the underlying parser could not tolerate.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "unable to parse html: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Links extracts every anchor carrying an href attribute, in document order.
// Anchors without an href are skipped. Text is the anchor's descendant text
// nodes joined with single spaces, without trimming or collapsing.
func Links(body []byte) ([]Anchor, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Err: err}
	}

	anchors := []Anchor{}
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, ok := selection.Attr("href")
		if !ok {
			return
		}

		anchors = append(anchors, Anchor{
			Text: anchorText(selection),
			Href: href,
		})
	})

	return anchors, nil
}

func anchorText(selection *goquery.Selection) string {
	parts := []string{}
	for _, node := range selection.Nodes {
		collectText(node, &parts)
	}

	return strings.Join(parts, " ")
}

func collectText(node *html.Node, parts *[]string) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			*parts = append(*parts, child.Data)

			continue
		}

		collectText(child, parts)
	}
}
