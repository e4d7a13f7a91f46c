package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockElements start on a new line when flattened to text.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true, "pre": true, "tr": true,
}

// EditableText flattens an edited HTML fragment (as produced by a contentEditable region)
// into plain text the way a browser reports innerText: <br> and block boundaries become
// line breaks, markup is dropped and entities are decoded.
func EditableText(fragment string) (string, error) {
	if !strings.Contains(fragment, "<") {
		return html.UnescapeString(fragment), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + fragment + "</body>"))
	if err != nil {
		return "", fmt.Errorf("failed to parse edited content: %w", err)
	}
	doc.Find("script, style").Remove()

	var b strings.Builder
	for _, n := range doc.Find("body").Nodes {
		writeText(&b, n)
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n"), nil
}

func writeText(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if c.Data == "br" {
				b.WriteString("\n")
				continue
			}
			block := blockElements[c.Data]
			if block {
				newline(b)
			}
			writeText(b, c)
			if block {
				newline(b)
			}
		}
	}
}

// newline ends the current line unless the builder is empty or already at a line start.
func newline(b *strings.Builder) {
	s := b.String()
	if s == "" || strings.HasSuffix(s, "\n") {
		return
	}
	b.WriteString("\n")
}
