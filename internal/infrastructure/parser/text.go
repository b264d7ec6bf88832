package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tagPattern matches a well-formed start, end or self-closing tag whose attributes are quoted.
// A bare "<" as in "n<m" or "a<b and c>d" does not match.
var tagPattern = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9]*(?:\s+[A-Za-z_:][-A-Za-z0-9_:.]*\s*=\s*(?:"[^"]*"|'[^']*'))*\s*/?>`)

var bracketEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// PlainText strips HTML markup and entities and collapses runs of whitespace.
// arXiv abstracts regularly carry inline tags such as <i> or <sub>, and also
// comparisons such as 0<x<1 that must survive as text.
func PlainText(value string) string {
	if !strings.ContainsAny(value, "<&") {
		return collapse(value)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(escapeStrayBrackets(value)))
	if err != nil {
		return collapse(value)
	}

	return collapse(doc.Text())
}

// escapeStrayBrackets entity-encodes every < and > that is not part of a tag.
func escapeStrayBrackets(value string) string {
	var b strings.Builder
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(value, -1) {
		b.WriteString(bracketEscaper.Replace(value[last:loc[0]]))
		b.WriteString(value[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(bracketEscaper.Replace(value[last:]))
	return b.String()
}

func collapse(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
