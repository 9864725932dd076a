package email

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	trailingSpaceRe  = regexp.MustCompile(`[ \t]+\n`)
	excessiveLinesRe = regexp.MustCompile(`\n{3,}`)
)

// PlainText derives a plain-text alternative from an HTML body: tags are dropped,
// <br> variants become line breaks, block ends become blank lines and entities are
// decoded. Script and style contents are skipped.
func PlainText(htmlBody string) string {
	z := html.NewTokenizer(strings.NewReader(htmlBody))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			out := trailingSpaceRe.ReplaceAllString(b.String(), "\n")
			out = excessiveLinesRe.ReplaceAllString(out, "\n\n")
			return strings.TrimSpace(out)
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				b.WriteByte('\n')
			case "script", "style":
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "div", "h1", "h2", "h3", "tr", "li":
				b.WriteString("\n\n")
			case "script", "style":
				if skip > 0 {
					skip--
				}
			}
		}
	}
}
