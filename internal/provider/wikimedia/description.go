package wikimedia

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// descriptionText strips the HTML markup Commons embeds in extmetadata
// description values, returning collapsed plain text.
func descriptionText(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}
	if !strings.Contains(html, "<") {
		return html
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
