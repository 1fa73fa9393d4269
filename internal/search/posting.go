package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/intern-scout/internal/util"
)

// Posting is a single search result treated as a job posting.
// Title is the identity used for deduplication and is kept exactly as returned.
type Posting struct {
	Title       string `json:"title" mapstructure:"title"`
	Link        string `json:"link" mapstructure:"link"`
	Description string `json:"description" mapstructure:"snippet"`
}

// Text returns the text the posting is matched on.
func (p *Posting) Text() string {
	return p.Title + " " + p.Description
}

// plainText strips markup and entities the API leaves in snippets.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return util.SingleLine(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return util.SingleLine(s)
	}

	return util.SingleLine(doc.Text())
}
