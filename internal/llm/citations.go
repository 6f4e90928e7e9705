package llm

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseSearchChips extracts the suggestion chips (<a class="chip">) from a
// rendered search entry point. It is the fallback citation source when a
// grounded answer carries no web chunks.
func ParseSearchChips(rendered string) []Citation {
	if strings.TrimSpace(rendered) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil
	}

	var out []Citation
	doc.Find("a.chip").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		out = append(out, Citation{
			URI:   strings.TrimSpace(href),
			Title: strings.TrimSpace(s.Text()),
		})
	})
	return out
}
