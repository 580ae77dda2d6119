package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractLinks collects anchors with visible text whose href resolves to an
// absolute http(s) URL. Fragment-only anchors and non-web schemes such as
// mailto: and javascript: are dropped.
func extractLinks(q *goquery.Document, pageURL string, maxLinks int) []Link {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var links []Link
	q.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}

		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return true
		}

		if len(text) > maxLinkText {
			text = text[:runeBoundary(text, maxLinkText)]
		}
		links = append(links, Link{URL: ref.String(), Text: text})
		return len(links) < maxLinks
	})

	return links
}
