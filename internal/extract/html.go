package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pagepull/pagepull/internal/logger"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`(?:\n[ \t]*){3,}`)
)

// minUsableText is the floor below which a strategy's output is considered
// unusable and the chain advances.
const minUsableText = 50

// maxLinkText caps the visible text kept per extracted link.
const maxLinkText = 200

// noTitle is returned when a page has neither a <title> nor an <h1>.
const noTitle = "No title found"

// Strategy is one way of pulling main text out of markup. Strategies are
// tried in order until one yields usable text.
type Strategy interface {
	Extract(markup string) (string, error)
	Name() string
}

// HTML runs the extraction chain over the markup and assembles the document.
func (p *Pipeline) HTML(markup, pageURL string, wantLinks bool) (*Document, error) {
	var text string
	for _, s := range p.strategies {
		got, err := s.Extract(markup)
		if err != nil {
			logger.Debug("extraction strategy failed", "strategy", s.Name(), "error", err)
			continue
		}
		if len(strings.TrimSpace(got)) > minUsableText {
			logger.Debug("extraction strategy succeeded", "strategy", s.Name(), "chars", len(got))
			text = got
			break
		}
		logger.Debug("extraction strategy yielded too little text",
			"strategy", s.Name(), "chars", len(strings.TrimSpace(got)))
	}

	content := Truncate(NormalizeWhitespace(text), p.cfg.MaxTextLength)

	doc := &Document{
		Content:     content,
		ContentType: "text/html",
		WordCount:   len(strings.Fields(content)),
	}

	q, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		doc.Title = noTitle
		return doc, nil
	}

	doc.Title = extractTitle(q)
	doc.Description = extractDescription(q)
	if wantLinks {
		doc.Links = extractLinks(q, pageURL, p.cfg.MaxLinks)
	}

	return doc, nil
}

func extractTitle(q *goquery.Document) string {
	if t := strings.TrimSpace(q.Find("title").First().Text()); t != "" {
		return t
	}
	if h1 := strings.TrimSpace(q.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return noTitle
}

func extractDescription(q *goquery.Document) string {
	if desc, ok := q.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if d := strings.TrimSpace(desc); d != "" {
			return d
		}
	}
	if desc, ok := q.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	return ""
}

// NormalizeWhitespace collapses runs of spaces and tabs to one space and
// runs of three or more newlines to exactly two.
func NormalizeWhitespace(s string) string {
	s = spaceRuns.ReplaceAllString(s, " ")
	s = newlineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// TruncationMarker is appended whenever content is cut at the length limit.
const TruncationMarker = "... [content truncated]"

// Truncate cuts s to at most max bytes plus the truncation marker, backing
// up to a rune boundary so the cut never leaves invalid UTF-8.
// Already-truncated input passes through unchanged, so the operation is
// idempotent.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if strings.HasSuffix(s, TruncationMarker) && len(s) <= max+len(TruncationMarker) {
		return s
	}
	return s[:runeBoundary(s, max)] + TruncationMarker
}

// runeBoundary returns the largest cut point at or below max that does not
// split a multibyte rune.
func runeBoundary(s string, max int) int {
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return max
}
