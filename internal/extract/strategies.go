package extract

import (
	"bytes"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
)

// trafilaturaStrategy is the first link of the chain: a full-document
// extractor tuned for recall so that sparse but legitimate pages still come
// through.
type trafilaturaStrategy struct {
	opts trafilatura.Options
}

func newTrafilaturaStrategy() *trafilaturaStrategy {
	return &trafilaturaStrategy{
		opts: trafilatura.Options{
			ExcludeComments: true,
			IncludeLinks:    false,
			Focus:           trafilatura.FavorRecall,
			// The pipeline runs its own fallback chain; the library's
			// internal readability fallback would blur strategy boundaries.
			EnableFallback: false,
		},
	}
}

func (s *trafilaturaStrategy) Extract(markup string) (string, error) {
	result, err := trafilatura.Extract(strings.NewReader(markup), s.opts)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return result.ContentText, nil
}

func (s *trafilaturaStrategy) Name() string { return "trafilatura" }

// readabilityStrategy applies Mozilla-style boilerplate removal.
type readabilityStrategy struct{}

func newReadabilityStrategy() *readabilityStrategy { return &readabilityStrategy{} }

func (s *readabilityStrategy) Extract(markup string) (string, error) {
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(markup), nil)
	if err != nil {
		return "", err
	}
	if article.Node == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := article.RenderText(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *readabilityStrategy) Name() string { return "readability" }

// selectorPriority is the ordered list of places main content usually lives:
// semantic elements first, then common CMS content classes.
var selectorPriority = []string{
	"main",
	"article",
	`[role="main"]`,
	".content",
	".post-content",
	".entry-content",
	".article-content",
	"#content",
	".main-content",
}

// selectorStrategy walks the selector priority list and takes the text of
// the first match. Only script, style, and noscript are stripped first:
// aggressive element removal destroys content more often than it removes
// noise.
type selectorStrategy struct{}

func newSelectorStrategy() *selectorStrategy { return &selectorStrategy{} }

func (s *selectorStrategy) Extract(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()

	for _, sel := range selectorPriority {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			return node.Text(), nil
		}
	}
	return "", nil
}

func (s *selectorStrategy) Name() string { return "selector" }

// fullBodyStrategy is the last resort: everything the body says.
type fullBodyStrategy struct{}

func newFullBodyStrategy() *fullBodyStrategy { return &fullBodyStrategy{} }

func (s *fullBodyStrategy) Extract(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()

	if body := doc.Find("body").First(); body.Length() > 0 {
		return body.Text(), nil
	}
	return doc.Text(), nil
}

func (s *fullBodyStrategy) Name() string { return "full_body" }
