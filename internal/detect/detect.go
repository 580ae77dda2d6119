// Package detect scores raw markup for the likelihood that the page needs
// client-side rendering before it has any content.
package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pagepull/pagepull/internal/logger"
)

// minContentLength is the floor under which markup is presumed to be an
// empty shell awaiting hydration.
const minContentLength = 300

// threshold is the score at which rendering is considered necessary. A
// single strong marker reaches it on its own; weak signals need company,
// which keeps legitimately terse pages out.
const threshold = 2

// strongMarkers are framework shells and hydration payloads worth +2 each.
var strongMarkers = []string{
	"__next_data__",
	"window.__nuxt__",
	"data-reactroot",
	"ng-app",
	"v-app",
	`<div id="root"></div>`,
	`<div id="app"></div>`,
}

// mediumMarkers are textual hints worth +1 each.
var mediumMarkers = []string{
	"this page requires javascript",
	"please enable javascript",
	"javascript is required",
	"loading...",
	"please wait...",
}

// NeedsRendering reports whether the markup likely depends on script
// execution for its content.
func NeedsRendering(markup string) bool {
	score := Score(markup)
	return score >= threshold
}

// Score computes the weighted render-need score for raw markup. Content
// shorter than the minimum length scores at the threshold directly.
func Score(markup string) int {
	if len(strings.TrimSpace(markup)) < minContentLength {
		return threshold
	}

	lower := strings.ToLower(markup)
	score := 0

	for _, m := range strongMarkers {
		if strings.Contains(lower, m) {
			score += 2
		}
	}
	for _, m := range mediumMarkers {
		if strings.Contains(lower, m) {
			score += 1
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		logger.Debug("render-need parse failed, using marker score only", "error", err)
		return score
	}

	visible := strings.TrimSpace(doc.Text())
	ratio := float64(len(visible)) / float64(len(markup))
	switch {
	case ratio < 0.05:
		score += 2
	case ratio < 0.10:
		score += 1
	}

	// A body with almost no structure and little text is another hint of a
	// shell waiting for script.
	body := doc.Find("body").First()
	if body.Length() > 0 {
		if body.Children().Length() <= 3 && len(visible) < 500 {
			score += 1
		}
	}

	return score
}
