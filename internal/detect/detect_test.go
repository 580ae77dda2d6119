package detect

import (
	"strings"
	"testing"
)

// article builds a content-rich page well above every shell heuristic.
func article() string {
	para := "<p>" + strings.Repeat("Plenty of readable words in this paragraph. ", 10) + "</p>"
	return `<html><head><title>Article</title></head><body>
<h1>A real article</h1>` +
		strings.Repeat(para, 6) +
		`<footer>About</footer><nav>Home</nav></body></html>`
}

func TestNeedsRendering_ShortContent(t *testing.T) {
	if !NeedsRendering("<html><body></body></html>") {
		t.Error("near-empty markup should need rendering")
	}
	if !NeedsRendering("   ") {
		t.Error("whitespace-only markup should need rendering")
	}
}

func TestNeedsRendering_StrongMarkerAlone(t *testing.T) {
	// One strong SPA marker reaches the threshold by itself, regardless of
	// any other signal.
	markup := `<html><head><title>App</title>` +
		`<script>` + strings.Repeat("var x=1;", 200) + `</script></head>` +
		`<body><div id="root"></div></body></html>`

	if !NeedsRendering(markup) {
		t.Error("framework root marker alone should trigger rendering")
	}
}

func TestNeedsRendering_LowTextRatio(t *testing.T) {
	// Under 5% visible text scores +2 on its own.
	markup := `<html><body><div class="` + strings.Repeat("pad ", 400) + `"></div>` +
		`<div>hi</div><div>a</div><div>b</div><div>c</div></body></html>`

	if !NeedsRendering(markup) {
		t.Error("markup with under 5 percent visible text should need rendering")
	}
}

func TestNeedsRendering_MediumMarkerNeedsCompany(t *testing.T) {
	// A healthy page that happens to say "Loading..." somewhere scores only
	// +1 and must not trip the threshold.
	markup := strings.Replace(article(), "<footer>About</footer>",
		"<footer>Loading...</footer>", 1)

	if NeedsRendering(markup) {
		t.Error("single medium marker on a healthy page must not trigger rendering")
	}
}

func TestNeedsRendering_HealthyArticle(t *testing.T) {
	if NeedsRendering(article()) {
		t.Error("content-rich article must not need rendering")
	}
}

func TestScore_SparseBodyAddsOne(t *testing.T) {
	// ≥300 chars, exactly one body child, little text: +1 from structure.
	// Keep the text ratio above 10% so only the structure signal fires.
	text := strings.Repeat("some words here ", 25) // ~400 chars of text
	markup := `<html><body><div>` + text + `</div></body></html>`

	got := Score(markup)
	if got != 1 {
		t.Errorf("Score = %d, want 1 (sparse body only)", got)
	}
	if NeedsRendering(markup) {
		t.Error("sparse body alone must not trigger rendering")
	}
}
