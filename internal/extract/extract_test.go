package extract

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSupportedContentType(t *testing.T) {
	supported := []string{
		"text/html",
		"text/html; charset=utf-8",
		"text/plain",
		"application/json",
		"application/xml",
		"application/rss+xml",
		"application/xhtml+xml",
		"text/csv",
		"text/anything-at-all",
		"application/x-yaml",
		"application/ld+json",
	}
	for _, ct := range supported {
		if !SupportedContentType(ct) {
			t.Errorf("SupportedContentType(%q) = false, want true", ct)
		}
	}

	unsupported := []string{
		"image/png",
		"application/pdf",
		"application/octet-stream",
		"video/mp4",
	}
	for _, ct := range unsupported {
		if SupportedContentType(ct) {
			t.Errorf("SupportedContentType(%q) = true, want false", ct)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Run("under_limit_unchanged", func(t *testing.T) {
		s := "short content"
		if got := Truncate(s, 100); got != s {
			t.Errorf("Truncate = %q, want unchanged", got)
		}
	})

	t.Run("at_limit_unchanged", func(t *testing.T) {
		s := strings.Repeat("a", 50)
		if got := Truncate(s, 50); got != s {
			t.Error("content exactly at the limit must not be truncated")
		}
	})

	t.Run("over_limit_cut_with_marker", func(t *testing.T) {
		s := strings.Repeat("a", 80)
		got := Truncate(s, 50)
		if len(got) != 50+len(TruncationMarker) {
			t.Errorf("truncated length = %d, want %d", len(got), 50+len(TruncationMarker))
		}
		if !strings.HasSuffix(got, TruncationMarker) {
			t.Error("truncated content must end with the marker")
		}
	})

	t.Run("multibyte_rune_not_split", func(t *testing.T) {
		// 40 two-byte runes; a limit of 51 falls mid-rune and must back
		// up to byte 50.
		s := strings.Repeat("é", 40)
		got := Truncate(s, 51)
		if !utf8.ValidString(got) {
			t.Fatalf("truncated content is not valid UTF-8: %q", got)
		}
		if got != strings.Repeat("é", 25)+TruncationMarker {
			t.Errorf("Truncate = %q, want cut at the rune boundary", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		s := strings.Repeat("a", 80)
		once := Truncate(s, 50)
		twice := Truncate(once, 50)
		if once != twice {
			t.Errorf("re-truncation changed content: %q vs %q", once, twice)
		}
	})
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"space_runs", "a   b\t\tc", "a b c"},
		{"three_newlines", "a\n\n\nb", "a\n\nb"},
		{"many_newlines", "a\n\n\n\n\n\nb", "a\n\nb"},
		{"two_newlines_kept", "a\n\nb", "a\n\nb"},
		{"trim", "  padded  ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tt.in); got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// stubStrategy returns canned text and records that it was called.
type stubStrategy struct {
	name   string
	text   string
	called *[]string
}

func (s *stubStrategy) Extract(string) (string, error) {
	*s.called = append(*s.called, s.name)
	return s.text, nil
}

func (s *stubStrategy) Name() string { return s.name }

func TestHTML_FallbackChainAdvancesOnShortText(t *testing.T) {
	var called []string
	long := strings.Repeat("plenty of extracted words here ", 5)

	p := NewPipelineWithStrategies(DefaultConfig(),
		&stubStrategy{name: "first", text: "too short", called: &called},
		&stubStrategy{name: "second", text: long, called: &called},
		&stubStrategy{name: "third", text: "unused", called: &called},
	)

	doc, err := p.HTML("<html><body>x</body></html>", "https://example.com", false)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}

	if !reflect.DeepEqual(called, []string{"first", "second"}) {
		t.Errorf("strategy call order = %v, want [first second]", called)
	}
	if !strings.Contains(doc.Content, "plenty of extracted words") {
		t.Errorf("content came from the wrong strategy: %q", doc.Content)
	}
}

func TestHTML_TitleFallbacks(t *testing.T) {
	p := NewPipeline(DefaultConfig())

	tests := []struct {
		name, markup, want string
	}{
		{"title_tag", "<html><head><title>Page Title</title></head><body><h1>H1</h1></body></html>", "Page Title"},
		{"h1_fallback", "<html><body><h1>Heading Only</h1></body></html>", "Heading Only"},
		{"no_title", "<html><body><p>text</p></body></html>", noTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := p.HTML(tt.markup, "https://example.com", false)
			if err != nil {
				t.Fatalf("HTML: %v", err)
			}
			if doc.Title != tt.want {
				t.Errorf("Title = %q, want %q", doc.Title, tt.want)
			}
		})
	}
}

func TestHTML_DescriptionFallbacks(t *testing.T) {
	p := NewPipeline(DefaultConfig())

	tests := []struct {
		name, markup, want string
	}{
		{
			"meta_description",
			`<html><head><meta name="description" content="meta desc"><meta property="og:description" content="og desc"></head><body></body></html>`,
			"meta desc",
		},
		{
			"og_fallback",
			`<html><head><meta property="og:description" content="og desc"></head><body></body></html>`,
			"og desc",
		},
		{
			"none",
			"<html><body></body></html>",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := p.HTML(tt.markup, "https://example.com", false)
			if err != nil {
				t.Fatalf("HTML: %v", err)
			}
			if doc.Description != tt.want {
				t.Errorf("Description = %q, want %q", doc.Description, tt.want)
			}
		})
	}
}

func TestHTML_LinkExtraction(t *testing.T) {
	p := NewPipeline(DefaultConfig())

	markup := `<html><body>
<a href="/x">Click</a>
<a href="https://other.com/abs">Absolute</a>
<a href="mailto:someone@example.com">Mail</a>
<a href="javascript:void(0)">JS</a>
<a href="/empty"></a>
<a href="#frag">Fragment</a>
</body></html>`

	doc, err := p.HTML(markup, "https://a.com/p", true)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}

	want := []Link{
		{URL: "https://a.com/x", Text: "Click"},
		{URL: "https://other.com/abs", Text: "Absolute"},
	}
	if !reflect.DeepEqual(doc.Links, want) {
		t.Errorf("Links = %v, want %v", doc.Links, want)
	}
}

func TestHTML_LinkCaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLinks = 3
	p := NewPipeline(cfg)

	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		b.WriteString(`<a href="/p">` + strings.Repeat("t", 300) + `</a>`)
	}
	b.WriteString("</body></html>")

	doc, err := p.HTML(b.String(), "https://a.com", true)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}

	if len(doc.Links) != 3 {
		t.Errorf("link count = %d, want capped at 3", len(doc.Links))
	}
	for _, l := range doc.Links {
		if len(l.Text) > maxLinkText {
			t.Errorf("link text length = %d, want at most %d", len(l.Text), maxLinkText)
		}
	}
}

func TestHTML_LinkTextCapKeepsValidUTF8(t *testing.T) {
	p := NewPipeline(DefaultConfig())

	// One ASCII byte then 150 two-byte runes: the 200-byte cap lands
	// mid-rune and must back up.
	markup := `<html><body><a href="/p">a` + strings.Repeat("é", 150) + `</a></body></html>`

	doc, err := p.HTML(markup, "https://a.com", true)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if len(doc.Links) != 1 {
		t.Fatalf("link count = %d, want 1", len(doc.Links))
	}

	text := doc.Links[0].Text
	if !utf8.ValidString(text) {
		t.Fatalf("link text is not valid UTF-8: %q", text)
	}
	if text != "a"+strings.Repeat("é", 99) {
		t.Errorf("link text = %q, want cut at the rune boundary", text)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	p := NewPipeline(DefaultConfig())

	original := map[string]any{
		"name":  "widget",
		"count": float64(3),
		"tags":  []any{"a", "b"},
	}
	body, _ := json.Marshal(original)

	doc, err := p.JSON(body, "https://api.example.com/v1/widgets")
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(doc.Content), &parsed); err != nil {
		t.Fatalf("content is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(parsed, original) {
		t.Errorf("round trip mismatch: %v vs %v", parsed, original)
	}

	if doc.WordCount != len(strings.Fields(doc.Content)) {
		t.Errorf("WordCount = %d, want %d", doc.WordCount, len(strings.Fields(doc.Content)))
	}
	if doc.Title != "JSON content from api.example.com" {
		t.Errorf("Title = %q", doc.Title)
	}
}

func TestJSON_InvalidContent(t *testing.T) {
	p := NewPipeline(DefaultConfig())

	_, err := p.JSON([]byte("{not json"), "https://example.com")
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !strings.Contains(err.Error(), ErrInvalidContent.Error()) {
		t.Errorf("error %v should wrap ErrInvalidContent", err)
	}
}

func TestPlain_PassThrough(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTextLength = 20
	p := NewPipeline(cfg)

	doc, err := p.Plain(strings.Repeat("x", 40), "text/plain", "https://files.example.com/readme.txt")
	if err != nil {
		t.Fatalf("Plain: %v", err)
	}

	if len(doc.Content) != 20+len(TruncationMarker) {
		t.Errorf("content length = %d, want truncated", len(doc.Content))
	}
	if doc.Title != "Text content from files.example.com" {
		t.Errorf("Title = %q", doc.Title)
	}
}

func TestDecodeBody(t *testing.T) {
	t.Run("utf8_passthrough", func(t *testing.T) {
		body := []byte("héllo wörld")
		if got := DecodeBody(body, "text/plain; charset=utf-8"); got != "héllo wörld" {
			t.Errorf("DecodeBody = %q", got)
		}
	})

	t.Run("latin1_declared", func(t *testing.T) {
		// "café" in ISO-8859-1: é is 0xE9.
		body := []byte{'c', 'a', 'f', 0xE9}
		got := DecodeBody(body, "text/plain; charset=iso-8859-1")
		if got != "café" {
			t.Errorf("DecodeBody = %q, want café", got)
		}
	})

	t.Run("invalid_bytes_replaced_not_fatal", func(t *testing.T) {
		// Curly quotes in windows-1252, invalid as UTF-8.
		body := []byte{0x93, 'o', 'k', 0x94}
		got := DecodeBody(body, "")
		if got == "" {
			t.Error("fallback decoding must not return empty output")
		}
		if !strings.Contains(got, "ok") {
			t.Errorf("decoded output lost valid bytes: %q", got)
		}
	})
}
