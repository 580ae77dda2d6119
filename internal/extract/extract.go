// Package extract turns fetched bodies into normalized documents: a title, a
// description, main text, and optionally outbound links.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidContent reports a body that fails to parse as its declared type.
var ErrInvalidContent = errors.New("invalid content")

// Link is one outbound link found in a document.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Document is the normalized extraction of one fetched body.
type Document struct {
	Title       string
	Description string
	Content     string
	ContentType string
	Links       []Link
	WordCount   int
}

// Config controls extraction limits.
type Config struct {
	MaxTextLength int
	MaxLinks      int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTextLength: 2_000_000,
		MaxLinks:      100,
	}
}

// supportedTypes are matched as substrings of the declared content type, the
// same loose matching browsers apply. text/* and many application/x-* types
// are additionally accepted by prefix.
var supportedTypes = []string{
	"text/html",
	"text/plain",
	"application/json",
	"application/xml",
	"text/xml",
	"application/rss+xml",
	"application/atom+xml",
	"text/css",
	"application/javascript",
	"text/javascript",
	"application/xhtml+xml",
	"text/csv",
	"application/x-www-form-urlencoded",
}

// SupportedContentType reports whether the declared content type is in the
// allow-list.
func SupportedContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, s := range supportedTypes {
		if strings.Contains(ct, s) {
			return true
		}
	}
	return strings.HasPrefix(ct, "text/") ||
		strings.HasPrefix(ct, "application/x-") ||
		strings.Contains(ct, "json") ||
		strings.Contains(ct, "xml")
}

// IsHTML reports whether the declared content type is an HTML document.
func IsHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// IsJSON reports whether the declared content type is JSON.
func IsJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// Pipeline dispatches bodies to the HTML, JSON, or plain-text extractor.
type Pipeline struct {
	cfg        Config
	strategies []Strategy
}

// NewPipeline creates a pipeline with the standard HTML fallback chain.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultConfig().MaxTextLength
	}
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = DefaultConfig().MaxLinks
	}
	return &Pipeline{
		cfg: cfg,
		strategies: []Strategy{
			newTrafilaturaStrategy(),
			newReadabilityStrategy(),
			newSelectorStrategy(),
			newFullBodyStrategy(),
		},
	}
}

// NewPipelineWithStrategies creates a pipeline with a caller-supplied chain.
func NewPipelineWithStrategies(cfg Config, strategies ...Strategy) *Pipeline {
	p := NewPipeline(cfg)
	if len(strategies) > 0 {
		p.strategies = strategies
	}
	return p
}

// JSON parses the body and re-serializes it pretty-printed. Parse failure is
// the caller's fault, not the network's.
func (p *Pipeline) JSON(body []byte, pageURL string) (*Document, error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	content := Truncate(string(pretty), p.cfg.MaxTextLength)
	return &Document{
		Title:       fmt.Sprintf("JSON content from %s", hostOf(pageURL)),
		Description: "JSON data content",
		Content:     content,
		ContentType: "application/json",
		WordCount:   len(strings.Fields(content)),
	}, nil
}

// Plain passes decoded text through, truncated to the configured maximum.
func (p *Pipeline) Plain(text, contentType, pageURL string) (*Document, error) {
	content := Truncate(text, p.cfg.MaxTextLength)
	if contentType == "" {
		contentType = "text/plain"
	}
	return &Document{
		Title:       fmt.Sprintf("Text content from %s", hostOf(pageURL)),
		Description: "Plain text content",
		Content:     content,
		ContentType: contentType,
		WordCount:   len(strings.Fields(content)),
	}, nil
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return pageURL
	}
	return u.Host
}
