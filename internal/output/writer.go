// Package output serializes fetch records to JSON, JSONL or YAML.
package output

import (
	"fmt"
	"io"

	"github.com/pagepull/pagepull/internal/backoff"
	"github.com/pagepull/pagepull/internal/engine"
	"github.com/pagepull/pagepull/internal/extract"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Record is one fetch outcome, success or failure. A batch emits exactly
// one record per requested URL.
type Record struct {
	URL         string            `json:"url" yaml:"url"`
	Status      string            `json:"status" yaml:"status"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Content     string            `json:"content,omitempty" yaml:"content,omitempty"`
	ContentType string            `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Links       []extract.Link    `json:"links,omitempty" yaml:"links,omitempty"`
	WordCount   int               `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	WasRendered bool              `json:"javascript_rendered,omitempty" yaml:"javascript_rendered,omitempty"`
	Retries     []backoff.Attempt `json:"retries,omitempty" yaml:"retries,omitempty"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType   string            `json:"error_type,omitempty" yaml:"error_type,omitempty"`
}

// SuccessRecord converts an engine result into an output record.
func SuccessRecord(res *engine.Result, retries []backoff.Attempt) Record {
	return Record{
		URL:         res.URL,
		Status:      string(res.Status),
		Title:       res.Title,
		Description: res.Description,
		Content:     res.Content,
		ContentType: res.ContentType,
		Links:       res.Links,
		WordCount:   res.WordCount,
		WasRendered: res.WasRendered,
		Retries:     retries,
	}
}

// ErrorRecord builds the failure record for a URL. Failures the caller
// brought about, bad URLs, unsupported or malformed content, are reported
// as client errors; everything else is a network error.
func ErrorRecord(url string, err error) Record {
	errorType := "network_error"
	if engine.IsClientError(err) {
		errorType = "client_error"
	}
	return Record{
		URL:       url,
		Status:    "error",
		Error:     err.Error(),
		ErrorType: errorType,
	}
}

// Writer handles record serialization.
type Writer interface {
	// Write outputs a single record.
	Write(rec Record) error

	// Flush ensures all buffered records are written.
	Flush() error

	// Close releases resources.
	Close() error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, pretty bool) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(w, pretty), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
