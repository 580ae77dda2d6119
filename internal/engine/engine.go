// Package engine drives one logical fetch through URL validation, per-domain
// sessions, retry with identity rotation, the render decision, and content
// extraction, producing one normalized result or a classified error.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/pagepull/pagepull/internal/backoff"
	"github.com/pagepull/pagepull/internal/detect"
	"github.com/pagepull/pagepull/internal/extract"
	"github.com/pagepull/pagepull/internal/identity"
	"github.com/pagepull/pagepull/internal/logger"
	"github.com/pagepull/pagepull/internal/render"
	"github.com/pagepull/pagepull/internal/session"
)

// Status labels a completed fetch.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusRendered Status = "success_js_rendered"
	StatusError    Status = "error"
)

// Result is the normalized outcome of one fetch. Immutable once returned;
// WordCount always equals the whitespace-token count of Content.
type Result struct {
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	ContentType string         `json:"content_type"`
	Links       []extract.Link `json:"links"`
	WordCount   int            `json:"word_count"`
	Status      Status         `json:"status"`
	WasRendered bool           `json:"javascript_rendered"`
}

// Transport is the session-backed HTTP surface the engine fetches through.
// session.Registry is the production implementation.
type Transport interface {
	Get(ctx context.Context, url string) (*session.Response, error)
	Rotate()
	Profile() identity.Profile
	Len() int
}

// Config controls one engine instance.
type Config struct {
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryStrategy  string
	MaxContentSize int64
	RenderEnabled  bool
	Extract        extract.Config
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    5,
		RetryBaseDelay: 2 * time.Second,
		RetryStrategy:  backoff.StrategyExponential,
		MaxContentSize: 50 * 1024 * 1024,
		RenderEnabled:  false,
		Extract:        extract.DefaultConfig(),
	}
}

// Options controls per-fetch behavior.
type Options struct {
	// WantLinks includes outbound links in the result.
	WantLinks bool
}

// Engine fetches and extracts documents. Safe for concurrent use: session
// state and identity rotation are serialized inside the transport, and each
// fetch owns its own retry controller.
type Engine struct {
	cfg       Config
	transport Transport
	pipeline  *extract.Pipeline
	renderer  render.Renderer
	strategy  backoff.Strategy

	// sleep is swapped out by tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	history []backoff.Attempt
}

// New creates an engine. renderer may be nil, which disables rendering
// regardless of config.
func New(cfg Config, transport Transport, renderer render.Renderer) (*Engine, error) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	strategy, err := backoff.ForName(cfg.RetryStrategy, cfg.RetryBaseDelay)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		transport: transport,
		pipeline:  extract.NewPipeline(cfg.Extract),
		renderer:  renderer,
		strategy:  strategy,
		sleep:     sleepContext,
	}, nil
}

// Fetch retrieves and extracts one URL.
func (e *Engine) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	ctrl := backoff.New(e.strategy, e.cfg.MaxAttempts)
	defer func() {
		e.mu.Lock()
		e.history = ctrl.History()
		e.mu.Unlock()
	}()

	var lastErr error
	for attempt := 0; attempt < e.cfg.MaxAttempts; attempt++ {
		resp, err := e.transport.Get(ctx, rawURL)
		if err == nil {
			return e.process(ctx, rawURL, resp, opts)
		}
		lastErr = err

		statusCode := 0
		var httpErr *session.HTTPError
		if errors.As(err, &httpErr) {
			statusCode = httpErr.StatusCode
		}

		delay, retry := ctrl.Decide(attempt, err, statusCode)
		if !retry {
			break
		}

		logger.Debug("retrying after transport failure",
			"url", rawURL, "attempt", attempt+1, "delay", delay, "error", err)

		// Every retry gets a fresh identity; all accumulated cookies go
		// with the old one.
		e.transport.Rotate()

		if err := e.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrTransportExhausted, len(ctrl.History())+1, lastErr)
}

// RetryHistory returns the retry attempts recorded by the most recent fetch.
func (e *Engine) RetryHistory() []backoff.Attempt {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history
}

// Close releases the renderer, if any.
func (e *Engine) Close() error {
	if e.renderer != nil {
		return e.renderer.Close()
	}
	return nil
}

func (e *Engine) process(ctx context.Context, rawURL string, resp *session.Response, opts Options) (*Result, error) {
	contentType := resp.ContentType

	if !extract.SupportedContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	if e.cfg.MaxContentSize > 0 {
		if resp.ContentLength > e.cfg.MaxContentSize || int64(len(resp.Body)) > e.cfg.MaxContentSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrContentTooLarge, max(resp.ContentLength, int64(len(resp.Body))))
		}
	}

	switch {
	case extract.IsJSON(contentType):
		doc, err := e.pipeline.JSON(resp.Body, rawURL)
		if err != nil {
			return nil, err
		}
		return e.result(rawURL, doc, false), nil

	case extract.IsHTML(contentType):
		markup := extract.DecodeBody(resp.Body, contentType)
		rendered := false

		if e.cfg.RenderEnabled && detect.NeedsRendering(markup) {
			logger.Debug("markup appears render-dependent, invoking renderer", "url", rawURL)
			hydrated, err := e.render(ctx, rawURL)
			if err != nil || hydrated == "" {
				// Non-fatal: fall back to the unrendered markup.
				logger.Warn("rendering failed, using original content", "url", rawURL, "error", err)
			} else {
				markup = hydrated
				rendered = true
			}
		}

		doc, err := e.pipeline.HTML(markup, rawURL, opts.WantLinks)
		if err != nil {
			return nil, err
		}
		return e.result(rawURL, doc, rendered), nil

	default:
		text := extract.DecodeBody(resp.Body, contentType)
		doc, err := e.pipeline.Plain(text, contentType, rawURL)
		if err != nil {
			return nil, err
		}
		return e.result(rawURL, doc, false), nil
	}
}

func (e *Engine) render(ctx context.Context, rawURL string) (string, error) {
	if e.renderer == nil {
		return "", render.ErrUnavailable
	}
	return e.renderer.Render(ctx, rawURL, e.transport.Profile())
}

func (e *Engine) result(rawURL string, doc *extract.Document, rendered bool) *Result {
	status := StatusSuccess
	if rendered {
		status = StatusRendered
	}
	return &Result{
		URL:         rawURL,
		Title:       doc.Title,
		Description: doc.Description,
		Content:     doc.Content,
		ContentType: doc.ContentType,
		Links:       doc.Links,
		WordCount:   doc.WordCount,
		Status:      status,
		WasRendered: rendered,
	}
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
