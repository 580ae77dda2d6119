// Package render invokes a headless browser to hydrate client-rendered
// pages. The engine treats rendering as an opaque collaborator: it either
// returns fully rendered markup or fails, and failure is never fatal to the
// fetch.
package render

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/pagepull/pagepull/internal/identity"
	"github.com/pagepull/pagepull/internal/logger"
)

// ErrUnavailable reports that no renderer is present or it could not start.
var ErrUnavailable = errors.New("renderer unavailable")

// Renderer hydrates a page and returns the rendered markup.
type Renderer interface {
	Render(ctx context.Context, url string, profile identity.Profile) (string, error)
	Close() error
}

// Chrome renders pages with a shared headless Chrome instance. Each render
// runs in its own browser context with its own timeout; the instance manages
// one bounded internal retry independently of the caller's retry budget.
type Chrome struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

// NewChrome creates a renderer backed by a headless browser allocator.
func NewChrome(timeout time.Duration) *Chrome {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Chrome{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
	}
}

// Render navigates to the URL under the given browser identity and returns
// the hydrated markup. One internal retry with a slightly longer budget is
// attempted before giving up.
func (c *Chrome) Render(ctx context.Context, url string, profile identity.Profile) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		timeout := c.timeout + time.Duration(attempt)*5*time.Second
		html, err := c.renderOnce(ctx, url, profile, timeout, attempt)
		if err == nil {
			return html, nil
		}
		lastErr = err
		logger.Debug("render attempt failed", "url", url, "attempt", attempt+1, "error", err)
		if ctx.Err() != nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	return "", lastErr
}

func (c *Chrome) renderOnce(ctx context.Context, url string, profile identity.Profile, timeout time.Duration, attempt int) (string, error) {
	browserCtx, cancelBrowser := chromedp.NewContext(c.allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	// Cancel the render when the caller's context ends.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	headers := make(network.Headers, len(profile.Headers))
	for k, v := range profile.Headers {
		headers[k] = v
	}

	settle := 2*time.Second + time.Duration(attempt)*time.Second

	var html string
	err := chromedp.Run(timeoutCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		emulation.SetUserAgentOverride(profile.UserAgent),
		chromedp.Navigate(url),
		chromedp.WaitVisible("body"),
		chromedp.Sleep(settle),
		// Scroll to the bottom to trigger lazy-loaded content.
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}

	logger.Debug("render complete", "url", url, "chars", len(html))
	return html, nil
}

// Close shuts down the browser allocator.
func (c *Chrome) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}
