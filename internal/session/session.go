// Package session maintains per-domain HTTP sessions so that cookies set by a
// site are replayed on later requests to the same authority.
//
// Sessions are bound to the registry's current browser identity. Rotating the
// identity drops every session at once: cookies accumulated under a blocked
// fingerprint must never leak into its successor.
package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/pagepull/pagepull/internal/identity"
	"github.com/pagepull/pagepull/internal/logger"
)

// Config holds transport settings shared by all sessions.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBodySize  int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxRedirects: 10,
		MaxBodySize:  10 * 1024 * 1024,
	}
}

// Response is a fully-read transport response.
type Response struct {
	StatusCode    int
	ContentType   string
	ContentLength int64
	Headers       http.Header
	Body          []byte
}

// HTTPError reports a non-success status code from the server.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Session is one domain's cookie-bearing connection context.
type Session struct {
	domain  string
	base    *colly.Collector
	headers map[string]string
}

func newSession(domain string, profile identity.Profile, cfg Config) *Session {
	c := colly.NewCollector(
		colly.UserAgent(profile.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodySize),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(cfg.Timeout)

	if jar, err := cookiejar.New(nil); err == nil {
		c.SetCookieJar(jar)
	}

	maxRedirects := cfg.MaxRedirects
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	})

	return &Session{domain: domain, base: c, headers: profile.Clone().Headers}
}

// get performs one GET through this session's collector. Cookies set by the
// response accumulate in the shared jar.
func (s *Session) get(rawURL string) (*Response, error) {
	// Clone shares the cookie jar and transport but carries no callbacks,
	// so per-request capture state stays local to this call. Identity
	// headers must be re-registered on every clone.
	c := s.base.Clone()

	c.OnRequest(func(r *colly.Request) {
		for k, v := range s.headers {
			r.Headers.Set(k, v)
		}
	})

	var resp *Response
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		resp = &Response{
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Headers:     *r.Headers,
			Body:        r.Body,
		}
		if cl := r.Headers.Get("Content-Length"); cl != "" {
			if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
				resp.ContentLength = n
			}
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = &HTTPError{StatusCode: r.StatusCode}
			return
		}
		fetchErr = err
	})

	if err := c.Visit(rawURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if resp == nil {
		return nil, fmt.Errorf("no response received for %s", rawURL)
	}
	return resp, nil
}

// Registry maps target domains to reusable sessions, all bound to one current
// browser identity.
type Registry struct {
	mu       sync.Mutex
	cfg      Config
	pool     *identity.Pool
	profile  identity.Profile
	sessions map[string]*Session
}

// NewRegistry creates a registry with a randomly drawn starting identity.
func NewRegistry(pool *identity.Pool, cfg Config) *Registry {
	if pool == nil {
		pool = identity.DefaultPool()
	}
	r := &Registry{
		cfg:      cfg,
		pool:     pool,
		profile:  pool.Pick(),
		sessions: make(map[string]*Session),
	}
	logger.Debug("session registry initialized", "profile", r.profile.Name)
	return r
}

// Get performs a GET through the target domain's session, creating the
// session on first use. The domain key is the URL authority (host:port), so
// later paths on the same host reuse cookies.
func (r *Registry) Get(ctx context.Context, rawURL string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	r.mu.Lock()
	s, ok := r.sessions[u.Host]
	if !ok {
		s = newSession(u.Host, r.profile, r.cfg)
		r.sessions[u.Host] = s
		logger.Debug("created domain session", "domain", u.Host, "profile", r.profile.Name)
	}
	r.mu.Unlock()

	return s.get(rawURL)
}

// Rotate draws a new browser identity and drops every cached session. The
// swap is atomic with respect to Get.
func (r *Registry) Rotate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.profile.Name
	r.profile = r.pool.Pick()
	r.sessions = make(map[string]*Session)
	logger.Debug("identity rotated, all sessions cleared",
		"previous", old, "current", r.profile.Name)
}

// Profile returns the current browser identity.
func (r *Registry) Profile() identity.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profile
}

// Len returns the number of cached domain sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
