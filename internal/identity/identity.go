// Package identity holds a catalogue of realistic browser fingerprints.
//
// A Profile pairs a user agent with the header set that browser would
// actually send. The two are never drawn independently: a Firefox user agent
// with Chrome client-hint headers is an instant bot tell.
package identity

import (
	"maps"
	"math/rand/v2"
)

// Profile is an immutable browser fingerprint.
type Profile struct {
	Name      string
	UserAgent string
	Headers   map[string]string
}

// Clone returns a copy with an independent header map, safe to mutate.
func (p Profile) Clone() Profile {
	h := make(map[string]string, len(p.Headers))
	maps.Copy(h, p.Headers)
	return Profile{Name: p.Name, UserAgent: p.UserAgent, Headers: h}
}

// Pool is a fixed catalogue of profiles. The zero value is unusable; use
// NewPool or DefaultPool.
type Pool struct {
	profiles []Profile
}

// NewPool creates a pool from the given profiles. An empty slice falls back
// to the default catalogue.
func NewPool(profiles []Profile) *Pool {
	if len(profiles) == 0 {
		return DefaultPool()
	}
	return &Pool{profiles: profiles}
}

// DefaultPool returns a pool backed by the built-in catalogue.
func DefaultPool() *Pool {
	return &Pool{profiles: catalogue}
}

// Pick returns a random profile from the pool.
func (p *Pool) Pick() Profile {
	return p.profiles[rand.IntN(len(p.profiles))]
}

// ByName returns the named profile, or the first catalogue entry if the name
// is unknown.
func (p *Pool) ByName(name string) Profile {
	for _, prof := range p.profiles {
		if prof.Name == name {
			return prof
		}
	}
	return p.profiles[0]
}

// Len returns the number of profiles in the pool.
func (p *Pool) Len() int {
	return len(p.profiles)
}

// catalogue mirrors current desktop browser market share: Chrome on three
// platforms, Firefox, Safari, and Edge. Header sets include the client-hint
// headers each browser really emits.
var catalogue = []Profile{
	{
		Name:      "chrome_windows",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
			"Accept-Language":           "en-US,en;q=0.9",
			"Accept-Encoding":           "gzip, deflate, br, zstd",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
			"sec-ch-ua":                 `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
			"sec-ch-ua-mobile":          "?0",
			"sec-ch-ua-platform":        `"Windows"`,
			"Cache-Control":             "max-age=0",
		},
	},
	{
		Name:      "chrome_macos",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
			"Accept-Language":           "en-US,en;q=0.9",
			"Accept-Encoding":           "gzip, deflate, br, zstd",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
			"sec-ch-ua":                 `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
			"sec-ch-ua-mobile":          "?0",
			"sec-ch-ua-platform":        `"macOS"`,
			"Cache-Control":             "max-age=0",
		},
	},
	{
		Name:      "firefox_windows",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.5",
			"Accept-Encoding":           "gzip, deflate, br",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
		},
	},
	{
		Name:      "firefox_macos",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.5",
			"Accept-Encoding":           "gzip, deflate, br",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
		},
	},
	{
		Name:      "safari_macos",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.9",
			"Accept-Encoding":           "gzip, deflate, br",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
		},
	},
	{
		Name:      "edge_windows",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
			"Accept-Language":           "en-US,en;q=0.9",
			"Accept-Encoding":           "gzip, deflate, br, zstd",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
			"sec-ch-ua":                 `"Microsoft Edge";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
			"sec-ch-ua-mobile":          "?0",
			"sec-ch-ua-platform":        `"Windows"`,
			"Cache-Control":             "max-age=0",
		},
	},
}
