package identity

import (
	"strings"
	"testing"
)

func TestDefaultPool_ProfilesAreCoherent(t *testing.T) {
	pool := DefaultPool()
	if pool.Len() == 0 {
		t.Fatal("default pool is empty")
	}

	for i := 0; i < pool.Len(); i++ {
		p := pool.profiles[i]
		t.Run(p.Name, func(t *testing.T) {
			if p.UserAgent == "" {
				t.Error("empty user agent")
			}
			if len(p.Headers) == 0 {
				t.Error("empty header set")
			}
			if p.Headers["Accept"] == "" {
				t.Error("profile missing Accept header")
			}

			// Client-hint headers must agree with the user agent family.
			if ua := p.Headers["sec-ch-ua"]; ua != "" {
				switch {
				case strings.Contains(p.UserAgent, "Edg/"):
					if !strings.Contains(ua, "Microsoft Edge") {
						t.Errorf("Edge UA with mismatched sec-ch-ua %q", ua)
					}
				case strings.Contains(p.UserAgent, "Chrome/"):
					if !strings.Contains(ua, "Chrom") {
						t.Errorf("Chrome UA with mismatched sec-ch-ua %q", ua)
					}
				}
			}
			if strings.Contains(p.UserAgent, "Firefox/") && p.Headers["sec-ch-ua"] != "" {
				t.Error("Firefox does not send sec-ch-ua headers")
			}
		})
	}
}

func TestPool_PickReturnsCatalogueMember(t *testing.T) {
	pool := DefaultPool()
	for i := 0; i < 20; i++ {
		p := pool.Pick()
		found := false
		for _, c := range pool.profiles {
			if c.Name == p.Name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("Pick returned unknown profile %q", p.Name)
		}
	}
}

func TestPool_ByName(t *testing.T) {
	pool := DefaultPool()

	p := pool.ByName("safari_macos")
	if p.Name != "safari_macos" {
		t.Errorf("ByName(safari_macos) = %q", p.Name)
	}

	// Unknown names fall back to the first entry rather than failing.
	p = pool.ByName("netscape_navigator")
	if p.Name != pool.profiles[0].Name {
		t.Errorf("unknown name should return first profile, got %q", p.Name)
	}
}

func TestProfile_CloneIsIndependent(t *testing.T) {
	orig := DefaultPool().ByName("chrome_windows")
	clone := orig.Clone()
	clone.Headers["Accept"] = "mutated"

	if orig.Headers["Accept"] == "mutated" {
		t.Error("mutating a clone must not touch the catalogue profile")
	}
}
