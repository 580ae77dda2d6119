package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagepull/pagepull/internal/identity"
)

func testRegistry() *Registry {
	return NewRegistry(identity.DefaultPool(), DefaultConfig())
}

func TestRegistry_SessionPerAuthority(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r := testRegistry()
	ctx := context.Background()

	if _, err := r.Get(ctx, srv.URL+"/a"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := r.Get(ctx, srv.URL+"/b"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Both paths share one authority, so one session.
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_CookiesPersistAcrossRequests(t *testing.T) {
	var sawCookie bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil && c.Value == "abc123" {
			sawCookie = true
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r := testRegistry()
	ctx := context.Background()

	if _, err := r.Get(ctx, srv.URL+"/first"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := r.Get(ctx, srv.URL+"/second"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !sawCookie {
		t.Error("cookie from first response was not replayed on second request")
	}
}

func TestRegistry_IdentityHeadersApplied(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r := testRegistry()
	if _, err := r.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}

	profile := r.Profile()
	if gotUA != profile.UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, profile.UserAgent)
	}
	if gotAccept != profile.Headers["Accept"] {
		t.Errorf("Accept = %q, want %q", gotAccept, profile.Headers["Accept"])
	}
}

func TestRegistry_RotateClearsAllSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "tracked", Value: "1"})
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r := testRegistry()
	if _, err := r.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d before rotation", r.Len())
	}

	r.Rotate()

	if r.Len() != 0 {
		t.Errorf("Len() = %d after rotation, want 0", r.Len())
	}
}

func TestRegistry_HTTPErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := testRegistry()
	_, err := r.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 503 response")
	}

	httpErr, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("error type = %T, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", httpErr.StatusCode)
	}
}

func TestRegistry_CancelledContext(t *testing.T) {
	r := testRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Get(ctx, "https://example.com"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
