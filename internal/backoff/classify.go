package backoff

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// retriableStatus is the fixed set of HTTP status codes worth retrying:
// rate limiting, upstream server failures, and the Cloudflare 52x range.
var retriableStatus = map[int]bool{
	429: true,
	500: true, 502: true, 503: true, 504: true,
	520: true, 521: true, 522: true, 523: true, 524: true,
}

// RetriableStatus reports whether an HTTP status code is worth retrying.
func RetriableStatus(code int) bool {
	return retriableStatus[code]
}

// retriableVocabulary widens classification for transports that only surface
// free-text errors. It is deliberately the last check: structured error
// categories are matched first.
var retriableVocabulary = []string{
	"connection", "timeout", "ssl", "certificate", "network",
	"temporary", "unavailable", "overloaded", "retry",
}

// Kind is a coarse error category, retained in attempt history.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindConnection Kind = "connection"
	KindTLS        Kind = "tls"
	KindRedirect   Kind = "redirect"
	KindDecode     Kind = "decode"
	KindHTTPStatus Kind = "http_status"
	KindOther      Kind = "other"
)

// Classify maps an error (and the response status code, if any) to a coarse
// category and whether it is worth retrying.
func Classify(err error, statusCode int) (Kind, bool) {
	if RetriableStatus(statusCode) {
		return KindHTTPStatus, true
	}

	if err == nil {
		if statusCode != 0 {
			return KindHTTPStatus, false
		}
		return KindOther, false
	}

	// Structured categories first.
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout, true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection, true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ETIMEDOUT) {
		return KindConnection, true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnection, true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return KindTLS, true
	}
	var certErr x509.CertificateInvalidError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return KindTLS, true
	}

	msg := strings.ToLower(err.Error())

	// net/http reports redirect loops as url.Error with a "stopped after N
	// redirects" message.
	var urlErr *url.Error
	if errors.As(err, &urlErr) && strings.Contains(msg, "redirect") {
		return KindRedirect, true
	}
	if strings.Contains(msg, "gzip") || strings.Contains(msg, "unexpected eof") ||
		strings.Contains(msg, "decode") {
		return KindDecode, true
	}

	// Last-resort widening over the message text.
	for _, word := range retriableVocabulary {
		if strings.Contains(msg, word) {
			return KindOther, true
		}
	}

	return KindOther, false
}
