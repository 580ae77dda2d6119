package extract

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/pagepull/pagepull/internal/logger"
)

// DecodeBody converts raw response bytes to UTF-8 text, detecting the source
// encoding from the declared content type and the bytes themselves. When
// detection or decoding fails the body falls back to UTF-8 with invalid
// sequences replaced; that risks mangling mis-labeled binary responses, so
// the fallback is logged.
func DecodeBody(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err == nil {
		decoded, readErr := io.ReadAll(r)
		if readErr == nil {
			return string(decoded)
		}
		err = readErr
	}

	logger.Debug("charset detection failed, falling back to utf-8 with replacement",
		"content_type", contentType, "error", err)
	return strings.ToValidUTF8(string(body), "�")
}
