package extract

import (
	"bytes"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var textualTypes = map[string]bool{
	"application/json": true,
	"application/xml":  true,
}

// isTextual reports whether content of this MIME type can be decoded as text.
func isTextual(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.HasPrefix(mediaType, "text/") || textualTypes[mediaType]
}

// decodeText decodes UTF-8, falling back to Latin-1. Latin-1 accepts any
// byte sequence, so payloads with NUL bytes are rejected as binary data
// mislabelled as text.
func decodeText(data []byte) (string, bool) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff"), true
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", false
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}
