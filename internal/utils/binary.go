package utils

import (
	"bytes"
	"unicode/utf8"
)

// IsBinary reports whether data should be treated as non-text: it contains a
// NUL byte or is not valid UTF-8. Empty data is text.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}
