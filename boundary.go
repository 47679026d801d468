package formdata

import (
	"mime"
	"net/http"
)

// minHeaderLineSize is the room kept next to the boundary line for a header line.
const minHeaderLineSize = 256

// ParseBoundary returns the boundary parameter of a multipart/form-data Content-Type.
func ParseBoundary(contentType string) (string, error) {
	d, params, err := mime.ParseMediaType(contentType)
	if err != nil || d != "multipart/form-data" {
		return "", http.ErrNotMultipart
	}

	boundary, ok := params["boundary"]
	if !ok {
		return "", http.ErrMissingBoundary
	}

	return boundary, nil
}

// minBufSize is the smallest buffer that still holds "\r\n--boundary--\r\n"
// and one header line.
func minBufSize(boundary string) DataSize {
	return DataSize(len("\r\n--")+len(boundary)+len("--\r\n")) + minHeaderLineSize
}

// validBoundary follows the bchars grammar of RFC 2046 5.1.1.
func validBoundary(boundary string) bool {
	if len(boundary) < 1 || len(boundary) > 70 {
		return false
	}

	end := len(boundary) - 1
	for i, b := range boundary {
		if 'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9' {
			continue
		}
		switch b {
		case '\'', '(', ')', '+', '_', ',', '-', '.', '/', ':', '=', '?':
			continue
		case ' ':
			if i != end {
				continue
			}
		}
		return false
	}

	return true
}
