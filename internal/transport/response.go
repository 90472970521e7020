package transport

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/tanq16/getter/internal/utils"
)

var headerSeparator = []byte("\r\n\r\n")

// Response holds the raw bytes of one HTTP/1.0 exchange, headers and body
// together as they came off the wire.
type Response struct {
	Raw []byte
}

// Body returns the bytes after the first header/body separator. A buffer
// with no separator is returned whole, so a malformed response stays usable.
func (r *Response) Body() []byte {
	idx := bytes.Index(r.Raw, headerSeparator)
	if idx < 0 {
		return r.Raw
	}
	return r.Raw[idx+len(headerSeparator):]
}

// Header returns the header block, without the trailing separator.
func (r *Response) Header() []byte {
	idx := bytes.Index(r.Raw, headerSeparator)
	if idx < 0 {
		return nil
	}
	return r.Raw[:idx]
}

// ContentLength extracts the numeric value of the Content-Length header.
// Only digits on that header line count, so noise elsewhere in the headers
// (ports, dates) never leaks into the result.
func (r *Response) ContentLength() (int64, error) {
	line, ok := r.headerLine("Content-Length")
	if !ok {
		return 0, utils.ErrMissingContentLength
	}
	var digits strings.Builder
	for _, ch := range line {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("unparseable Content-Length line %q: %w", line, utils.ErrMissingContentLength)
	}
	size, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing Content-Length: %v", err)
	}
	return size, nil
}

// AcceptsRanges reports whether the server advertised byte-range support.
func (r *Response) AcceptsRanges() bool {
	line, ok := r.headerLine("Accept-Ranges")
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(line), "bytes")
}

// StatusCode parses the status line, returning 0 when there is none.
func (r *Response) StatusCode() int {
	end := bytes.IndexByte(r.Raw, '\n')
	if end < 0 {
		end = len(r.Raw)
	}
	statusLine := strings.TrimSpace(string(r.Raw[:end]))
	if !strings.HasPrefix(statusLine, "HTTP/") {
		return 0
	}
	fields := strings.Fields(statusLine)
	if len(fields) < 2 {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return code
}

// headerLine finds the value of the named header, matched case-insensitively
// against the header block only (never the body).
func (r *Response) headerLine(name string) (string, bool) {
	header := r.Header()
	if header == nil {
		header = r.Raw
	}
	prefix := strings.ToLower(name) + ":"
	for _, line := range strings.Split(string(header), "\r\n") {
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}
