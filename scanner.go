package formdata

import "bytes"

// scanner locates the delimiters of one form in buffered bytes.
// It never consumes anything itself; every method reports how many bytes the
// caller may drop.
type scanner struct {
	dashBoundary   []byte // "--boundary"
	nlDashBoundary []byte // nl + "--boundary"
	nl             []byte // "\r\n" until a bare "\n" is seen on the first boundary line
	headerEnd      []byte // nl + nl
}

func newScanner(boundary string) *scanner {
	b := []byte("\r\n--" + boundary)

	return &scanner{
		dashBoundary:   b[2:],
		nlDashBoundary: b,
		nl:             b[:2],
		headerEnd:      []byte("\r\n\r\n"),
	}
}

func (s *scanner) adoptLF() {
	s.nl = s.nl[1:]
	s.nlDashBoundary = s.nlDashBoundary[1:]
	s.headerEnd = []byte("\n\n")
}

// scanPreamble looks for the first line starting with "--boundary".
// It returns the number of bytes before it and whether it was confirmed.
// When it was not, the returned count covers only bytes that can never be part
// of it; the last byte is always kept so the next scan can tell whether a
// token starts a line.
func (s *scanner) scanPreamble(buf []byte, atStart, atEOF bool) (int, bool) {
	off := 0
	for {
		i := bytes.Index(buf[off:], s.dashBoundary)
		if i < 0 {
			break
		}
		i += off

		if (i == 0 && atStart) || (i > 0 && buf[i-1] == '\n') {
			switch matchAfterPrefix(buf[i+len(s.dashBoundary):], atEOF) {
			case +1:
				return i, true
			case 0:
				return max(i-1, 0), false
			}
		}
		off = i + 1
	}

	return max(off+partialSuffix(buf[off:], s.dashBoundary)-1, 0), false
}

// scanBody splits buf into body bytes and the delimiter that ends the body.
// n is the number of leading bytes that belong to the body. delim is the length
// of the delimiter starting at n, or 0 when no delimiter is confirmed yet.
// n == 0 && delim == 0 means more data is needed.
func (s *scanner) scanBody(buf []byte, atStart, atEOF bool) (n int, delim int) {
	if atStart {
		// a part without any body may put "--boundary" right after its header block
		if bytes.HasPrefix(buf, s.dashBoundary) {
			switch matchAfterPrefix(buf[len(s.dashBoundary):], atEOF) {
			case +1:
				return 0, len(s.dashBoundary)
			case 0:
				return 0, 0
			}
		} else if bytes.HasPrefix(s.dashBoundary, buf) {
			return 0, 0
		}
	}

	if i := bytes.Index(buf, s.nlDashBoundary); i >= 0 {
		switch matchAfterPrefix(buf[i+len(s.nlDashBoundary):], atEOF) {
		case +1:
			return i, len(s.nlDashBoundary)
		case 0:
			return i, 0
		case -1:
			return i + len(s.nlDashBoundary), 0
		}
	}

	return partialSuffix(buf, s.nlDashBoundary), 0
}

type lineStatus uint8

const (
	lineNeedMore lineStatus = iota
	lineNext
	lineFinal
	lineMalformed
)

// scanBoundaryLine inspects what follows a "--boundary" token: either "--" for
// the closing delimiter or optional white space and a line break.
// For the closing delimiter only the "--" is counted.
// On the first boundary line a bare "\n" switches the form to LF line endings.
func (s *scanner) scanBoundaryLine(buf []byte, first bool) (lineStatus, int) {
	if len(buf) == 1 && buf[0] == '-' {
		return lineNeedMore, 0
	}
	if bytes.HasPrefix(buf, dashes) {
		// whatever follows the closing delimiter is epilogue and never read
		return lineFinal, len(dashes)
	}

	rest := skipLWSP(buf)
	n := len(buf) - len(rest)
	if first && bytes.HasPrefix(rest, lf) && len(s.nl) == len(crlf) {
		s.adoptLF()
	}
	switch {
	case bytes.HasPrefix(rest, s.nl):
		return lineNext, n + len(s.nl)
	case bytes.HasPrefix(s.nl, rest):
		return lineNeedMore, 0
	}

	return lineMalformed, 0
}

// scanHeaderEnd finds the empty line closing a header block.
// It returns the length of the block including that empty line, or -1.
func (s *scanner) scanHeaderEnd(buf []byte) int {
	if bytes.HasPrefix(buf, s.nl) {
		return len(s.nl)
	}
	if i := bytes.Index(buf, s.headerEnd); i >= 0 {
		return i + len(s.headerEnd)
	}

	return -1
}

var (
	dashes = []byte("--")
	crlf   = []byte("\r\n")
	lf     = []byte("\n")
)

// matchAfterPrefix decides whether a delimiter token is a real boundary from
// the bytes that follow it.
// It returns +1 for a boundary, -1 for body bytes and 0 when more data is needed.
func matchAfterPrefix(rest []byte, atEOF bool) int {
	if len(rest) == 0 {
		if atEOF {
			return +1
		}
		return 0
	}

	switch rest[0] {
	case ' ', '\t', '\r', '\n':
		return +1
	case '-':
		if len(rest) == 1 {
			if atEOF {
				return -1
			}
			return 0
		}
		if rest[1] == '-' {
			return +1
		}
	}

	return -1
}

// partialSuffix returns the offset of the longest suffix of buf that is a
// proper prefix of token, or len(buf) if there is none.
// Bytes from that offset on may still turn into token once more data arrives.
func partialSuffix(buf, token []byte) int {
	start := max(0, len(buf)-len(token)+1)
	for i := start; i < len(buf); i++ {
		if buf[i] == token[0] && bytes.HasPrefix(token, buf[i:]) {
			return i
		}
	}

	return len(buf)
}

func skipLWSP(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	return b
}
