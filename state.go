package formdata

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type phase uint8

const (
	phasePreamble  phase = iota // nothing but preamble seen yet
	phaseDelimiter              // "--boundary" consumed, rest of the boundary line pending
	phaseHeader                 // part header block pending
	phaseBody                   // a field is live
	phaseEOF                    // closing delimiter consumed
)

func (p phase) String() string {
	switch p {
	case phasePreamble:
		return "preamble"
	case phaseDelimiter:
		return "delimiter"
	case phaseHeader:
		return "header"
	case phaseBody:
		return "body"
	case phaseEOF:
		return "eof"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// state is the decode progress shared by a Decoder and its live Field.
// Every field is only touched with mu held.
type state struct {
	mu sync.Mutex

	src     Source
	pending []byte // part of the last chunk that did not fit into buf
	srcDone bool
	pulled  int64

	buf    *buffer
	sc     *scanner
	cfg    *config
	logger logrus.FieldLogger

	phase     phase
	bodyStart bool // no byte of the live body handed out yet
	live      int  // index of the live field, -1 if none

	total   int
	fields  int
	files   int
	headers uint
	length  int64
	eof     bool
	charset string // value of a "_charset_" field, if read

	err error
}

func newState(src Source, boundary string, cfg *config, logger logrus.FieldLogger) *state {
	return &state{
		src:    src,
		buf:    newBuffer(cfg.limits.MaxBufSize),
		sc:     newScanner(boundary),
		cfg:    cfg,
		logger: logger,
		live:   -1,
	}
}

func (s *state) atEOF() bool {
	return s.srcDone && len(s.pending) == 0
}

func (s *state) consume(n int) {
	s.buf.consume(n)
	s.length += int64(n)
}

func (s *state) fail(err error) error {
	s.err = err
	s.logger.WithError(err).WithField("phase", s.phase).Debug("decode failed")
	return err
}

func (s *state) finish() {
	s.phase = phaseEOF
	s.eof = true
	s.live = -1
	s.logger.WithFields(logrus.Fields{
		"total":  s.total,
		"length": s.length,
	}).Debug("form decoded")
}

// fill moves more source bytes into the buffer.
// It returns io.EOF once the source is exhausted.
func (s *state) fill() error {
	if len(s.pending) == 0 {
		if s.srcDone {
			return io.EOF
		}

		chunk, err := s.src.Next()
		if errors.Is(err, io.EOF) {
			s.srcDone = true
		} else if err != nil {
			return &SourceError{Err: err}
		}

		s.pulled += int64(len(chunk))
		if limit := s.cfg.limits.MaxStreamSize; limit > 0 && s.pulled > int64(limit) {
			return limitError(ErrTooLargeForm, limit)
		}
		s.logger.WithField("bytes", len(chunk)).Trace("pulled chunk")

		// an empty last chunk still changes atEOF, so the caller scans again
		s.pending = chunk
		if len(chunk) == 0 {
			return nil
		}
	}

	n := s.buf.append(s.pending)
	if n == 0 {
		return limitError(ErrBufferOverflow, s.cfg.limits.MaxBufSize)
	}
	s.pending = s.pending[n:]

	return nil
}

// more is fill for places where the form must not end yet.
func (s *state) more(what string) error {
	err := s.fill()
	if err == io.EOF {
		return fmt.Errorf("failed to read %s: %w", what, io.ErrUnexpectedEOF)
	}
	return err
}

// nextField drops whatever is left of the live field and advances to the
// next part. It returns io.EOF once the closing delimiter is consumed.
func (s *state) nextField() (*Field, error) {
	for {
		switch s.phase {
		case phasePreamble:
			n, found := s.sc.scanPreamble(s.buf.bytes(), s.length == 0, s.atEOF())
			s.consume(n)
			if found {
				s.consume(len(s.sc.dashBoundary))
				s.phase = phaseDelimiter
				continue
			}

			err := s.fill()
			if err == io.EOF {
				if s.pulled == 0 {
					// an empty body is an empty form
					s.finish()
					return nil, io.EOF
				}
				return nil, fmt.Errorf("failed to find first boundary: %w", io.ErrUnexpectedEOF)
			}
			if err != nil {
				return nil, err
			}
		case phaseDelimiter:
			status, n := s.sc.scanBoundaryLine(s.buf.bytes(), s.total == 0)
			switch status {
			case lineNext:
				s.consume(n)
				s.phase = phaseHeader
			case lineFinal:
				s.consume(n)
				s.finish()
				return nil, io.EOF
			case lineMalformed:
				return nil, ErrMalformedBoundaryLine
			default:
				if err := s.more("boundary line"); err != nil {
					return nil, err
				}
			}
		case phaseHeader:
			buf := s.buf.bytes()
			end := s.sc.scanHeaderEnd(buf)
			if end < 0 {
				if err := s.more("part header"); err != nil {
					return nil, err
				}
				continue
			}

			f, err := s.newField(buf[:end])
			if err != nil {
				return nil, err
			}
			s.consume(end)

			return f, nil
		case phaseBody:
			index := s.live
			var dropped int64
			for {
				chunk, err := s.readChunk(0)
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, err
				}
				dropped += int64(len(chunk))
			}
			s.logger.WithFields(logrus.Fields{
				"index": index,
				"bytes": dropped,
			}).Debug("dropped rest of field")
		case phaseEOF:
			return nil, io.EOF
		}
	}
}

func (s *state) newField(block []byte) (*Field, error) {
	index := s.total
	limits := s.cfg.limits

	h, err := parsePartHeader(block)
	if err != nil {
		return nil, &HeaderError{Part: index, Err: err}
	}

	if limits.MaxParts > 0 && uint(s.total) >= limits.MaxParts {
		return nil, limitError(ErrTooManyParts, limits.MaxParts)
	}
	s.headers += uint(h.Len())
	if limits.MaxHeaders > 0 && s.headers > limits.MaxHeaders {
		return nil, limitError(ErrTooManyHeaders, limits.MaxHeaders)
	}
	if limits.MaxFieldNameSize > 0 && uint(len(h.Name())) > limits.MaxFieldNameSize {
		return nil, limitError(ErrFieldNameTooLong, limits.MaxFieldNameSize)
	}

	isFile := h.HasFileName()
	defaultType := s.cfg.defaultValueType
	if isFile {
		if limits.MaxFiles > 0 && uint(s.files) >= limits.MaxFiles {
			return nil, limitError(ErrTooManyFiles, limits.MaxFiles)
		}
		s.files++
		defaultType = s.cfg.defaultFileType
	} else {
		if limits.MaxFields > 0 && uint(s.fields) >= limits.MaxFields {
			return nil, limitError(ErrTooManyFields, limits.MaxFields)
		}
		s.fields++
	}

	contentType, params := parseContentType(h)
	s.total++
	s.phase = phaseBody
	s.bodyStart = true
	s.live = index

	s.logger.WithFields(logrus.Fields{
		"index":    index,
		"name":     h.Name(),
		"filename": h.FileName(),
	}).Debug("field decoded")

	return &Field{
		index:       index,
		header:      h,
		isFile:      isFile,
		contentType: contentType,
		params:      params,
		defaultType: defaultType,
		st:          s,
	}, nil
}

// readChunk returns the next run of body bytes of the live field, at most
// limit of them when limit > 0. It returns io.EOF once the delimiter closing
// the body has been consumed.
// The chunk aliases the buffer and is only valid until the next call.
func (s *state) readChunk(limit int) ([]byte, error) {
	for {
		buf := s.buf.bytes()
		n, delim := s.sc.scanBody(buf, s.bodyStart, s.atEOF())
		if n > 0 {
			if limit > 0 {
				n = min(n, limit)
			}
			s.consume(n)
			s.bodyStart = false
			return buf[:n:n], nil
		}
		if delim > 0 {
			s.consume(delim)
			s.phase = phaseDelimiter
			s.live = -1
			return nil, io.EOF
		}

		if err := s.more("part body"); err != nil {
			return nil, err
		}
	}
}
