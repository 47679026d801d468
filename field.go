package formdata

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"
)

// Field is one part of the form. Its body is read from the decoder buffer
// while it is the live field.
type Field struct {
	index       int
	header      Header
	isFile      bool
	contentType string
	params      map[string]string
	defaultType string

	length   int64
	consumed bool

	st *state
}

// Index returns the position of the field in the form, starting at 0.
func (f *Field) Index() int {
	return f.index
}

// Name returns the "name" parameter of the Content-Disposition header.
func (f *Field) Name() string {
	return f.header.Name()
}

// FileName returns the "filename" parameter of the Content-Disposition header.
func (f *Field) FileName() string {
	return f.header.FileName()
}

// IsFile reports whether the part carries a "filename" parameter.
func (f *Field) IsFile() bool {
	return f.isFile
}

// ContentType returns the declared media type without parameters, or "" if
// the part has no usable Content-Type header.
func (f *Field) ContentType() string {
	return f.contentType
}

// MediaType returns the declared media type, or the configured default for
// value parts and file parts.
func (f *Field) MediaType() string {
	if f.contentType != "" {
		return f.contentType
	}
	return f.defaultType
}

func (f *Field) Header() Header {
	return f.header
}

// Length returns the number of body bytes handed out so far.
func (f *Field) Length() int64 {
	return f.length
}

// Consumed reports whether the whole body has been read.
func (f *Field) Consumed() bool {
	return f.consumed
}

// Next returns the next chunk of the body, or io.EOF after the last one.
// The chunk is only valid until the next call on the field or its decoder.
func (f *Field) Next() ([]byte, error) {
	return f.next(0, nil)
}

func (f *Field) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	chunk, err := f.next(len(p), p)
	return len(chunk), err
}

// WriteTo writes the rest of the body to w.
func (f *Field) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for {
		chunk, err := f.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}

		m, err := w.Write(chunk)
		n += int64(m)
		if err != nil {
			return n, fmt.Errorf("failed to write: %w", err)
		}
	}
}

// Bytes reads the rest of the body into memory.
func (f *Field) Bytes() ([]byte, error) {
	b := []byte{}
	for {
		chunk, err := f.Next()
		if errors.Is(err, io.EOF) {
			return b, nil
		}
		if err != nil {
			return nil, err
		}
		b = append(b, chunk...)
	}
}

// Text reads the rest of the body as UTF-8 text.
func (f *Field) Text() (string, error) {
	b, err := f.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}

	// RFC 7578 4.6: "_charset_" sets the charset of the following text fields
	if f.Name() == "_charset_" && !f.isFile {
		f.st.mu.Lock()
		f.st.charset = strings.TrimSpace(string(b))
		f.st.mu.Unlock()
	}

	return string(b), nil
}

// DecodedText reads the rest of the body and converts it to UTF-8 from the
// charset parameter of its Content-Type, or from the value of an earlier
// "_charset_" field.
func (f *Field) DecodedText() (string, error) {
	label := f.params["charset"]
	if label == "" {
		f.st.mu.Lock()
		label = f.st.charset
		f.st.mu.Unlock()
	}
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return f.Text()
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("failed to find charset %q: %w", label, err)
	}

	b, err := f.Bytes()
	if err != nil {
		return "", err
	}
	b, err = enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s text: %w", label, err)
	}

	return string(b), nil
}

// Discard reads and drops the rest of the body.
func (f *Field) Discard() error {
	for {
		_, err := f.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// next hands out the next run of body bytes, at most limit of them when
// limit > 0. When dst is not nil the bytes are copied into it while the state
// is still locked.
func (f *Field) next(limit int, dst []byte) ([]byte, error) {
	if f.consumed {
		return nil, io.EOF
	}

	st := f.st
	if !st.mu.TryLock() {
		return nil, ErrConcurrentUse
	}
	defer st.mu.Unlock()

	if st.err != nil {
		return nil, st.err
	}
	if st.live != f.index {
		return nil, ErrFieldStale
	}

	chunk, err := st.readChunk(limit)
	if errors.Is(err, io.EOF) {
		f.consumed = true
		st.logger.WithFields(logrus.Fields{
			"index": f.index,
			"bytes": f.length,
		}).Debug("field consumed")
		return nil, io.EOF
	}
	if err != nil {
		return nil, st.fail(err)
	}

	maxSize, sizeErr := st.cfg.limits.MaxFieldSize, ErrFieldTooLarge
	if f.isFile {
		maxSize, sizeErr = st.cfg.limits.MaxFileSize, ErrFileTooLarge
	}
	if maxSize > 0 && f.length+int64(len(chunk)) > int64(maxSize) {
		return nil, st.fail(limitError(sizeErr, maxSize))
	}

	if dst != nil {
		chunk = dst[:copy(dst, chunk)]
	}
	f.length += int64(len(chunk))

	return chunk, nil
}
