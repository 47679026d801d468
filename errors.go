package formdata

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferOverflow is returned when the buffer is full and the decoder still cannot tell where the next boundary is.
	ErrBufferOverflow = errors.New("buffer overflow")
	// ErrFieldStale is returned when a field is read after the decoder has moved past it.
	ErrFieldStale = errors.New("field is stale")
	// ErrFieldLive is returned when the buffer size is changed while a field is being read.
	ErrFieldLive = errors.New("field is being read")
	// ErrConcurrentUse is returned when the decoder and a field are used at the same time.
	ErrConcurrentUse = errors.New("decoder is in use")
	// ErrClosed is returned after the decoder has been closed.
	ErrClosed = errors.New("decoder is closed")
	// ErrInvalidBoundary is returned when the boundary is not a valid RFC 2046 boundary.
	ErrInvalidBoundary = errors.New("invalid boundary")
	// ErrBufSizeTooSmall is returned when the buffer cannot hold a boundary line and a header line.
	ErrBufSizeTooSmall = errors.New("buffer size is too small")
	// ErrInvalidUTF8 is returned by Field.Text when the body is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8")

	// ErrMalformedHeader is returned when a part header block cannot be tokenized.
	ErrMalformedHeader = errors.New("malformed part header")
	// ErrMissingContentDisposition is returned when a part has no Content-Disposition header.
	ErrMissingContentDisposition = errors.New("missing content disposition")
	// ErrInvalidContentDisposition is returned when the Content-Disposition header is not form-data.
	ErrInvalidContentDisposition = errors.New("invalid content disposition")
	// ErrMissingName is returned when the Content-Disposition header has no name parameter.
	ErrMissingName = errors.New("missing name parameter")
	// ErrMalformedBoundaryLine is returned when a boundary is followed by something other than a line break or "--".
	ErrMalformedBoundaryLine = errors.New("malformed boundary line")

	// ErrTooManyParts is returned when the parts are more than MaxParts.
	ErrTooManyParts = errors.New("too many parts")
	// ErrTooManyFields is returned when the non-file parts are more than MaxFields.
	ErrTooManyFields = errors.New("too many fields")
	// ErrTooManyFiles is returned when the file parts are more than MaxFiles.
	ErrTooManyFiles = errors.New("too many files")
	// ErrTooManyHeaders is returned when the headers are more than MaxHeaders.
	ErrTooManyHeaders = errors.New("too many headers")
	// ErrFieldNameTooLong is returned when a part name is longer than MaxFieldNameSize.
	ErrFieldNameTooLong = errors.New("field name is too long")
	// ErrFieldTooLarge is returned when a non-file body is larger than MaxFieldSize.
	ErrFieldTooLarge = errors.New("field is too large")
	// ErrFileTooLarge is returned when a file body is larger than MaxFileSize.
	ErrFileTooLarge = errors.New("file is too large")
	// ErrTooLargeForm is returned when the form is larger than MaxStreamSize.
	ErrTooLargeForm = errors.New("too large form")
)

// HeaderError reports a part whose header block could not be used.
type HeaderError struct {
	Part int
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid header of part %d: %s", e.Part, e.Err)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

// SourceError wraps an error returned by the Source.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source: %s", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func limitError(err error, limit any) error {
	return fmt.Errorf("%w: limit %v", err, limit)
}
