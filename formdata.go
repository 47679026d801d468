// Package formdata decodes multipart/form-data (RFC 7578) bodies as a stream.
//
// A Decoder pulls the body from a Source chunk by chunk and yields one Field
// per part. The body of a Field is read straight out of the decoder's buffer,
// so only one Field can be read at a time and the whole body is never held in
// memory.
package formdata

import (
	"io"

	"github.com/sirupsen/logrus"
)

type config struct {
	limits           Limits
	defaultValueType string
	defaultFileType  string
	logger           logrus.FieldLogger
}

func newConfig(options []Option) config {
	c := config{
		limits:           DefaultLimits(),
		defaultValueType: defaultValueContentType,
		defaultFileType:  defaultFileContentType,
	}
	for _, opt := range options {
		opt(&c)
	}

	if c.limits.MaxBufSize <= 0 {
		c.limits.MaxBufSize = defaultMaxBufSize
	}
	if c.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.logger = l
	}

	return c
}

type Option func(*config)

type DataSize int64

const (
	_ DataSize = 1 << (iota * 10)
	KB
	MB
	GB
)

const (
	defaultMaxBufSize   = 64 * KB
	defaultMaxParts     = 10000
	defaultMaxHeaders   = 10000
	defaultMaxFieldSize = 32 * MB

	defaultValueContentType = "text/plain"
	defaultFileContentType  = "application/octet-stream"
)

// WithLimits replaces all limits at once.
func WithLimits(limits Limits) Option {
	return func(c *config) {
		c.limits = limits
	}
}

// WithMaxBufSize sets the maximum size of the decode buffer.
// default: 64KB
func WithMaxBufSize(maxBufSize DataSize) Option {
	return func(c *config) {
		c.limits.MaxBufSize = maxBufSize
	}
}

// WithMaxParts sets the maximum number of parts to be decoded.
// default: 10000
func WithMaxParts(maxParts uint) Option {
	return func(c *config) {
		c.limits.MaxParts = maxParts
	}
}

// WithMaxFields sets the maximum number of non-file parts.
// default: unlimited
func WithMaxFields(maxFields uint) Option {
	return func(c *config) {
		c.limits.MaxFields = maxFields
	}
}

// WithMaxFiles sets the maximum number of file parts.
// default: unlimited
func WithMaxFiles(maxFiles uint) Option {
	return func(c *config) {
		c.limits.MaxFiles = maxFiles
	}
}

// WithMaxHeaders sets the maximum number of part headers in the whole form.
// default: 10000
func WithMaxHeaders(maxHeaders uint) Option {
	return func(c *config) {
		c.limits.MaxHeaders = maxHeaders
	}
}

// WithMaxFieldNameSize sets the maximum length of a part name.
// default: unlimited
func WithMaxFieldNameSize(maxFieldNameSize uint) Option {
	return func(c *config) {
		c.limits.MaxFieldNameSize = maxFieldNameSize
	}
}

// WithMaxFieldSize sets the maximum body size of a non-file part.
// default: 32MB
func WithMaxFieldSize(maxFieldSize DataSize) Option {
	return func(c *config) {
		c.limits.MaxFieldSize = maxFieldSize
	}
}

// WithMaxFileSize sets the maximum body size of a file part.
// default: unlimited
func WithMaxFileSize(maxFileSize DataSize) Option {
	return func(c *config) {
		c.limits.MaxFileSize = maxFileSize
	}
}

// WithMaxStreamSize sets the maximum number of bytes pulled from the source.
// default: unlimited
func WithMaxStreamSize(maxStreamSize DataSize) Option {
	return func(c *config) {
		c.limits.MaxStreamSize = maxStreamSize
	}
}

// WithDefaultValueContentType sets the media type reported by Field.MediaType
// for non-file parts without a Content-Type header.
// default: text/plain
func WithDefaultValueContentType(mediaType string) Option {
	return func(c *config) {
		c.defaultValueType = mediaType
	}
}

// WithDefaultFileContentType sets the media type reported by Field.MediaType
// for file parts without a Content-Type header.
// default: application/octet-stream
func WithDefaultFileContentType(mediaType string) Option {
	return func(c *config) {
		c.defaultFileType = mediaType
	}
}

// WithLogger sets the logger used for decode events.
// default: discards everything
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
