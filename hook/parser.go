// Package hook collects small form values in memory and streams the other
// parts to registered hooks, once the values they depend on have been seen.
package hook

import (
	"io"

	"github.com/mazrean/formdata"
)

type Parser struct {
	boundary string
	valueMap map[string][]Value
	hookMap  map[string]streamHook
	parserConfig
}

func NewParser(boundary string, options ...ParserOption) *Parser {
	c := parserConfig{
		maxMemSize:     defaultMaxMemSize,
		maxMemFileSize: defaultMaxMemFileSize,
	}
	for _, opt := range options {
		opt(&c)
	}

	return &Parser{
		boundary:     boundary,
		valueMap:     make(map[string][]Value),
		hookMap:      make(map[string]streamHook),
		parserConfig: c,
	}
}

type parserConfig struct {
	maxMemSize     formdata.DataSize
	maxMemFileSize formdata.DataSize
	decoderOptions []formdata.Option
}

type ParserOption func(*parserConfig)

const (
	defaultMaxMemSize     = 32 * formdata.MB
	defaultMaxMemFileSize = 32 * formdata.MB
)

// WithMaxMemSize sets the maximum memory size to be used for parsing.
// default: 32MB
func WithMaxMemSize(maxMemSize formdata.DataSize) ParserOption {
	return func(c *parserConfig) {
		c.maxMemSize = maxMemSize
	}
}

// WithMaxMemFileSize sets the maximum memory size to be used for holding back a hooked part.
// default: 32MB
func WithMaxMemFileSize(maxMemFileSize formdata.DataSize) ParserOption {
	return func(c *parserConfig) {
		c.maxMemFileSize = maxMemFileSize
	}
}

// WithDecoderOptions sets the options of the underlying decoder.
func WithDecoderOptions(options ...formdata.Option) ParserOption {
	return func(c *parserConfig) {
		c.decoderOptions = append(c.decoderOptions, options...)
	}
}

type Value struct {
	content []byte
	header  formdata.Header
}

// Unwrap returns the content and header of the value.
func (v Value) Unwrap() (string, formdata.Header) {
	return string(v.content), v.header
}

// UnwrapRaw returns the raw content and header of the value.
func (v Value) UnwrapRaw() ([]byte, formdata.Header) {
	return v.content, v.header
}

type StreamHookFunc = func(r io.Reader, header formdata.Header) error

type streamHook struct {
	fn           StreamHookFunc
	requireParts []string
}
