package formdata

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/textproto"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
)

type Header struct {
	dispositionParams map[string]string
	header            textproto.MIMEHeader
}

// Get returns the first value associated with the given key.
// If there are no values associated with the key, Get returns "".
func (h Header) Get(key string) string {
	return h.header.Get(key)
}

// Values returns all values associated with the given key.
func (h Header) Values(key string) []string {
	return h.header.Values(key)
}

// ContentType returns the value of the "Content-Type" header field.
// If there are no values associated with the key, ContentType returns "".
func (h Header) ContentType() string {
	return h.header.Get("Content-Type")
}

// Name returns the value of the "name" parameter in the "Content-Disposition" header field.
func (h Header) Name() string {
	return h.dispositionParams["name"]
}

// FileName returns the value of the "filename" parameter in the "Content-Disposition" header field,
// without any directory part.
// If there are no values associated with the key, FileName returns "".
func (h Header) FileName() string {
	return stripPath(h.dispositionParams["filename"])
}

// HasFileName reports whether the "Content-Disposition" header field has a "filename" parameter.
func (h Header) HasFileName() bool {
	_, ok := h.dispositionParams["filename"]
	return ok
}

// MIMEHeader returns a copy of all header fields of the part.
func (h Header) MIMEHeader() textproto.MIMEHeader {
	mh := make(textproto.MIMEHeader, len(h.header))
	for key, values := range h.header {
		mh[key] = slices.Clone(values)
	}
	return mh
}

// Len returns the number of header values of the part.
func (h Header) Len() int {
	n := 0
	for _, v := range h.header {
		n += len(v)
	}
	return n
}

// parsePartHeader parses a header block including its terminating empty line.
func parsePartHeader(block []byte) (Header, error) {
	tp := textproto.NewReader(bufio.NewReader(bytes.NewReader(block)))
	mh, err := tp.ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) {
		return Header{}, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}

	for key, values := range mh {
		if !httpguts.ValidHeaderFieldName(key) {
			return Header{}, fmt.Errorf("%w: invalid header name %q", ErrMalformedHeader, key)
		}
		for _, v := range values {
			if !httpguts.ValidHeaderFieldValue(v) {
				return Header{}, fmt.Errorf("%w: invalid value of %s", ErrMalformedHeader, key)
			}
		}
	}

	cd := mh.Get("Content-Disposition")
	if cd == "" {
		return Header{}, ErrMissingContentDisposition
	}
	disposition, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrInvalidContentDisposition, err)
	}
	if disposition != "form-data" {
		return Header{}, fmt.Errorf("%w: %q", ErrInvalidContentDisposition, disposition)
	}
	if params["name"] == "" {
		return Header{}, ErrMissingName
	}

	return Header{
		dispositionParams: params,
		header:            mh,
	}, nil
}

// parseContentType returns the declared media type and its parameters.
// An absent or unparsable Content-Type is reported as "".
func parseContentType(h Header) (string, map[string]string) {
	ct := h.ContentType()
	if ct == "" {
		return "", nil
	}

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", nil
	}

	return mediaType, params
}

// stripPath drops Windows and UNIX directory parts from a file name.
func stripPath(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
