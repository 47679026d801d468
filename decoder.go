package formdata

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// Decoder yields the parts of a multipart/form-data body one at a time.
//
// Fields must be read in order. Requesting the next field drops whatever is
// left of the previous one, after which the previous field is stale.
// A Decoder and its fields must not be used from several goroutines at once;
// doing so fails with ErrConcurrentUse instead of racing.
type Decoder struct {
	boundary string
	st       *state
}

// NewDecoder returns a Decoder reading the form delimited by boundary from src.
func NewDecoder(src Source, boundary string, options ...Option) (*Decoder, error) {
	if !validBoundary(boundary) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBoundary, boundary)
	}

	c := newConfig(options)
	if minSize := minBufSize(boundary); c.limits.MaxBufSize < minSize {
		return nil, limitError(ErrBufSizeTooSmall, minSize)
	}

	return &Decoder{
		boundary: boundary,
		st:       newState(src, boundary, &c, c.logger.WithField("boundary", boundary)),
	}, nil
}

// Next returns the next field of the form.
// After the closing boundary it returns io.EOF, on every further call too.
// Any other error is final: the decoder returns it again on every later call.
func (d *Decoder) Next() (*Field, error) {
	st := d.st
	if !st.mu.TryLock() {
		return nil, ErrConcurrentUse
	}
	defer st.mu.Unlock()

	if st.err != nil {
		return nil, st.err
	}

	f, err := st.nextField()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, st.fail(err)
	}

	return f, nil
}

// Fields returns an iterator over the remaining fields.
// It stops after the closing boundary or after yielding the first error.
func (d *Decoder) Fields() iter.Seq2[*Field, error] {
	return func(yield func(*Field, error) bool) {
		for {
			f, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// SetMaxBufSize changes the buffer ceiling between fields.
func (d *Decoder) SetMaxBufSize(maxBufSize DataSize) error {
	st := d.st
	if !st.mu.TryLock() {
		return ErrConcurrentUse
	}
	defer st.mu.Unlock()

	if st.err != nil {
		return st.err
	}
	if st.phase == phaseBody {
		return ErrFieldLive
	}
	if minSize := minBufSize(d.boundary); maxBufSize < minSize {
		return limitError(ErrBufSizeTooSmall, minSize)
	}

	st.cfg.limits.MaxBufSize = maxBufSize
	st.buf.setMax(maxBufSize)

	return nil
}

// Boundary returns the boundary the decoder was created with.
func (d *Decoder) Boundary() string {
	return d.boundary
}

// EOF reports whether the closing boundary has been consumed.
func (d *Decoder) EOF() bool {
	return d.Stats().EOF
}

// Total returns the number of fields produced so far.
func (d *Decoder) Total() int {
	return d.Stats().Total
}

// Len returns the number of raw bytes consumed so far.
func (d *Decoder) Len() int64 {
	return d.Stats().Length
}

type Stats struct {
	EOF    bool
	Total  int
	Fields int
	Files  int
	Length int64
}

// Stats returns the decode statistics. They are only consistent when no field
// is being read.
func (d *Decoder) Stats() Stats {
	st := d.st
	st.mu.Lock()
	defer st.mu.Unlock()

	return Stats{
		EOF:    st.eof,
		Total:  st.total,
		Fields: st.fields,
		Files:  st.files,
		Length: st.length,
	}
}

// Close returns the buffer to the pool. The decoder and its fields are
// unusable afterwards.
func (d *Decoder) Close() error {
	st := d.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if errors.Is(st.err, ErrClosed) {
		return nil
	}
	st.err = ErrClosed
	st.live = -1
	st.pending = nil
	st.buf.release()

	return nil
}
