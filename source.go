package formdata

//go:generate go tool mockgen -source=$GOFILE -destination=internal/mock/$GOFILE -package=mock

import (
	"context"
	"io"
)

// Source produces the raw form body chunk by chunk.
type Source interface {
	// Next returns the next chunk of the body. The chunk only has to stay valid
	// until the following call. Once the body is exhausted Next returns io.EOF,
	// optionally together with a last chunk.
	Next() ([]byte, error)
}

type SourceFunc func() ([]byte, error)

func (f SourceFunc) Next() ([]byte, error) {
	return f()
}

const defaultChunkSize = 32 * KB

type readerSource struct {
	r   io.Reader
	buf []byte
}

// NewReaderSource returns a Source reading chunks of at most chunkSize bytes from r.
// A chunkSize of 0 selects 32KB.
func NewReaderSource(r io.Reader, chunkSize DataSize) Source {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &readerSource{
		r:   r,
		buf: make([]byte, chunkSize),
	}
}

func (s *readerSource) Next() ([]byte, error) {
	n, err := s.r.Read(s.buf)
	return s.buf[:n], err
}

type chanSource struct {
	ctx    context.Context
	chunks <-chan []byte
}

// NewChanSource returns a Source receiving chunks from a producer goroutine.
// Closing chunks ends the body. Cancelling ctx aborts the decode with the
// cancellation cause.
func NewChanSource(ctx context.Context, chunks <-chan []byte) Source {
	return &chanSource{
		ctx:    ctx,
		chunks: chunks,
	}
}

func (s *chanSource) Next() ([]byte, error) {
	select {
	case <-s.ctx.Done():
		return nil, context.Cause(s.ctx)
	case chunk, ok := <-s.chunks:
		if !ok {
			return nil, io.EOF
		}
		return chunk, nil
	}
}
