package formdata

import "github.com/valyala/bytebufferpool"

var bufPool bytebufferpool.Pool

// buffer holds bytes pulled from the source that have not been handed out yet.
// Consumed bytes are skipped with a cursor and dropped on the next compaction.
type buffer struct {
	bb  *bytebufferpool.ByteBuffer
	off int
	max int
}

func newBuffer(max DataSize) *buffer {
	return &buffer{
		bb:  bufPool.Get(),
		max: int(max),
	}
}

func (b *buffer) bytes() []byte {
	return b.bb.B[b.off:]
}

func (b *buffer) len() int {
	return len(b.bb.B) - b.off
}

func (b *buffer) free() int {
	return b.max - b.len()
}

// append copies as much of p as fits under the ceiling and reports how many bytes were taken.
func (b *buffer) append(p []byte) int {
	n := min(len(p), b.free())
	if n <= 0 {
		return 0
	}

	if b.off > 0 && (len(b.bb.B)+n > cap(b.bb.B) || b.off > len(b.bb.B)/2) {
		b.compact()
	}
	b.bb.B = append(b.bb.B, p[:n]...)

	return n
}

func (b *buffer) consume(n int) {
	b.off += n
	if b.off >= len(b.bb.B) {
		b.bb.B = b.bb.B[:0]
		b.off = 0
	}
}

func (b *buffer) compact() {
	n := copy(b.bb.B, b.bb.B[b.off:])
	b.bb.B = b.bb.B[:n]
	b.off = 0
}

func (b *buffer) setMax(max DataSize) {
	b.max = int(max)
}

func (b *buffer) release() {
	if b.bb == nil {
		return
	}
	b.bb.Reset()
	bufPool.Put(b.bb)
	b.bb = nil
}
