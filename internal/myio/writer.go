package myio

import (
	"io"
	"time"
)

type failWriter struct {
	limit int
	err   error
}

// FailWriter accepts limit bytes and fails with err afterwards.
func FailWriter(limit int, err error) io.Writer {
	return &failWriter{limit: limit, err: err}
}

func (w *failWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, w.err
	}
	w.limit -= len(p)

	return len(p), nil
}

type slowWriter struct {
	perByte time.Duration
}

// SlowWriter accepts everything but sleeps perByte for every written byte.
func SlowWriter(perByte time.Duration) io.Writer {
	return &slowWriter{perByte: perByte}
}

func (w *slowWriter) Write(p []byte) (int, error) {
	time.Sleep(time.Duration(len(p)) * w.perByte)
	return len(p), nil
}
