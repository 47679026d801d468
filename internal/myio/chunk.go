package myio

import "math/rand/v2"

// Split cuts data into chunks of size bytes; the last one may be shorter.
func Split(data []byte, size int) [][]byte {
	chunks := make([][]byte, 0, len(data)/size+1)
	for len(data) > size {
		chunks = append(chunks, data[:size:size])
		data = data[size:]
	}
	if len(data) > 0 {
		chunks = append(chunks, data)
	}

	return chunks
}

// RandomSplit cuts data into chunks of 1 to maxSize bytes.
func RandomSplit(data []byte, rnd *rand.Rand, maxSize int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := min(rnd.IntN(maxSize)+1, len(data))
		chunks = append(chunks, data[:n:n])
		data = data[n:]
	}

	return chunks
}

// Chunks returns a function handing out chunks one by one, then nil and done.
func Chunks(chunks [][]byte) func() ([]byte, bool) {
	return func() ([]byte, bool) {
		if len(chunks) == 0 {
			return nil, true
		}
		chunk := chunks[0]
		chunks = chunks[1:]

		return chunk, false
	}
}
