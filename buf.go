package realtime

import (
	"fmt"
	"io"
	"time"
)

// FixedChunkReader re-slices an arbitrary reader into fixed-size chunks, so
// audio can be appended to the wire in even, latency-sized pieces.
type FixedChunkReader struct {
	r         io.Reader
	buf       []byte
	chunkSize int
	eof       bool
}

func NewFixedChunkReader(r io.Reader, chunkSize int) *FixedChunkReader {
	return &FixedChunkReader{
		r:         r,
		chunkSize: chunkSize,
		buf:       make([]byte, 0, chunkSize*2),
	}
}

func NewFixedAudioChunkReader(r io.Reader, sampleRate int, latency time.Duration, bytesPerSample, channels int) *FixedChunkReader {
	return NewFixedChunkReader(r, chunkSize(sampleRate, latency, bytesPerSample, channels))
}

func chunkSize(sampleRate int, duration time.Duration, bytesPerSample, channels int) int {
	frames := int(float64(sampleRate) * duration.Seconds())
	return frames * bytesPerSample * channels
}

func (f *FixedChunkReader) Read(p []byte) (int, error) {
	if len(p) < f.chunkSize {
		return 0, fmt.Errorf("buffer passed to Read must be at least %d bytes", f.chunkSize)
	}

	// Fill the internal buffer until a full chunk is available or EOF.
	for len(f.buf) < f.chunkSize && !f.eof {
		tmp := make([]byte, f.chunkSize)
		n, err := f.r.Read(tmp)
		if n > 0 {
			f.buf = append(f.buf, tmp[:n]...)
		}
		if err == io.EOF {
			f.eof = true
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if len(f.buf) == 0 && f.eof {
		return 0, io.EOF
	}

	n := f.chunkSize
	if len(f.buf) < f.chunkSize {
		n = len(f.buf)
	}

	copy(p, f.buf[:n])
	f.buf = f.buf[n:]

	return n, nil
}
